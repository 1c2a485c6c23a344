package postgres

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ruslano69/sqlframe/pkg/adapters/base"
	"github.com/ruslano69/sqlframe/pkg/core/frame"
	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

// copyReader читает результат запроса через COPY (...) TO STDOUT в текстовом формате
type copyReader struct {
	pool *pgxpool.Pool
}

// Compile-time check
var _ base.Accelerator = (*copyReader)(nil)

// Close закрывает пул
func (r *copyReader) Close() error {
	r.pool.Close()
	return nil
}

// ReadAll выполняет запрос через COPY и типизирует колонки по описанию результата
func (r *copyReader) ReadAll(ctx context.Context, query string) (*frame.Dataset, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	query = strings.TrimRight(strings.TrimSpace(query), ";")

	desc, err := conn.Conn().PgConn().Prepare(ctx, "", query, nil)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(desc.Fields))
	types := make([]schema.DataType, len(desc.Fields))
	tm := conn.Conn().TypeMap()
	for i, f := range desc.Fields {
		names[i] = f.Name
		types[i] = schema.TypeString
		if t, ok := tm.TypeForOID(f.DataTypeOID); ok {
			if dt, ok := ParseType(t.Name); ok {
				types[i] = dt
			}
		}
	}

	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go func() {
		_, err := conn.Conn().PgConn().CopyTo(ctx, pw, fmt.Sprintf("COPY (%s) TO STDOUT", query))
		pw.CloseWithError(err)
		done <- err
	}()

	rows, parseErr := readCopyText(pr, types)
	// дочитываем поток, чтобы COPY завершился
	_, _ = io.Copy(io.Discard, pr)
	if err := <-done; err != nil {
		return nil, err
	}
	if parseErr != nil {
		return nil, parseErr
	}

	return frame.FromRows(names, types, rows)
}

// readCopyText разбирает поток COPY в текстовом формате:
// поля через табуляцию, \N - NULL, спецсимволы экранированы обратным слешем
func readCopyText(r io.Reader, types []schema.DataType) ([][]any, error) {
	br := bufio.NewReader(r)
	var rows [][]any

	for {
		line, err := br.ReadString('\n')
		if line == "" && err != nil {
			if err == io.EOF {
				return rows, nil
			}
			return nil, err
		}
		line = strings.TrimSuffix(line, "\n")

		fields := strings.Split(line, "\t")
		if len(fields) != len(types) {
			return nil, fmt.Errorf("copy row %d: got %d fields, want %d", len(rows)+1, len(fields), len(types))
		}

		row := make([]any, len(fields))
		for i, f := range fields {
			v, cerr := copyValue(f, types[i])
			if cerr != nil {
				return nil, fmt.Errorf("copy row %d column %d: %w", len(rows)+1, i+1, cerr)
			}
			row[i] = v
		}
		rows = append(rows, row)

		if err == io.EOF {
			return rows, nil
		}
	}
}

// copyValue переводит текстовое поле COPY в значение типа t
func copyValue(field string, t schema.DataType) (any, error) {
	if field == `\N` {
		return nil, nil
	}
	s := unescapeCopy(field)

	switch t {
	case schema.TypeBytes:
		if strings.HasPrefix(s, `\x`) {
			return hex.DecodeString(s[2:])
		}
		return []byte(s), nil
	case schema.TypeDatetime:
		if ts, err := time.Parse("2006-01-02 15:04:05.999999999-07", s); err == nil {
			return ts, nil
		}
	}
	return schema.Convert(s, t)
}

// unescapeCopy снимает экранирование текстового формата COPY
func unescapeCopy(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
