package base

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/ruslano69/sqlframe/pkg/core/coerce"
	"github.com/ruslano69/sqlframe/pkg/core/frame"
	"github.com/ruslano69/sqlframe/pkg/core/schema"
	"github.com/ruslano69/sqlframe/pkg/core/sqlparse"
)

// defaultReadChunk - размер внутренних чанков при полном чтении
const defaultReadChunk = 10000

// rowScanner - frame.RowScanner поверх *sql.Rows
type rowScanner struct {
	rows      *sql.Rows
	n         int
	normalize func(any) any
}

func (r *rowScanner) Next() bool { return r.rows.Next() }

func (r *rowScanner) Values() ([]any, error) {
	values := make([]any, r.n)
	ptrs := make([]any, r.n)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	for i, v := range values {
		values[i] = r.normalize(v)
	}
	return values, nil
}

func (r *rowScanner) Err() error   { return r.rows.Err() }
func (r *rowScanner) Close() error { return r.rows.Close() }

// tableMapping строит маппинг по определениям таблиц, на которые ссылается запрос.
// Рефлексия выполняется до открытия курсора: у однопоточных СУБД (SQLite в памяти)
// второе соединение недоступно, пока курсор открыт.
// Ошибка рефлексии не прерывает чтение: имена таблиц извлекаются эвристически.
func (s *Strategy) tableMapping(ctx context.Context, query string) coerce.Mapping {
	mapping := coerce.Mapping{}
	log := zerolog.Ctx(ctx)

	for _, table := range sqlparse.Tables(query) {
		info, err := s.dialect.ReflectTable(ctx, s.conn.DB(), QualifyTable(table, s.conn.Descriptor().Schema))
		if err != nil {
			log.Debug().Err(err).Str("table", table).Msg("table reflection skipped")
			continue
		}
		for _, c := range info.Columns {
			if c.Type != "" {
				mapping[c.Name] = c.Type
			}
		}
	}
	return mapping
}

// resultMapping дополняет маппинг типами из метаданных результата
func (s *Strategy) resultMapping(mapping coerce.Mapping, cols []*sql.ColumnType) ([]string, []schema.DataType) {
	names := make([]string, len(cols))
	types := make([]schema.DataType, len(cols))
	for i, ct := range cols {
		names[i] = ct.Name()
		if t, ok := s.dialect.ParseColumnType(ct.DatabaseTypeName()); ok {
			mapping[ct.Name()] = t
		}
		types[i] = mapping[ct.Name()]
	}
	return names, types
}

// openStream выполняет запрос и возвращает поток чанков по size строк
// с приведением типов по маппингу
func (s *Strategy) openStream(ctx context.Context, query string, size int, mapping coerce.Mapping, args ...any) (*frame.Stream, error) {
	rows, err := s.conn.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	cols, err := rows.ColumnTypes()
	if err != nil {
		rows.Close()
		return nil, err
	}
	names, types := s.resultMapping(mapping, cols)

	scanner := &rowScanner{rows: rows, n: len(cols), normalize: s.dialect.NormalizeValue}
	reader := coerce.NewReader(mapping)

	return frame.NewStream(ctx, frame.NewRowChunker(names, types, scanner, size)).Map(reader.Apply), nil
}
