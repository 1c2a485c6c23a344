package clickhouse

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/ruslano69/sqlframe/pkg/core/coerce"
	"github.com/ruslano69/sqlframe/pkg/core/frame"
	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

// defaultReadChunk - размер внутренних чанков при полном чтении
const defaultReadChunk = 10000

// rowScanner - frame.RowScanner поверх блочного потока driver.Rows.
// Приемники создаются по ScanType колонок: драйвер строг к типам.
type rowScanner struct {
	rows  driver.Rows
	types []reflect.Type
}

func newRowScanner(rows driver.Rows) *rowScanner {
	cols := rows.ColumnTypes()
	types := make([]reflect.Type, len(cols))
	for i, c := range cols {
		types[i] = c.ScanType()
	}
	return &rowScanner{rows: rows, types: types}
}

func (r *rowScanner) Next() bool { return r.rows.Next() }

func (r *rowScanner) Values() ([]any, error) {
	dest := make([]any, len(r.types))
	for i, t := range r.types {
		dest[i] = reflect.New(t).Interface()
	}
	if err := r.rows.Scan(dest...); err != nil {
		return nil, err
	}

	values := make([]any, len(dest))
	for i, d := range dest {
		values[i] = normalize(reflect.ValueOf(d).Elem())
	}
	return values, nil
}

func (r *rowScanner) Err() error   { return r.rows.Err() }
func (r *rowScanner) Close() error { return r.rows.Close() }

// normalize разыменовывает Nullable-указатели и приводит UUID/Decimal к строкам
func normalize(v reflect.Value) any {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch x := v.Interface().(type) {
	case time.Time:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return x
	}
}

// openStream выполняет запрос и возвращает поток чанков по size строк
func (s *Strategy) openStream(ctx context.Context, query string, size int, rules []coerce.Rule, args ...any) (*frame.Stream, error) {
	rows, err := s.conn.Native().Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	cols := rows.ColumnTypes()
	names := make([]string, len(cols))
	types := make([]schema.DataType, len(cols))
	mapping := coerce.Mapping{}
	for i, c := range cols {
		names[i] = c.Name()
		if t, ok := ParseType(c.DatabaseTypeName()); ok {
			types[i] = t
			mapping[c.Name()] = t
		}
	}

	src := frame.NewRowChunker(names, types, newRowScanner(rows), size)
	return frame.NewStream(ctx, src).Map(coerce.NewReader(mapping, rules...).Apply), nil
}
