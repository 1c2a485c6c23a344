package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/marcboeker/go-duckdb"
	"github.com/rs/zerolog"

	"github.com/ruslano69/sqlframe/pkg/adapters"
	"github.com/ruslano69/sqlframe/pkg/adapters/base"
	"github.com/ruslano69/sqlframe/pkg/core/coerce"
	"github.com/ruslano69/sqlframe/pkg/core/frame"
	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

// Регистрация стратегии в глобальной фабрике
func init() {
	adapters.Register(adapters.FamilyEmbedded, NewStrategy)
}

// Strategy - стратегия семейства embedded-analytical
type Strategy struct {
	conn    *Conn
	dialect Dialect
}

// Compile-time check
var _ adapters.Strategy = (*Strategy)(nil)

// NewStrategy привязывает стратегию к *duckdb.Conn
func NewStrategy(c adapters.Connection) (adapters.Strategy, error) {
	conn, ok := c.(*Conn)
	if !ok || conn == nil {
		return nil, adapters.Unsupported(c, "dispatch",
			fmt.Sprintf("embedded-analytical family requires *duckdb.Conn, got %T", c))
	}
	return &Strategy{conn: conn}, nil
}

// Family возвращает FamilyEmbedded
func (s *Strategy) Family() adapters.Family { return adapters.FamilyEmbedded }

// DedupSupported - первичный ключ надежен, дубликаты отсекаются до вставки
func (s *Strategy) DedupSupported() bool { return true }

// Dialect возвращает диалект DuckDB
func (s *Strategy) Dialect() adapters.Dialect { return s.dialect }

// Read читает весь результат через Arrow
func (s *Strategy) Read(ctx context.Context, query string, opts adapters.ReadOptions) (*frame.Dataset, error) {
	stream, err := s.arrowStream(ctx, query, 0, rules(opts))
	if err != nil {
		return nil, err
	}
	return stream.Collect()
}

// ReadChunks перенарезает record batch'и на чанки по chunkSize строк
func (s *Strategy) ReadChunks(ctx context.Context, query string, chunkSize int, opts adapters.ReadOptions) (*frame.Stream, error) {
	return s.arrowStream(ctx, query, chunkSize, rules(opts))
}

// Query выполняет параметризованный запрос без правил приведения
func (s *Strategy) Query(ctx context.Context, query string, args ...any) (*frame.Dataset, error) {
	stream, err := s.arrowStream(ctx, query, 0, nil, args...)
	if err != nil {
		return nil, err
	}
	return stream.Collect()
}

func rules(opts adapters.ReadOptions) []coerce.Rule {
	if opts.DisableTimeColumnRule {
		return nil
	}
	return []coerce.Rule{coerce.TimeColumnRule{}}
}

// arrowStream выполняет запрос на выделенном соединении. Соединение
// возвращается в пул при закрытии потока. size=0 - чанки как их отдает DuckDB.
func (s *Strategy) arrowStream(ctx context.Context, query string, size int, rules []coerce.Rule, args ...any) (*frame.Stream, error) {
	dc, release, err := s.conn.rawConn(ctx)
	if err != nil {
		return nil, err
	}

	ar, err := duckdb.NewArrowFromConn(dc)
	if err != nil {
		release()
		return nil, err
	}

	reader, err := ar.QueryContext(ctx, query, args...)
	if err != nil {
		release()
		return nil, err
	}

	var src frame.ChunkSource = frame.NewArrowSource(reader, release)
	if size > 0 {
		src = frame.Rechunk(src, size)
	}
	return frame.NewStream(ctx, src).Map(coerce.NewReader(coerce.Mapping{}, rules...).Apply), nil
}

// ReflectTable читает колонки и первичный ключ
func (s *Strategy) ReflectTable(ctx context.Context, table string) (*adapters.TableInfo, error) {
	return s.dialect.ReflectTable(ctx, s.conn.DB(), table)
}

// TableExists проверяет существование таблицы по наличию колонок
func (s *Strategy) TableExists(ctx context.Context, table string) (bool, error) {
	info, err := s.ReflectTable(ctx, table)
	if err != nil {
		return false, err
	}
	return len(info.Columns) > 0, nil
}

// Exec выполняет DDL
func (s *Strategy) Exec(ctx context.Context, stmt string) error {
	_, err := s.conn.DB().ExecContext(ctx, stmt)
	return err
}

// PrepareWrite переводит длительности в микросекунды
func (s *Strategy) PrepareWrite(ds *frame.Dataset) (*frame.Dataset, error) {
	return coerce.DurationsToMicros(ds)
}

// Insert вставляет строки через Appender. Appender позиционный и строгий
// к типам, поэтому датасет сначала приводится к колонкам таблицы.
func (s *Strategy) Insert(ctx context.Context, table string, ds *frame.Dataset, opts adapters.WriteOptions) error {
	opts = opts.WithDefaults()

	info, err := s.ReflectTable(ctx, table)
	if err != nil {
		return err
	}
	if len(info.Columns) == 0 {
		return fmt.Errorf("table %s not found", table)
	}

	cast, err := coerce.CastToTable(ds, info.Columns)
	if err != nil {
		return fmt.Errorf("table %s: %w", table, err)
	}

	dc, release, err := s.conn.rawConn(ctx)
	if err != nil {
		return err
	}
	defer release()

	schemaName, name := base.SplitTable(table)
	appender, err := duckdb.NewAppenderFromConn(dc, schemaName, name)
	if err != nil {
		return err
	}

	if err := appendRows(appender, cast, opts.BatchSize); err != nil {
		appender.Close()
		return err
	}
	if err := appender.Close(); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("table", table).Int("rows", cast.NumRows()).Msg("rows appended")
	return nil
}

func appendRows(appender *duckdb.Appender, ds *frame.Dataset, batchSize int) error {
	cols := ds.Columns()
	row := make([]driver.Value, len(cols))

	for i := 0; i < ds.NumRows(); i++ {
		for j, col := range cols {
			row[j] = appendValue(col.Values[i], col.Type)
		}
		if err := appender.AppendRow(row...); err != nil {
			return err
		}
		if (i+1)%batchSize == 0 {
			if err := appender.Flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

// appendValue приводит значение к типу, который принимает Appender
func appendValue(v any, t schema.DataType) driver.Value {
	if d, ok := v.(time.Duration); ok && t == schema.TypeTime {
		return time.Unix(0, 0).UTC().Add(schema.TimeOfDay(d))
	}
	return v
}
