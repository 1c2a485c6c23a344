package clickhouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ruslano69/sqlframe/pkg/adapters"
	"github.com/ruslano69/sqlframe/pkg/adapters/base"
	"github.com/ruslano69/sqlframe/pkg/core/coerce"
	"github.com/ruslano69/sqlframe/pkg/core/frame"
	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

// Регистрация стратегии в глобальной фабрике
func init() {
	adapters.Register(adapters.FamilyColumnar, NewStrategy)
}

// Strategy - стратегия семейства columnar-analytical
type Strategy struct {
	conn    *Conn
	dialect Dialect
}

// Compile-time check
var _ adapters.Strategy = (*Strategy)(nil)

// NewStrategy привязывает стратегию к *clickhouse.Conn
func NewStrategy(c adapters.Connection) (adapters.Strategy, error) {
	conn, ok := c.(*Conn)
	if !ok || conn == nil {
		return nil, adapters.Unsupported(c, "dispatch",
			fmt.Sprintf("columnar-analytical family requires *clickhouse.Conn, got %T", c))
	}
	return &Strategy{conn: conn}, nil
}

// Family возвращает FamilyColumnar
func (s *Strategy) Family() adapters.Family { return adapters.FamilyColumnar }

// DedupSupported - дубликаты отсекаются до вставки
func (s *Strategy) DedupSupported() bool { return true }

// Dialect возвращает диалект ClickHouse
func (s *Strategy) Dialect() adapters.Dialect { return s.dialect }

// Read читает весь результат
func (s *Strategy) Read(ctx context.Context, query string, opts adapters.ReadOptions) (*frame.Dataset, error) {
	stream, err := s.openStream(ctx, query, defaultReadChunk, rules(opts))
	if err != nil {
		return nil, err
	}
	return stream.Collect()
}

// ReadChunks читает блочный поток чанками по chunkSize строк
func (s *Strategy) ReadChunks(ctx context.Context, query string, chunkSize int, opts adapters.ReadOptions) (*frame.Stream, error) {
	return s.openStream(ctx, query, chunkSize, rules(opts))
}

// Query выполняет параметризованный запрос без правил приведения
func (s *Strategy) Query(ctx context.Context, query string, args ...any) (*frame.Dataset, error) {
	stream, err := s.openStream(ctx, query, defaultReadChunk, nil, args...)
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

// ReflectTable читает колонки из system.columns, ключ из system.tables.primary_key
func (s *Strategy) ReflectTable(ctx context.Context, table string) (*adapters.TableInfo, error) {
	database, name := splitTable(table)
	info := &adapters.TableInfo{Name: table}

	rows, err := s.conn.Native().Query(ctx,
		"SELECT name, type FROM system.columns WHERE database = "+database+" AND table = ? ORDER BY position", name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var colName, colType string
		if err := rows.Scan(&colName, &colType); err != nil {
			return nil, err
		}
		t, _ := ParseType(colType)
		_, nullable := unwrapType(colType)
		info.Columns = append(info.Columns, schema.ColumnDef{Name: colName, Type: t, Nullable: nullable, SQLType: colType})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(info.Columns) == 0 {
		return info, nil
	}

	var primaryKey string
	row := s.conn.Native().QueryRow(ctx,
		"SELECT primary_key FROM system.tables WHERE database = "+database+" AND name = ?", name)
	if err := row.Scan(&primaryKey); err != nil {
		return nil, err
	}
	info.PrimaryKey = ParsePrimaryKey(primaryKey)
	base.MarkKeys(info)
	return info, nil
}

// splitTable возвращает выражение базы (литерал или currentDatabase()) и имя таблицы
func splitTable(table string) (string, string) {
	if i := strings.LastIndex(table, "."); i >= 0 {
		return "'" + strings.ReplaceAll(table[:i], "'", "\\'") + "'", table[i+1:]
	}
	return "currentDatabase()", table
}

// ParsePrimaryKey разбирает system.tables.primary_key ("region, id").
// Выражения ключа (toDate(ts)) остаются как есть.
func ParsePrimaryKey(expr string) []string {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	var keys []string
	for _, k := range strings.Split(expr, ",") {
		k = strings.Trim(strings.TrimSpace(k), "`")
		keys = append(keys, k)
	}
	return keys
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
	return s.conn.Native().Exec(ctx, stmt)
}

// PrepareWrite переводит длительности в микросекунды
func (s *Strategy) PrepareWrite(ds *frame.Dataset) (*frame.Dataset, error) {
	return coerce.DurationsToMicros(ds)
}

// Insert отправляет строки нативными batch'ами по opts.BatchSize строк.
// Batch позиционный и строгий к типам: датасет приводится к колонкам таблицы.
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

	stmt := "INSERT INTO " + schema.QuoteQualified(s.dialect, table)
	for start := 0; start < cast.NumRows(); start += opts.BatchSize {
		end := min(start+opts.BatchSize, cast.NumRows())
		if err := s.sendBatch(ctx, stmt, cast.Slice(start, end)); err != nil {
			return err
		}
	}

	zerolog.Ctx(ctx).Info().Str("table", table).Int("rows", cast.NumRows()).Msg("rows inserted")
	return nil
}

func (s *Strategy) sendBatch(ctx context.Context, stmt string, ds *frame.Dataset) error {
	batch, err := s.conn.Native().PrepareBatch(ctx, stmt)
	if err != nil {
		return err
	}
	for i := 0; i < ds.NumRows(); i++ {
		if err := batch.Append(ds.Row(i)...); err != nil {
			batch.Abort()
			return err
		}
	}
	return batch.Send()
}
