package base

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ruslano69/sqlframe/pkg/adapters"
	"github.com/ruslano69/sqlframe/pkg/core/coerce"
	"github.com/ruslano69/sqlframe/pkg/core/frame"
)

// Регистрация стратегии в глобальной фабрике
func init() {
	adapters.Register(adapters.FamilyGeneric, NewStrategy)
}

// Strategy - стратегия семейства generic-relational
type Strategy struct {
	conn    *Conn
	dialect Dialect
}

// Compile-time check
var _ adapters.Strategy = (*Strategy)(nil)

// NewStrategy привязывает стратегию к соединению *Conn.
// Диалект выбирается по имени драйвера из дескриптора.
func NewStrategy(c adapters.Connection) (adapters.Strategy, error) {
	conn, ok := c.(*Conn)
	if !ok || conn == nil {
		return nil, adapters.Unsupported(c, "dispatch",
			fmt.Sprintf("generic-relational family requires *base.Conn, got %T", c))
	}
	return &Strategy{conn: conn, dialect: LookupDialect(conn.Descriptor().Driver)}, nil
}

// Family возвращает FamilyGeneric
func (s *Strategy) Family() adapters.Family { return adapters.FamilyGeneric }

// DedupSupported - дубликаты отсекает СУБД (hook пропуска конфликтов)
func (s *Strategy) DedupSupported() bool { return false }

// Dialect возвращает диалект соединения
func (s *Strategy) Dialect() adapters.Dialect { return s.dialect }

// Read читает весь результат. Блочный reader используется, если он подключен,
// не отключен опцией и доступен на текущей архитектуре.
func (s *Strategy) Read(ctx context.Context, query string, opts adapters.ReadOptions) (*frame.Dataset, error) {
	mapping := s.tableMapping(ctx, query)

	if acc := s.conn.Accelerator(); acc != nil && !opts.DisableAcceleration && AccelerationAvailable() {
		zerolog.Ctx(ctx).Debug().Str("dialect", s.dialect.Name()).Msg("accelerated read")
		ds, err := acc.ReadAll(ctx, query)
		if err != nil {
			return nil, err
		}
		return coerce.NewReader(acceleratedMapping(ds, mapping)).Apply(ds)
	}

	stream, err := s.openStream(ctx, query, defaultReadChunk, mapping)
	if err != nil {
		return nil, err
	}
	return stream.Collect()
}

// acceleratedMapping берет типы блочного reader'а и накладывает поверх
// типы из рефлексии таблиц
func acceleratedMapping(ds *frame.Dataset, reflected coerce.Mapping) coerce.Mapping {
	mapping := make(coerce.Mapping, ds.NumCols())
	for _, c := range ds.Columns() {
		mapping[c.Name] = c.Type
	}
	return mapping.Merge(reflected)
}

// ReadChunks возвращает поток чанков по chunkSize строк
func (s *Strategy) ReadChunks(ctx context.Context, query string, chunkSize int, _ adapters.ReadOptions) (*frame.Stream, error) {
	return s.openStream(ctx, query, chunkSize, s.tableMapping(ctx, query))
}

// Query выполняет параметризованный запрос; маппинг только по метаданным результата
func (s *Strategy) Query(ctx context.Context, query string, args ...any) (*frame.Dataset, error) {
	stream, err := s.openStream(ctx, query, defaultReadChunk, coerce.Mapping{}, args...)
	if err != nil {
		return nil, err
	}
	return stream.Collect()
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
	_, err := s.conn.DB().ExecContext(ctx, s.conn.Rewrite(stmt))
	return err
}

// PrepareWrite делегирует приведение диалекту
func (s *Strategy) PrepareWrite(ds *frame.Dataset) (*frame.Dataset, error) {
	return s.dialect.PrepareWrite(ds)
}

// Insert вставляет строки многострочными INSERT в одной транзакции.
// При IgnoreDuplicate на соединение один раз ставится hook пропуска конфликтов;
// он остается установленным для последующих записей через это соединение.
func (s *Strategy) Insert(ctx context.Context, table string, ds *frame.Dataset, opts adapters.WriteOptions) error {
	log := zerolog.Ctx(ctx)

	if opts.IgnoreDuplicate {
		if hook, ok := s.dialect.IgnoreInsert(); ok {
			if s.conn.InstallHook(IgnoreHookName, hook) {
				log.Debug().Str("dialect", s.dialect.Name()).Msg("ignore-on-conflict hook installed")
			}
		} else {
			log.Warn().Str("dialect", s.dialect.Name()).
				Msg("dialect has no ignore-on-conflict insert, duplicate keys will fail")
		}
	}

	opts = opts.WithDefaults()
	if err := s.insertRows(ctx, table, ds, opts.BatchSize); err != nil {
		return err
	}

	log.Info().Str("table", table).Int("rows", ds.NumRows()).Msg("rows inserted")
	return nil
}
