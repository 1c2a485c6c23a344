package sqlio

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ruslano69/sqlframe/pkg/adapters"
	"github.com/ruslano69/sqlframe/pkg/adapters/base"
	"github.com/ruslano69/sqlframe/pkg/core/frame"
	"github.com/ruslano69/sqlframe/pkg/core/schema"
	"github.com/ruslano69/sqlframe/pkg/dedup"
)

// WriteSQL создает таблицу, если ее нет, отсекает дубликаты и вставляет строки.
//
// Порядок:
//  1. пустой датасет - ничего не делается
//  2. индекс строк становится первой колонкой (opts.Index)
//  3. приведение длительностей под семейство СУБД
//  4. CREATE TABLE IF NOT EXISTS (replace - сначала DROP, fail - ошибка при наличии)
//  5. дедупликация по первичному ключу (ClickHouse, DuckDB)
//  6. пакетная вставка
//
// Шаги 4-6 - отдельные обращения к СУБД, запись не транзакционна целиком.
// Датасет вызывающего не изменяется.
func WriteSQL(ctx context.Context, ds *frame.Dataset, table string, conn adapters.Connection, opts adapters.WriteOptions) error {
	log := zerolog.Ctx(ctx)

	if err := opts.Validate(); err != nil {
		return err
	}
	if ds.NumRows() == 0 {
		log.Debug().Str("table", table).Msg("empty dataset, nothing to write")
		return nil
	}

	s, err := adapters.Dispatch(ctx, conn)
	if err != nil {
		return err
	}

	opts = opts.WithDefaults()
	table = base.QualifyTable(table, conn.Descriptor().Schema)

	if opts.Index {
		if ds, err = ds.ResetIndex(opts.IndexLabel); err != nil {
			return err
		}
	}

	if ds, err = s.PrepareWrite(ds); err != nil {
		return err
	}

	dialect := s.Dialect()
	if ed, ok := dialect.(adapters.EngineDialect); ok {
		dialect = ed.WithStorageEngine(opts.StorageEngine)
	}

	if err := ensureTable(ctx, s, dialect, table, ds, opts); err != nil {
		return err
	}

	if opts.IgnoreDuplicate && s.DedupSupported() {
		ds, err = dedup.Filter(ctx, s, table, ds, dedup.Options{
			CategoryKeys: opts.CategoryKeys,
			RangeKeys:    opts.RangeKeys,
		})
		if err != nil {
			return err
		}
		if ds.NumRows() == 0 {
			log.Debug().Str("table", table).Msg("all rows already present")
			return nil
		}
	}

	return s.Insert(ctx, table, ds, opts)
}

// ensureTable применяет IfExists и выполняет CREATE TABLE IF NOT EXISTS
func ensureTable(ctx context.Context, s adapters.Strategy, d adapters.Dialect, table string, ds *frame.Dataset, opts adapters.WriteOptions) error {
	log := zerolog.Ctx(ctx)

	switch opts.IfExists {
	case adapters.IfExistsReplace:
		stmt := "DROP TABLE IF EXISTS " + schema.QuoteQualified(d, table)
		log.Debug().Str("sql", stmt).Msg("drop table")
		if err := s.Exec(ctx, stmt); err != nil {
			return err
		}
	case adapters.IfExistsFail:
		exists, err := s.TableExists(ctx, table)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", adapters.ErrTableExists, table)
		}
	}

	stmt, err := schema.Synthesize(schema.TableSpec{
		Table:     table,
		Columns:   ds.ColumnDefs(),
		Keys:      opts.Keys,
		Overrides: opts.DTypes,
	}, d)
	if err != nil {
		return err
	}

	log.Debug().Str("sql", stmt).Msg("create table")
	return s.Exec(ctx, stmt)
}
