// Package dedup отсекает строки, чьи первичные ключи уже есть в таблице.
//
// Используется для семейств с надежным первичным ключом (ClickHouse, DuckDB).
// Существующие ключи выбираются одним запросом, суженным условием по
// category- и range-колонкам; многоколоночные ключи сравниваются кортежами.
package dedup

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ruslano69/sqlframe/pkg/adapters"
	"github.com/ruslano69/sqlframe/pkg/core/frame"
	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

// Options - колонки для сужения выборки существующих ключей
type Options struct {
	CategoryKeys []string
	RangeKeys    []string
}

// KeyQuery строит запрос существующих ключей:
//
//	SELECT "region", "id" FROM "t" WHERE ("region" IN (?, ?))
func KeyQuery(d adapters.Dialect, table string, pk []string, p Predicate) string {
	quoted := make([]string, len(pk))
	for i, k := range pk {
		quoted[i] = d.QuoteIdentifier(k)
	}
	return fmt.Sprintf("SELECT %s FROM %s%s",
		strings.Join(quoted, ", "), schema.QuoteQualified(d, table), p.Where())
}

// Filter возвращает строки датасета, чьих кортежей первичного ключа
// еще нет в таблице. Датасет вызывающего не изменяется.
func Filter(ctx context.Context, s adapters.Strategy, table string, ds *frame.Dataset, opts Options) (*frame.Dataset, error) {
	log := zerolog.Ctx(ctx)

	predicate, err := BuildPredicate(s.Dialect(), ds, opts.CategoryKeys, opts.RangeKeys)
	if err != nil {
		return nil, err
	}

	info, err := s.ReflectTable(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(info.PrimaryKey) == 0 {
		log.Debug().Str("table", table).Msg("no primary key, dedup skipped")
		return ds, nil
	}
	for _, k := range info.PrimaryKey {
		if _, ok := ds.Column(k); !ok {
			log.Warn().Str("table", table).Str("key", k).Msg("primary key column missing from dataset, dedup skipped")
			return ds, nil
		}
	}

	existing, err := s.Query(ctx, KeyQuery(s.Dialect(), table, info.PrimaryKey, predicate), predicate.Args...)
	if err != nil {
		return nil, err
	}
	if existing.NumRows() == 0 {
		log.Debug().Str("table", table).Msg("no existing keys")
		return ds, nil
	}

	existing, err = alignTypes(existing, ds, info.PrimaryKey)
	if err != nil {
		return nil, err
	}

	idx, err := NewIndex(existing, info.PrimaryKey)
	if err != nil {
		return nil, err
	}
	keep, err := idx.Missing(ds, info.PrimaryKey)
	if err != nil {
		return nil, err
	}

	out := ds.Filter(keep)
	log.Info().
		Str("table", table).
		Int("existing_keys", idx.Len()).
		Int("removed", ds.NumRows()-out.NumRows()).
		Msg("duplicates removed")
	return out, nil
}

// alignTypes приводит ключи из таблицы к типам колонок датасета,
// чтобы кортежи кодировались одинаково
func alignTypes(existing, ds *frame.Dataset, pk []string) (*frame.Dataset, error) {
	conv := schema.NewConverter()
	out := existing
	for i, name := range pk {
		target, _ := ds.Column(name)
		cols := out.Columns()
		if i >= len(cols) || cols[i].Type == target.Type || target.Type == "" {
			continue
		}
		values, err := conv.ConvertAll(cols[i].Values, target.Type)
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", name, err)
		}
		if out, err = out.ReplaceColumn(frame.Column{Name: cols[i].Name, Type: target.Type, Values: values}); err != nil {
			return nil, err
		}
	}
	return out, nil
}
