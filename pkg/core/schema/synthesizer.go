package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnknownKey - ключевая колонка отсутствует в датасете
var ErrUnknownKey = errors.New("key column not found")

// Dialect - то, что синтезатору нужно знать о диалекте SQL конкретной СУБД
type Dialect interface {
	// Name - имя диалекта ("sqlite", "postgres", "clickhouse", ...)
	Name() string

	// QuoteIdentifier экранирует одиночный идентификатор
	QuoteIdentifier(name string) string

	// ColumnType возвращает SQL тип для колонки (col.Key - колонка входит в ключ)
	ColumnType(col ColumnDef) string

	// FinishCreateTable - пост-обработка готового CREATE TABLE
	// (engine-клауза, нестандартный guard существования и т.п.)
	FinishCreateTable(stmt, table string, keys []string) string
}

// TableSpec - входные данные синтезатора
type TableSpec struct {
	Table   string
	Columns []ColumnDef
	Keys    []string

	// Overrides - явные SQL типы колонок (имя колонки → тип)
	Overrides map[string]string
}

// Synthesize строит идемпотентный CREATE TABLE IF NOT EXISTS по колонкам датасета:
//
//	CREATE TABLE IF NOT EXISTS "t" (
//	  "id" BIGINT,
//	  "val" TEXT,
//	  CONSTRAINT t_pk PRIMARY KEY ("id")
//	)
func Synthesize(spec TableSpec, d Dialect) (string, error) {
	if spec.Table == "" {
		return "", fmt.Errorf("table name is required")
	}
	if err := ValidateColumns(spec.Columns); err != nil {
		return "", fmt.Errorf("table %s: %w", spec.Table, err)
	}

	keySet := make(map[string]bool, len(spec.Keys))
	for _, k := range spec.Keys {
		keySet[k] = true
	}
	found := 0

	defs := make([]string, 0, len(spec.Columns)+1)
	for _, col := range spec.Columns {
		col.Key = keySet[col.Name]
		if col.Key {
			found++
		}

		sqlType, ok := spec.Overrides[col.Name]
		if !ok {
			sqlType = d.ColumnType(col)
		}
		defs = append(defs, fmt.Sprintf("%s %s", d.QuoteIdentifier(col.Name), sqlType))
	}

	if found != len(keySet) {
		names := make(map[string]bool, len(spec.Columns))
		for _, col := range spec.Columns {
			names[col.Name] = true
		}
		for _, k := range spec.Keys {
			if !names[k] {
				return "", fmt.Errorf("%w: %s", ErrUnknownKey, k)
			}
		}
	}

	if len(spec.Keys) > 0 {
		quoted := make([]string, len(spec.Keys))
		for i, k := range spec.Keys {
			quoted[i] = d.QuoteIdentifier(k)
		}
		defs = append(defs, fmt.Sprintf("CONSTRAINT %s_pk PRIMARY KEY (%s)",
			constraintName(spec.Table), strings.Join(quoted, ", ")))
	}

	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)",
		QuoteQualified(d, spec.Table),
		strings.Join(defs, ",\n  "))

	return d.FinishCreateTable(stmt, spec.Table, spec.Keys), nil
}

var primaryKeyClause = regexp.MustCompile(`(?i),\s*(CONSTRAINT\s+\S+\s+)?PRIMARY\s+KEY\s*\([^)]*\)`)

// StripPrimaryKey убирает из CREATE TABLE клаузу первичного ключа
func StripPrimaryKey(stmt string) string {
	return primaryKeyClause.ReplaceAllString(stmt, "")
}

// QuoteQualified экранирует имя вида schema.table по частям
func QuoteQualified(d Dialect, name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = d.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// QuoteWith экранирует идентификатор символами open/close, удваивая close внутри имени
func QuoteWith(name, open, close string) string {
	return open + strings.ReplaceAll(name, close, close+close) + close
}

func constraintName(table string) string {
	if i := strings.LastIndex(table, "."); i >= 0 {
		table = table[i+1:]
	}
	return strings.Map(func(r rune) rune {
		if r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return r
		}
		return '_'
	}, table)
}
