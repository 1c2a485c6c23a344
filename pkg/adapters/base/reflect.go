package base

import (
	"context"
	"fmt"
	"strings"

	"github.com/ruslano69/sqlframe/pkg/adapters"
	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

// InformationSchema - рефлексия таблицы через information_schema
// (PostgreSQL, MySQL, MS SQL и прочие ANSI СУБД)
type InformationSchema struct {
	// CurrentSchema - SQL выражение схемы по умолчанию: "current_schema()",
	// "DATABASE()", "SCHEMA_NAME()". Пусто - без фильтра по схеме.
	CurrentSchema string

	// TypeColumn - колонка information_schema.columns с именем типа
	// (по умолчанию data_type; MySQL - column_type, там есть unsigned)
	TypeColumn string
}

// Reflect читает колонки (в порядке ordinal_position) и первичный ключ
func (is InformationSchema) Reflect(ctx context.Context, q Querier, d Dialect, table string) (*adapters.TableInfo, error) {
	cols, err := is.Columns(ctx, q, d, table)
	if err != nil {
		return nil, err
	}
	info := &adapters.TableInfo{Name: table, Columns: cols}
	if len(cols) == 0 {
		return info, nil
	}

	if info.PrimaryKey, err = is.PrimaryKey(ctx, q, d, table); err != nil {
		return nil, err
	}
	MarkKeys(info)
	return info, nil
}

// Columns читает колонки таблицы. Нет таблицы - пустой результат.
func (is InformationSchema) Columns(ctx context.Context, q Querier, d Dialect, table string) ([]schema.ColumnDef, error) {
	schemaName, name := SplitTable(table)

	typeColumn := is.TypeColumn
	if typeColumn == "" {
		typeColumn = "data_type"
	}

	cond, args := is.filter(d, "", schemaName, name)
	query := fmt.Sprintf(
		"SELECT column_name, %s, is_nullable FROM information_schema.columns WHERE %s ORDER BY ordinal_position",
		typeColumn, cond)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []schema.ColumnDef
	for rows.Next() {
		var colName, dataType, nullable string
		if err := rows.Scan(&colName, &dataType, &nullable); err != nil {
			return nil, err
		}
		t, _ := d.ParseColumnType(dataType)
		cols = append(cols, schema.ColumnDef{
			Name:     colName,
			Type:     t,
			Nullable: strings.EqualFold(nullable, "YES"),
			SQLType:  dataType,
		})
	}
	return cols, rows.Err()
}

// PrimaryKey читает колонки первичного ключа в порядке объявления
func (is InformationSchema) PrimaryKey(ctx context.Context, q Querier, d Dialect, table string) ([]string, error) {
	schemaName, name := SplitTable(table)

	cond, args := is.filter(d, "tc.", schemaName, name)
	query := fmt.Sprintf(`SELECT kcu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON tc.constraint_name = kcu.constraint_name
 AND tc.table_schema = kcu.table_schema
 AND tc.table_name = kcu.table_name
WHERE tc.constraint_type = 'PRIMARY KEY' AND %s
ORDER BY kcu.ordinal_position`, cond)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, err
		}
		keys = append(keys, col)
	}
	return keys, rows.Err()
}

func (is InformationSchema) filter(d Dialect, prefix, schemaName, name string) (string, []any) {
	cond := fmt.Sprintf("%stable_name = %s", prefix, d.Placeholder(1))
	args := []any{name}

	switch {
	case schemaName != "":
		cond += fmt.Sprintf(" AND %stable_schema = %s", prefix, d.Placeholder(2))
		args = append(args, schemaName)
	case is.CurrentSchema != "":
		cond += fmt.Sprintf(" AND %stable_schema = %s", prefix, is.CurrentSchema)
	}
	return cond, args
}

// SplitTable делит "schema.table" на части. Без точки схема пустая.
func SplitTable(table string) (schemaName, name string) {
	if i := strings.LastIndex(table, "."); i >= 0 {
		return table[:i], table[i+1:]
	}
	return "", table
}

// MarkKeys отмечает колонки первичного ключа в TableInfo
func MarkKeys(info *adapters.TableInfo) {
	keys := make(map[string]bool, len(info.PrimaryKey))
	for _, k := range info.PrimaryKey {
		keys[k] = true
	}
	for i := range info.Columns {
		info.Columns[i].Key = keys[info.Columns[i].Name]
	}
}
