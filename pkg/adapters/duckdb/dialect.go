package duckdb

import (
	"context"
	"fmt"

	"github.com/ruslano69/sqlframe/pkg/adapters"
	"github.com/ruslano69/sqlframe/pkg/adapters/base"
	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

// Dialect - диалект DuckDB. Квотирование и параметры как в ANSI SQL.
type Dialect struct {
	base.StandardDialect
}

// Compile-time check
var _ adapters.Dialect = Dialect{}

// Name возвращает имя диалекта
func (Dialect) Name() string { return "duckdb" }

// ColumnType возвращает тип колонки для CREATE TABLE
func (Dialect) ColumnType(col schema.ColumnDef) string { return ColumnType(col) }

// ParseColumnType распознает типы DuckDB
func (Dialect) ParseColumnType(dbType string) (schema.DataType, bool) { return ParseType(dbType) }

var columns = base.InformationSchema{CurrentSchema: "current_schema()"}

// ReflectTable читает колонки из information_schema,
// первичный ключ из duckdb_constraints()
func (d Dialect) ReflectTable(ctx context.Context, q base.Querier, table string) (*adapters.TableInfo, error) {
	cols, err := columns.Columns(ctx, q, d, table)
	if err != nil {
		return nil, err
	}
	info := &adapters.TableInfo{Name: table, Columns: cols}
	if len(cols) == 0 {
		return info, nil
	}

	schemaName, name := base.SplitTable(table)
	query := "SELECT constraint_column_names FROM duckdb_constraints() " +
		"WHERE constraint_type = 'PRIMARY KEY' AND table_name = ?"
	args := []any{name}
	if schemaName != "" {
		query += " AND schema_name = ?"
		args = append(args, schemaName)
	} else {
		query += " AND schema_name = current_schema()"
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var names any
		if err := rows.Scan(&names); err != nil {
			return nil, err
		}
		list, ok := names.([]any)
		if !ok {
			return nil, fmt.Errorf("unexpected constraint_column_names value %T", names)
		}
		for _, n := range list {
			info.PrimaryKey = append(info.PrimaryKey, fmt.Sprint(n))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	base.MarkKeys(info)
	return info, nil
}
