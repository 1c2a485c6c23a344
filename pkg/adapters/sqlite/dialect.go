package sqlite

import (
	"context"
	"strings"

	"github.com/ruslano69/sqlframe/pkg/adapters"
	"github.com/ruslano69/sqlframe/pkg/adapters/base"
	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

func init() {
	base.RegisterDialect(Dialect{}, "sqlite", "sqlite3")
}

// maxVariables - SQLITE_MAX_VARIABLE_NUMBER сборок SQLite >= 3.32
const maxVariables = 32766

// Dialect - диалект SQLite
type Dialect struct {
	base.StandardDialect
}

// Compile-time check
var _ base.Dialect = Dialect{}

// Name возвращает имя диалекта
func (Dialect) Name() string { return "sqlite" }

// ColumnType возвращает тип колонки для CREATE TABLE
func (Dialect) ColumnType(col schema.ColumnDef) string { return ColumnType(col) }

// ParseColumnType распознает объявленные типы SQLite
func (Dialect) ParseColumnType(dbType string) (schema.DataType, bool) { return ParseType(dbType) }

// InsertLimits - лимит параметров в одном запросе
func (Dialect) InsertLimits() (int, int) { return maxVariables, 0 }

// IgnoreInsert превращает INSERT INTO в INSERT OR IGNORE INTO
func (Dialect) IgnoreInsert() (base.Hook, bool) {
	return func(stmt string) string {
		return strings.Replace(stmt, "INSERT INTO ", "INSERT OR IGNORE INTO ", 1)
	}, true
}

// ReflectTable читает pragma_table_info. Для "schema.table" используется
// схема подключенной БД (main, temp, attached).
func (d Dialect) ReflectTable(ctx context.Context, q base.Querier, table string) (*adapters.TableInfo, error) {
	schemaName, name := base.SplitTable(table)
	if schemaName == "" {
		schemaName = "main"
	}

	rows, err := q.QueryContext(ctx,
		`SELECT name, type, "notnull", pk FROM pragma_table_info(?, ?) ORDER BY cid`, name, schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	info := &adapters.TableInfo{Name: table}
	pkPos := map[int]string{}
	for rows.Next() {
		var (
			colName, colType string
			notNull, pk      int
		)
		if err := rows.Scan(&colName, &colType, &notNull, &pk); err != nil {
			return nil, err
		}
		t, _ := d.ParseColumnType(colType)
		info.Columns = append(info.Columns, schema.ColumnDef{
			Name:     colName,
			Type:     t,
			Nullable: notNull == 0,
			SQLType:  colType,
		})
		if pk > 0 {
			pkPos[pk] = colName
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := 1; i <= len(pkPos); i++ {
		info.PrimaryKey = append(info.PrimaryKey, pkPos[i])
	}
	base.MarkKeys(info)
	return info, nil
}
