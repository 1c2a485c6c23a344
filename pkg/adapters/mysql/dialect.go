package mysql

import (
	"context"
	"strings"
	"time"

	"github.com/ruslano69/sqlframe/pkg/adapters"
	"github.com/ruslano69/sqlframe/pkg/adapters/base"
	"github.com/ruslano69/sqlframe/pkg/core/frame"
	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

func init() {
	base.RegisterDialect(Dialect{}, "mysql", "mariadb")
}

// maxPlaceholders - лимит параметров prepared statement
const maxPlaceholders = 65535

// Dialect - диалект MySQL/MariaDB
type Dialect struct {
	base.StandardDialect
}

// Compile-time check
var _ base.Dialect = Dialect{}

// Name возвращает имя диалекта
func (Dialect) Name() string { return "mysql" }

// QuoteIdentifier экранирует идентификатор обратными кавычками
func (Dialect) QuoteIdentifier(name string) string {
	return schema.QuoteWith(name, "`", "`")
}

// ColumnType возвращает тип колонки для CREATE TABLE
func (Dialect) ColumnType(col schema.ColumnDef) string { return ColumnType(col) }

// ParseColumnType распознает типы MySQL
func (Dialect) ParseColumnType(dbType string) (schema.DataType, bool) { return ParseType(dbType) }

// ReflectTable читает information_schema текущей базы.
// Тип берется из column_type: там есть unsigned и tinyint(1).
func (d Dialect) ReflectTable(ctx context.Context, q base.Querier, table string) (*adapters.TableInfo, error) {
	return base.InformationSchema{CurrentSchema: "DATABASE()", TypeColumn: "column_type"}.Reflect(ctx, q, d, table)
}

// IgnoreInsert превращает INSERT INTO в INSERT IGNORE INTO
func (Dialect) IgnoreInsert() (base.Hook, bool) {
	return func(stmt string) string {
		trimmed := strings.TrimLeft(stmt, " \t\r\n")
		return stmt[:len(stmt)-len(trimmed)] + "INSERT IGNORE INTO " + trimmed[len("INSERT INTO "):]
	}, true
}

// InsertLimits - лимит параметров
func (Dialect) InsertLimits() (int, int) { return maxPlaceholders, 0 }

// PrepareWrite - TIME в MySQL вмещает длительности до 838 часов, приведение не нужно
func (Dialect) PrepareWrite(ds *frame.Dataset) (*frame.Dataset, error) { return ds, nil }

// BindValue передает длительности литералом TIME, время суток с переносом через сутки
func (Dialect) BindValue(v any, t schema.DataType) any {
	d, ok := v.(time.Duration)
	if !ok {
		return v
	}
	if t == schema.TypeTime {
		d = schema.TimeOfDay(d)
	}
	return FormatTime(d)
}
