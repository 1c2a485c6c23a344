package mssql

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ruslano69/sqlframe/pkg/adapters"
	"github.com/ruslano69/sqlframe/pkg/adapters/base"
	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

func init() {
	base.RegisterDialect(Dialect{}, "mssql", "sqlserver")
}

const (
	maxParams = 2100
	maxRows   = 1000
)

// Dialect - диалект SQL Server
type Dialect struct {
	base.StandardDialect
}

// Compile-time check
var _ base.Dialect = Dialect{}

// Name возвращает имя диалекта
func (Dialect) Name() string { return "mssql" }

// QuoteIdentifier экранирует идентификатор квадратными скобками
func (Dialect) QuoteIdentifier(name string) string {
	return schema.QuoteWith(name, "[", "]")
}

// Placeholder возвращает @pN
func (Dialect) Placeholder(n int) string { return "@p" + strconv.Itoa(n) }

// ParseColumnType распознает типы SQL Server
func (Dialect) ParseColumnType(dbType string) (schema.DataType, bool) {
	switch schema.ExtractBaseType(dbType) {
	case "TINYINT":
		return schema.TypeUint8, true
	case "TIMESTAMP", "ROWVERSION", "UNIQUEIDENTIFIER":
		return schema.TypeBytes, true
	case "SMALLMONEY":
		return schema.TypeFloat64, true
	case "XML", "SQL_VARIANT":
		return schema.TypeString, true
	}
	return schema.ParseSQLType(dbType)
}

// ColumnType возвращает тип колонки для CREATE TABLE
func (Dialect) ColumnType(col schema.ColumnDef) string {
	switch col.Type {
	case schema.TypeInt8, schema.TypeInt16:
		return "SMALLINT"
	case schema.TypeUint8:
		return "TINYINT"
	case schema.TypeInt32, schema.TypeUint16:
		return "INT"
	case schema.TypeInt64, schema.TypeUint32:
		return "BIGINT"
	case schema.TypeUint64:
		return "DECIMAL(20,0)"
	case schema.TypeFloat32:
		return "REAL"
	case schema.TypeFloat64:
		return "FLOAT"
	case schema.TypeBool:
		return "BIT"
	case schema.TypeBytes:
		if col.Key {
			return "VARBINARY(450)"
		}
		return "VARBINARY(MAX)"
	case schema.TypeDate:
		return "DATE"
	case schema.TypeTime, schema.TypeDuration:
		return "TIME(6)"
	case schema.TypeDatetime:
		return "DATETIME2(6)"
	default:
		if col.Key {
			return "NVARCHAR(450)"
		}
		return "NVARCHAR(MAX)"
	}
}

// FinishCreateTable заменяет IF NOT EXISTS проверкой OBJECT_ID
func (Dialect) FinishCreateTable(stmt, table string, _ []string) string {
	body, ok := strings.CutPrefix(stmt, "CREATE TABLE IF NOT EXISTS ")
	if !ok {
		return stmt
	}
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\nCREATE TABLE %s",
		strings.ReplaceAll(table, "'", "''"), body)
}

// ReflectTable читает information_schema в схеме по умолчанию
func (d Dialect) ReflectTable(ctx context.Context, q base.Querier, table string) (*adapters.TableInfo, error) {
	return base.InformationSchema{CurrentSchema: "SCHEMA_NAME()"}.Reflect(ctx, q, d, table)
}

// InsertLimits - лимиты параметров и строк VALUES
func (Dialect) InsertLimits() (int, int) { return maxParams, maxRows }
