package duckdb

import (
	"strings"

	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

// ParseType сопоставляет тип DuckDB семантическому типу
func ParseType(duckType string) (schema.DataType, bool) {
	switch schema.ExtractBaseType(duckType) {
	case "UTINYINT":
		return schema.TypeUint8, true
	case "USMALLINT":
		return schema.TypeUint16, true
	case "UINTEGER":
		return schema.TypeUint32, true
	case "UBIGINT":
		return schema.TypeUint64, true
	case "HUGEINT", "UHUGEINT":
		return schema.TypeFloat64, true
	case "TIMESTAMP_S", "TIMESTAMP_MS", "TIMESTAMP_NS":
		return schema.TypeDatetime, true
	}
	if strings.HasSuffix(strings.TrimSpace(duckType), "[]") {
		return schema.TypeString, true
	}
	return schema.ParseSQLType(duckType)
}

// ColumnType возвращает тип колонки для CREATE TABLE
func ColumnType(col schema.ColumnDef) string {
	switch col.Type {
	case schema.TypeInt8:
		return "TINYINT"
	case schema.TypeInt16:
		return "SMALLINT"
	case schema.TypeInt32:
		return "INTEGER"
	case schema.TypeInt64, schema.TypeDuration:
		return "BIGINT"
	case schema.TypeUint8:
		return "UTINYINT"
	case schema.TypeUint16:
		return "USMALLINT"
	case schema.TypeUint32:
		return "UINTEGER"
	case schema.TypeUint64:
		return "UBIGINT"
	case schema.TypeFloat32:
		return "FLOAT"
	case schema.TypeFloat64:
		return "DOUBLE"
	case schema.TypeBool:
		return "BOOLEAN"
	case schema.TypeBytes:
		return "BLOB"
	case schema.TypeDate:
		return "DATE"
	case schema.TypeTime:
		return "TIME"
	case schema.TypeDatetime:
		return "TIMESTAMP"
	default:
		return "VARCHAR"
	}
}
