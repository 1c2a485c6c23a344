package sqlite

import (
	"strings"

	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

// ParseType сопоставляет объявленный тип колонки SQLite семантическому типу.
// Целые в SQLite всегда 64-битные, поэтому любое *INT* дает int64.
func ParseType(sqliteType string) (schema.DataType, bool) {
	base := schema.ExtractBaseType(sqliteType)
	if base == "" {
		return "", false
	}

	if strings.Contains(base, "INT") && !strings.Contains(base, "INTERVAL") && !strings.Contains(base, "POINT") {
		return schema.TypeInt64, true
	}

	switch base {
	case "REAL", "FLOAT", "DOUBLE":
		return schema.TypeFloat64, true
	case "DATETIME", "TIMESTAMP":
		return schema.TypeDatetime, true
	}
	return schema.ParseSQLType(base)
}

// ColumnType возвращает тип колонки для CREATE TABLE
func ColumnType(col schema.ColumnDef) string {
	switch col.Type {
	case schema.TypeInt8, schema.TypeInt16, schema.TypeInt32, schema.TypeInt64,
		schema.TypeUint8, schema.TypeUint16, schema.TypeUint32, schema.TypeUint64:
		return "INTEGER"
	case schema.TypeFloat32, schema.TypeFloat64:
		return "REAL"
	case schema.TypeBool:
		return "BOOLEAN"
	case schema.TypeBytes:
		return "BLOB"
	case schema.TypeDate:
		return "DATE"
	case schema.TypeTime, schema.TypeDuration:
		return "TIME"
	case schema.TypeDatetime:
		return "DATETIME"
	default:
		// В SQLite TEXT не имеет ограничения длины, в том числе для ключей
		return "TEXT"
	}
}
