package postgres

import (
	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

// ParseType сопоставляет тип PostgreSQL (имя из каталога или pg_type) семантическому типу
func ParseType(pgType string) (schema.DataType, bool) {
	return schema.ParseSQLType(pgType)
}

// ColumnType возвращает тип колонки для CREATE TABLE
func ColumnType(col schema.ColumnDef) string {
	switch col.Type {
	case schema.TypeInt8, schema.TypeInt16, schema.TypeUint8:
		return "SMALLINT"
	case schema.TypeInt32, schema.TypeUint16:
		return "INTEGER"
	case schema.TypeInt64, schema.TypeUint32:
		return "BIGINT"
	case schema.TypeUint64:
		return "NUMERIC(20)"
	case schema.TypeFloat32:
		return "REAL"
	case schema.TypeFloat64:
		return "DOUBLE PRECISION"
	case schema.TypeBool:
		return "BOOLEAN"
	case schema.TypeBytes:
		return "BYTEA"
	case schema.TypeDate:
		return "DATE"
	case schema.TypeTime:
		return "TIME"
	case schema.TypeDatetime:
		return "TIMESTAMP"
	case schema.TypeDuration:
		return "INTERVAL"
	default:
		return "TEXT"
	}
}
