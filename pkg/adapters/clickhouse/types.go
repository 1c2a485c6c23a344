package clickhouse

import (
	"strings"

	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

// unwrapType снимает обертки Nullable(...) и LowCardinality(...)
func unwrapType(chType string) (string, bool) {
	s := strings.TrimSpace(chType)
	nullable := false
	for {
		switch {
		case strings.HasPrefix(s, "Nullable(") && strings.HasSuffix(s, ")"):
			s = s[len("Nullable(") : len(s)-1]
			nullable = true
		case strings.HasPrefix(s, "LowCardinality(") && strings.HasSuffix(s, ")"):
			s = s[len("LowCardinality(") : len(s)-1]
		default:
			return s, nullable
		}
	}
}

// ParseType сопоставляет тип ClickHouse семантическому типу
func ParseType(chType string) (schema.DataType, bool) {
	s, _ := unwrapType(chType)
	name := s
	if i := strings.Index(s, "("); i >= 0 {
		name = s[:i]
	}

	switch name {
	case "Int8":
		return schema.TypeInt8, true
	case "Int16":
		return schema.TypeInt16, true
	case "Int32":
		return schema.TypeInt32, true
	case "Int64":
		return schema.TypeInt64, true
	case "UInt8":
		return schema.TypeUint8, true
	case "UInt16":
		return schema.TypeUint16, true
	case "UInt32":
		return schema.TypeUint32, true
	case "UInt64":
		return schema.TypeUint64, true
	case "Float32":
		return schema.TypeFloat32, true
	case "Float64", "Decimal", "Decimal32", "Decimal64", "Decimal128", "Decimal256":
		return schema.TypeFloat64, true
	case "Bool", "Boolean":
		return schema.TypeBool, true
	case "String", "FixedString", "UUID", "Enum8", "Enum16", "IPv4", "IPv6":
		return schema.TypeString, true
	case "Date", "Date32":
		return schema.TypeDate, true
	case "Time", "Time64":
		return schema.TypeTime, true
	case "DateTime", "DateTime64":
		return schema.TypeDatetime, true
	}
	return "", false
}

// ColumnType возвращает тип колонки ClickHouse. Колонки с NULL, не входящие
// в ключ, оборачиваются в Nullable: ключ сортировки Nullable быть не может.
func ColumnType(col schema.ColumnDef) string {
	t := baseType(col.Type)
	if col.Nullable && !col.Key {
		return "Nullable(" + t + ")"
	}
	return t
}

func baseType(t schema.DataType) string {
	switch t {
	case schema.TypeInt8:
		return "Int8"
	case schema.TypeInt16:
		return "Int16"
	case schema.TypeInt32:
		return "Int32"
	case schema.TypeInt64, schema.TypeTime, schema.TypeDuration:
		return "Int64"
	case schema.TypeUint8:
		return "UInt8"
	case schema.TypeUint16:
		return "UInt16"
	case schema.TypeUint32:
		return "UInt32"
	case schema.TypeUint64:
		return "UInt64"
	case schema.TypeFloat32:
		return "Float32"
	case schema.TypeFloat64:
		return "Float64"
	case schema.TypeBool:
		return "Bool"
	case schema.TypeDate:
		return "Date32"
	case schema.TypeDatetime:
		return "DateTime64(6)"
	default:
		return "String"
	}
}
