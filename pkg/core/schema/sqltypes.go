package schema

import "strings"

// ExtractBaseType извлекает базовый тип: "VARCHAR(100)" → "VARCHAR",
// "TIMESTAMP WITH TIME ZONE" → "TIMESTAMP WITH TIME ZONE", "int unsigned" → "INT UNSIGNED"
func ExtractBaseType(sqlType string) string {
	s := strings.ToUpper(strings.TrimSpace(sqlType))
	if i := strings.Index(s, "("); i >= 0 {
		rest := ""
		if j := strings.Index(s[i:], ")"); j >= 0 {
			rest = s[i+j+1:]
		}
		s = strings.TrimSpace(s[:i] + rest)
	}
	return strings.Join(strings.Fields(s), " ")
}

// ParseSQLType сопоставляет распространенные ANSI/SQL имена типов семантическому типу.
// ok=false - тип неизвестен, значения колонки остаются как вернул драйвер.
func ParseSQLType(sqlType string) (DataType, bool) {
	base := ExtractBaseType(sqlType)
	unsigned := strings.HasSuffix(base, " UNSIGNED")
	base = strings.TrimSuffix(base, " UNSIGNED")

	switch base {
	case "TINYINT", "INT1":
		if unsigned {
			return TypeUint8, true
		}
		return TypeInt8, true
	case "SMALLINT", "INT2", "SMALLSERIAL":
		if unsigned {
			return TypeUint16, true
		}
		return TypeInt16, true
	case "INT", "INTEGER", "INT4", "MEDIUMINT", "SERIAL":
		if unsigned {
			return TypeUint32, true
		}
		return TypeInt32, true
	case "BIGINT", "INT8", "BIGSERIAL":
		if unsigned {
			return TypeUint64, true
		}
		return TypeInt64, true
	case "REAL", "FLOAT4":
		return TypeFloat32, true
	case "FLOAT", "DOUBLE", "DOUBLE PRECISION", "FLOAT8", "NUMERIC", "DECIMAL", "MONEY":
		return TypeFloat64, true
	case "BOOL", "BOOLEAN", "BIT":
		return TypeBool, true
	case "TEXT", "VARCHAR", "CHAR", "CHARACTER", "CHARACTER VARYING", "NVARCHAR", "NCHAR",
		"NTEXT", "CLOB", "UUID", "JSON", "JSONB", "STRING", "MEDIUMTEXT", "LONGTEXT", "TINYTEXT", "BPCHAR", "CITEXT", "NAME":
		return TypeString, true
	case "BLOB", "BYTEA", "BINARY", "VARBINARY", "IMAGE", "LONGBLOB", "MEDIUMBLOB", "TINYBLOB":
		return TypeBytes, true
	case "DATE":
		return TypeDate, true
	case "TIME", "TIME WITHOUT TIME ZONE", "TIME WITH TIME ZONE", "TIMETZ":
		return TypeTime, true
	case "DATETIME", "DATETIME2", "SMALLDATETIME", "DATETIMEOFFSET", "TIMESTAMP",
		"TIMESTAMPTZ", "TIMESTAMP WITHOUT TIME ZONE", "TIMESTAMP WITH TIME ZONE":
		return TypeDatetime, true
	case "INTERVAL":
		return TypeDuration, true
	default:
		return "", false
	}
}
