package mysql

import (
	"fmt"
	"strings"
	"time"

	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

// ParseType сопоставляет тип MySQL семантическому типу.
// Понимает и column_type из information_schema ("int(10) unsigned", "tinyint(1)"),
// и DatabaseTypeName драйвера ("UNSIGNED BIGINT").
func ParseType(mysqlType string) (schema.DataType, bool) {
	s := strings.ToUpper(strings.TrimSpace(mysqlType))
	if strings.HasPrefix(s, "TINYINT(1)") {
		return schema.TypeBool, true
	}
	if rest, ok := strings.CutPrefix(s, "UNSIGNED "); ok {
		s = rest + " UNSIGNED"
	}
	switch schema.ExtractBaseType(s) {
	case "YEAR":
		return schema.TypeInt16, true
	case "ENUM", "SET":
		return schema.TypeString, true
	}
	return schema.ParseSQLType(s)
}

// ColumnType возвращает тип колонки для CREATE TABLE
func ColumnType(col schema.ColumnDef) string {
	switch col.Type {
	case schema.TypeInt8:
		return "TINYINT"
	case schema.TypeInt16:
		return "SMALLINT"
	case schema.TypeInt32:
		return "INT"
	case schema.TypeInt64:
		return "BIGINT"
	case schema.TypeUint8:
		return "TINYINT UNSIGNED"
	case schema.TypeUint16:
		return "SMALLINT UNSIGNED"
	case schema.TypeUint32:
		return "INT UNSIGNED"
	case schema.TypeUint64:
		return "BIGINT UNSIGNED"
	case schema.TypeFloat32:
		return "FLOAT"
	case schema.TypeFloat64:
		return "DOUBLE"
	case schema.TypeBool:
		return "BOOLEAN"
	case schema.TypeBytes:
		if col.Key {
			return "VARBINARY(255)"
		}
		return "LONGBLOB"
	case schema.TypeDate:
		return "DATE"
	case schema.TypeTime, schema.TypeDuration:
		return "TIME(6)"
	case schema.TypeDatetime:
		return "DATETIME(6)"
	default:
		if col.Key {
			return "VARCHAR(255)"
		}
		return "LONGTEXT"
	}
}

// FormatTime форматирует длительность в литерал TIME без переноса через сутки:
// 25h30m → "25:30:00.000000", -90s → "-00:01:30.000000"
func FormatTime(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	return fmt.Sprintf("%s%02d:%02d:%02d.%06d", sign, h, m, s, d/time.Microsecond)
}
