package schema

import (
	"fmt"
	"strings"
)

// DataType представляет семантический тип колонки датасета
type DataType string

// Поддерживаемые семантические типы
const (
	TypeInt8     DataType = "int8"
	TypeInt16    DataType = "int16"
	TypeInt32    DataType = "int32"
	TypeInt64    DataType = "int64"
	TypeUint8    DataType = "uint8"
	TypeUint16   DataType = "uint16"
	TypeUint32   DataType = "uint32"
	TypeUint64   DataType = "uint64"
	TypeFloat32  DataType = "float32"
	TypeFloat64  DataType = "float64"
	TypeBool     DataType = "bool"
	TypeString   DataType = "string"
	TypeBytes    DataType = "bytes"
	TypeDate     DataType = "date"
	TypeTime     DataType = "time" // время суток, хранится как time.Duration от полуночи
	TypeDatetime DataType = "datetime"
	TypeDuration DataType = "duration"
)

// ColumnDef описание колонки для синтеза схемы и приведения типов
type ColumnDef struct {
	Name     string
	Type     DataType
	Nullable bool
	Key      bool

	// SQLType - нативный тип СУБД (заполняется при рефлексии таблицы)
	SQLType string
}

// ValidationError ошибка приведения значения к типу
type ValidationError struct {
	Field   string
	Message string
	Value   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s (value: '%s')", e.Message, e.Value)
	}
	return fmt.Sprintf("validation error for field '%s': %s (value: '%s')",
		e.Field, e.Message, e.Value)
}

// IsIntegerType проверяет является ли тип целочисленным (знаковым или нет)
func IsIntegerType(t DataType) bool {
	return IsSignedType(t) || IsUnsignedType(t)
}

// IsSignedType проверяет является ли тип знаковым целым
func IsSignedType(t DataType) bool {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		return true
	default:
		return false
	}
}

// IsUnsignedType проверяет является ли тип беззнаковым целым
func IsUnsignedType(t DataType) bool {
	switch t {
	case TypeUint8, TypeUint16, TypeUint32, TypeUint64:
		return true
	default:
		return false
	}
}

// IsFloatType проверяет является ли тип вещественным
func IsFloatType(t DataType) bool {
	return t == TypeFloat32 || t == TypeFloat64
}

// IsTemporalType проверяет является ли тип временным
func IsTemporalType(t DataType) bool {
	switch t {
	case TypeDate, TypeTime, TypeDatetime, TypeDuration:
		return true
	default:
		return false
	}
}

// aliases синонимы, которые встречаются в конфигурации и в метаданных драйверов
var aliases = map[string]DataType{
	"tinyint":   TypeInt8,
	"smallint":  TypeInt16,
	"int":       TypeInt32,
	"integer":   TypeInt32,
	"bigint":    TypeInt64,
	"float":     TypeFloat64,
	"double":    TypeFloat64,
	"real":      TypeFloat32,
	"boolean":   TypeBool,
	"text":      TypeString,
	"varchar":   TypeString,
	"blob":      TypeBytes,
	"binary":    TypeBytes,
	"timestamp": TypeDatetime,
	"interval":  TypeDuration,
	"timedelta": TypeDuration,
}

// NormalizeType нормализует синонимы типов (регистр не важен)
func NormalizeType(t DataType) DataType {
	s := strings.ToLower(strings.TrimSpace(string(t)))
	if alias, ok := aliases[s]; ok {
		return alias
	}
	return DataType(s)
}

// IsValidType проверяет валидность типа данных
func IsValidType(t DataType) bool {
	switch NormalizeType(t) {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64,
		TypeUint8, TypeUint16, TypeUint32, TypeUint64,
		TypeFloat32, TypeFloat64, TypeBool, TypeString, TypeBytes,
		TypeDate, TypeTime, TypeDatetime, TypeDuration:
		return true
	default:
		return false
	}
}
