package adapters

import "strings"

// Family - семейство СУБД. Определяет стратегию чтения и записи.
type Family string

const (
	// FamilyColumnar - колоночное аналитическое хранилище (ClickHouse)
	FamilyColumnar Family = "columnar-analytical"

	// FamilyEmbedded - встраиваемый аналитический движок (DuckDB)
	FamilyEmbedded Family = "embedded-analytical"

	// FamilyGeneric - все остальные СУБД через database/sql
	FamilyGeneric Family = "generic-relational"
)

// Classify определяет семейство по имени драйвера из дескриптора.
// Неизвестные драйверы относятся к FamilyGeneric.
//
//	"clickhouse", "clickhouse+native", "clickhouse+http" → FamilyColumnar
//	"duckdb"                                            → FamilyEmbedded
//	"sqlite", "postgres", "mysql", "sqlserver", ...     → FamilyGeneric
func Classify(driver string) Family {
	d := strings.ToLower(strings.TrimSpace(driver))
	switch {
	case strings.HasPrefix(d, "clickhouse"):
		return FamilyColumnar
	case strings.HasPrefix(d, "duckdb"):
		return FamilyEmbedded
	default:
		return FamilyGeneric
	}
}

// String возвращает имя семейства
func (f Family) String() string {
	return string(f)
}
