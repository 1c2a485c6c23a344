package base

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ruslano69/sqlframe/pkg/adapters"
	"github.com/ruslano69/sqlframe/pkg/core/coerce"
	"github.com/ruslano69/sqlframe/pkg/core/frame"
	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

// Querier - то, через что выполняется рефлексия (*sql.DB, *sql.Tx, *sql.Conn)
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Dialect - особенности конкретной СУБД семейства generic-relational
type Dialect interface {
	adapters.Dialect

	// ParseColumnType сопоставляет имя типа (DatabaseTypeName или тип из каталога)
	// семантическому типу. ok=false - тип неизвестен.
	ParseColumnType(dbType string) (schema.DataType, bool)

	// ReflectTable читает колонки и первичный ключ таблицы.
	// Для несуществующей таблицы возвращает TableInfo без колонок.
	ReflectTable(ctx context.Context, q Querier, table string) (*adapters.TableInfo, error)

	// IgnoreInsert возвращает hook, превращающий INSERT во вставку
	// с пропуском конфликтов ключа. ok=false - диалект так не умеет.
	IgnoreInsert() (Hook, bool)

	// InsertLimits - максимум параметров и строк в одном INSERT (0 - без ограничения)
	InsertLimits() (maxParams, maxRows int)

	// PrepareWrite приводит датасет к представлению, которое примет СУБД
	PrepareWrite(ds *frame.Dataset) (*frame.Dataset, error)

	// BindValue приводит значение колонки типа t к параметру драйвера
	BindValue(v any, t schema.DataType) any

	// NormalizeValue приводит специфичные значения драйвера к базовым Go типам
	NormalizeValue(v any) any
}

// ========== Реестр диалектов ==========

var (
	dialectsMu sync.RWMutex
	dialects   = map[string]Dialect{}
)

// RegisterDialect регистрирует диалект под именами драйверов
//
// Пример (в pkg/adapters/sqlite/dialect.go):
//
//	func init() {
//	    base.RegisterDialect(Dialect{}, "sqlite", "sqlite3")
//	}
func RegisterDialect(d Dialect, drivers ...string) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	for _, name := range drivers {
		dialects[strings.ToLower(name)] = d
	}
}

// LookupDialect находит диалект по имени драйвера из дескриптора.
// Суффикс после "+" ("postgres+pgx") не учитывается.
// Для неизвестного драйвера возвращается StandardDialect.
func LookupDialect(driver string) Dialect {
	name := strings.ToLower(strings.TrimSpace(driver))
	if i := strings.Index(name, "+"); i >= 0 {
		name = name[:i]
	}

	dialectsMu.RLock()
	defer dialectsMu.RUnlock()

	if d, ok := dialects[name]; ok {
		return d
	}
	return StandardDialect{}
}

// ========== StandardDialect ==========

// StandardDialect - ANSI SQL: двойные кавычки, "?" как параметр,
// рефлексия через information_schema, без hook'а пропуска конфликтов.
// Диалекты СУБД встраивают его и переопределяют отличающиеся методы.
type StandardDialect struct{}

// Compile-time check
var _ Dialect = StandardDialect{}

// Name возвращает имя диалекта
func (StandardDialect) Name() string { return "standard" }

// QuoteIdentifier экранирует идентификатор двойными кавычками
func (StandardDialect) QuoteIdentifier(name string) string {
	return schema.QuoteWith(name, `"`, `"`)
}

// Placeholder возвращает "?"
func (StandardDialect) Placeholder(int) string { return "?" }

// ColumnType возвращает ANSI тип колонки
func (StandardDialect) ColumnType(col schema.ColumnDef) string {
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
		return "BLOB"
	case schema.TypeDate:
		return "DATE"
	case schema.TypeTime, schema.TypeDuration:
		return "TIME"
	case schema.TypeDatetime:
		return "TIMESTAMP"
	default:
		if col.Key {
			return "VARCHAR(255)"
		}
		return "TEXT"
	}
}

// FinishCreateTable возвращает запрос без изменений
func (StandardDialect) FinishCreateTable(stmt, _ string, _ []string) string { return stmt }

// ParseColumnType распознает ANSI имена типов
func (StandardDialect) ParseColumnType(dbType string) (schema.DataType, bool) {
	return schema.ParseSQLType(dbType)
}

// ReflectTable читает information_schema без фильтра по схеме
func (d StandardDialect) ReflectTable(ctx context.Context, q Querier, table string) (*adapters.TableInfo, error) {
	return InformationSchema{}.Reflect(ctx, q, d, table)
}

// IgnoreInsert - стандартного синтаксиса нет
func (StandardDialect) IgnoreInsert() (Hook, bool) { return nil, false }

// InsertLimits - без ограничений
func (StandardDialect) InsertLimits() (int, int) { return 0, 0 }

// PrepareWrite превращает длительности во время суток
func (StandardDialect) PrepareWrite(ds *frame.Dataset) (*frame.Dataset, error) {
	return coerce.DurationsToTimeOfDay(ds)
}

// BindValue передает время суток строкой HH:MM:SS.ffffff
func (StandardDialect) BindValue(v any, t schema.DataType) any {
	return BindTimeOfDay(v, t)
}

// NormalizeValue возвращает значение без изменений
func (StandardDialect) NormalizeValue(v any) any { return v }

// BindTimeOfDay передает значения колонки time строкой HH:MM:SS.ffffff,
// остальные без изменений
func BindTimeOfDay(v any, t schema.DataType) any {
	if d, ok := v.(time.Duration); ok && t == schema.TypeTime {
		return schema.FormatTimeOfDay(d)
	}
	return v
}

// QualifyTable добавляет схему по умолчанию к имени без схемы
func QualifyTable(table, defaultSchema string) string {
	if defaultSchema == "" || strings.Contains(table, ".") {
		return table
	}
	return fmt.Sprintf("%s.%s", defaultSchema, table)
}
