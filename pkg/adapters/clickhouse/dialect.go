package clickhouse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ruslano69/sqlframe/pkg/adapters"
	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

// Dialect - диалект ClickHouse. CREATE TABLE строится стандартным синтезатором,
// затем клауза первичного ключа заменяется клаузой движка.
type Dialect struct {
	// Engine - клауза движка; пусто - adapters.DefaultStorageEngine
	Engine string
}

// Compile-time check
var _ adapters.EngineDialect = Dialect{}

var identEscaper = strings.NewReplacer(`\`, `\\`, "`", "\\`")

var orderByClause = regexp.MustCompile(`(?i)\bORDER\s+BY\b`)

// Name возвращает имя диалекта
func (Dialect) Name() string { return "clickhouse" }

// QuoteIdentifier экранирует идентификатор обратными кавычками
func (Dialect) QuoteIdentifier(name string) string {
	return "`" + identEscaper.Replace(name) + "`"
}

// Placeholder - клиентская подстановка "?"
func (Dialect) Placeholder(int) string { return "?" }

// ColumnType возвращает тип колонки
func (Dialect) ColumnType(col schema.ColumnDef) string { return ColumnType(col) }

// FinishCreateTable убирает PRIMARY KEY и добавляет движок.
// Без ORDER BY в клаузе движка сортировка идет по ключу.
func (d Dialect) FinishCreateTable(stmt, _ string, keys []string) string {
	engine := d.Engine
	if engine == "" {
		engine = adapters.DefaultStorageEngine
	}

	stmt = schema.StripPrimaryKey(stmt) + "\nENGINE = " + engine
	if orderByClause.MatchString(engine) {
		return stmt
	}
	if len(keys) == 0 {
		return stmt + "\nORDER BY tuple()"
	}

	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = d.QuoteIdentifier(k)
	}
	return fmt.Sprintf("%s\nORDER BY (%s)", stmt, strings.Join(quoted, ", "))
}

// WithStorageEngine возвращает диалект с другой клаузой движка
func (d Dialect) WithStorageEngine(clause string) adapters.Dialect {
	d.Engine = clause
	return d
}
