// Package sqlparse извлекает из read-only запроса имена таблиц,
// на которые он ссылается. Нужен только для рефлексии типов колонок
// перед чтением.
//
// Запрос разбирается парсером TiDB (диалект MySQL с ANSI_QUOTES).
// Если парсер запрос не принял, имена ищутся по токенам после FROM и JOIN.
package sqlparse

import (
	"github.com/pingcap/tidb/parser"
	"github.com/pingcap/tidb/parser/ast"
	"github.com/pingcap/tidb/parser/mysql"
	_ "github.com/pingcap/tidb/parser/test_driver"
)

// Tables возвращает имена таблиц (в порядке первого упоминания), на которые
// ссылается запрос. Подзапросы разбираются, имена CTE и табличные функции
// пропускаются. Квалифицированные имена возвращаются как "schema.table".
func Tables(query string) []string {
	tables, err := parseTables(query)
	if err != nil {
		return scanTables(query)
	}
	return tables
}

// parseTables разбирает запрос парсером TiDB
func parseTables(query string) ([]string, error) {
	p := parser.New()
	p.SetSQLMode(mysql.ModeANSIQuotes)

	stmts, _, err := p.Parse(query, "", "")
	if err != nil {
		return nil, err
	}

	c := &tableCollector{ctes: map[string]bool{}, seen: map[string]bool{}}
	for _, stmt := range stmts {
		stmt.Accept(c)
	}
	return c.result(), nil
}

// tableCollector собирает *ast.TableName при обходе дерева
type tableCollector struct {
	names []*ast.TableName
	ctes  map[string]bool
	seen  map[string]bool
}

// Enter реализует ast.Visitor
func (c *tableCollector) Enter(n ast.Node) (ast.Node, bool) {
	switch x := n.(type) {
	case *ast.WithClause:
		for _, cte := range x.CTEs {
			c.ctes[cte.Name.L] = true
		}
	case *ast.TableName:
		c.names = append(c.names, x)
	}
	return n, false
}

// Leave реализует ast.Visitor
func (c *tableCollector) Leave(n ast.Node) (ast.Node, bool) {
	return n, true
}

// result отбрасывает ссылки на CTE и повторы
func (c *tableCollector) result() []string {
	var out []string
	for _, tn := range c.names {
		name := tn.Name.O
		if tn.Schema.O != "" {
			name = tn.Schema.O + "." + name
		} else if c.ctes[tn.Name.L] {
			continue
		}
		if name == "" || c.seen[name] {
			continue
		}
		c.seen[name] = true
		out = append(out, name)
	}
	return out
}
