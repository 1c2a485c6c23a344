package sqlparse

import "strings"

// notAlias - слова, которые после имени таблицы не могут быть алиасом
var notAlias = map[string]bool{
	"WHERE": true, "GROUP": true, "ORDER": true, "HAVING": true, "LIMIT": true,
	"OFFSET": true, "FETCH": true, "FOR": true, "WINDOW": true, "QUALIFY": true,
	"JOIN": true, "INNER": true, "LEFT": true, "RIGHT": true, "FULL": true,
	"CROSS": true, "OUTER": true, "NATURAL": true, "LATERAL": true, "ON": true,
	"USING": true, "UNION": true, "EXCEPT": true, "INTERSECT": true, "MINUS": true,
	"FINAL": true, "SAMPLE": true, "PREWHERE": true, "ARRAY": true, "GLOBAL": true,
	"ANY": true, "ALL": true, "ASOF": true, "SEMI": true, "ANTI": true,
	"FORMAT": true, "SETTINGS": true, "WITH": true, "AS": true,
}

// scanTables находит таблицы по токенам после FROM и JOIN.
// Используется для синтаксиса, который не принимает парсер MySQL:
// $1, ::cast, [brackets], FINAL, табличные функции.
func scanTables(query string) []string {
	p := &tableParser{tokens: NewLexer(query).Tokens()}
	return p.parse()
}

type tableParser struct {
	tokens []Token
	pos    int
}

func (p *tableParser) parse() []string {
	ctes := p.cteNames()

	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		if name == "" || seen[name] || ctes[strings.ToLower(name)] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}

	// для каждой открытой скобки: начинается ли она с подзапроса
	var groups []bool
	inQuery := func() bool {
		return len(groups) == 0 || groups[len(groups)-1]
	}

	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		p.pos++

		switch {
		case tok.Type == TokenLParen:
			next := p.peek()
			groups = append(groups, next.IsKeyword("SELECT") || next.IsKeyword("WITH"))
		case tok.Type == TokenRParen:
			if len(groups) > 0 {
				groups = groups[:len(groups)-1]
			}
		case tok.IsKeyword("FROM") && inQuery():
			// EXTRACT(x FROM y), TRIM(... FROM ...) сюда не попадают
			for {
				add(p.tableRef())
				if p.peek().Type != TokenComma {
					break
				}
				p.pos++
			}
		case tok.IsKeyword("JOIN"):
			add(p.tableRef())
		}
	}
	return out
}

// cteNames собирает имена из WITH name [(cols)] AS (...)
func (p *tableParser) cteNames() map[string]bool {
	names := map[string]bool{}
	for i := 0; i+1 < len(p.tokens); i++ {
		tok := p.tokens[i]
		if tok.Type != TokenIdent && tok.Type != TokenQuoted {
			continue
		}
		j := i + 1
		if p.tokens[j].Type == TokenLParen {
			j = p.skipParens(j)
		}
		if j+1 < len(p.tokens) && p.tokens[j].IsKeyword("AS") && p.tokens[j+1].Type == TokenLParen {
			if i > 0 && (p.tokens[i-1].IsKeyword("WITH") || p.tokens[i-1].IsKeyword("RECURSIVE") ||
				p.tokens[i-1].Type == TokenComma) {
				names[strings.ToLower(tok.Literal)] = true
			}
		}
	}
	return names
}

// tableRef читает одну ссылку на таблицу вместе с алиасом.
// Возвращает "" для подзапроса или табличной функции.
func (p *tableParser) tableRef() string {
	if p.peek().Type == TokenLParen {
		// подзапрос: его FROM/JOIN будут найдены основным циклом
		return ""
	}
	if p.peek().IsKeyword("LATERAL") || p.peek().IsKeyword("ONLY") {
		p.pos++
	}

	name, ok := p.qualifiedName()
	if !ok {
		return ""
	}
	if p.peek().Type == TokenLParen {
		p.pos = p.skipParens(p.pos)
		name = ""
	}

	// алиас
	if p.peek().IsKeyword("AS") {
		p.pos += 2
	} else if t := p.peek(); t.Type == TokenQuoted || t.Type == TokenIdent && !notAlias[strings.ToUpper(t.Literal)] {
		p.pos++
	}
	return name
}

func (p *tableParser) qualifiedName() (string, bool) {
	var parts []string
	for {
		t := p.peek()
		if t.Type != TokenIdent && t.Type != TokenQuoted {
			break
		}
		if t.Type == TokenIdent && notAlias[strings.ToUpper(t.Literal)] {
			break
		}
		parts = append(parts, t.Literal)
		p.pos++
		if p.peek().Type != TokenDot {
			break
		}
		p.pos++
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "."), true
}

// skipParens возвращает позицию после скобки, парной к открывающей в i
func (p *tableParser) skipParens(i int) int {
	depth := 0
	for ; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return i
}

func (p *tableParser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}
