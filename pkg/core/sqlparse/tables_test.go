package sqlparse

import (
	"reflect"
	"testing"
)

func TestTables(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"simple", "SELECT * FROM users", []string{"users"}},
		{"alias and where", "select u.id from users u where u.id > 1", []string{"users"}},
		{"qualified", `SELECT * FROM "public"."orders" AS o`, []string{"public.orders"}},
		{"comma list", "SELECT * FROM a, b x, c AS y WHERE a.id = b.id", []string{"a", "b", "c"}},
		{"joins", "SELECT * FROM a LEFT JOIN b ON a.id = b.id INNER JOIN `c` USING (id)", []string{"a", "b", "c"}},
		{"subquery", "SELECT * FROM (SELECT id FROM inner_t) s JOIN other ON s.id = other.id", []string{"inner_t", "other"}},
		{"cte skipped", "WITH recent AS (SELECT * FROM events) SELECT * FROM recent JOIN users ON 1=1", []string{"events", "users"}},
		{"extract is not a table", "SELECT EXTRACT(YEAR FROM created) FROM logs", []string{"logs"}},
		{"table function skipped", "SELECT * FROM generate_series(1, 10) g", nil},
		{"comments and strings", "SELECT 'FROM fake' -- FROM fake2\n FROM /* FROM fake3 */ real_t", []string{"real_t"}},
		{"mssql brackets", "SELECT * FROM [dbo].[Sales Orders]", []string{"dbo.Sales Orders"}},
		{"duplicates", "SELECT * FROM t JOIN t ON 1=1", []string{"t"}},
		{"postgres placeholder", "SELECT * FROM accounts WHERE id = $1", []string{"accounts"}},
		{"postgres cast", "SELECT amount::numeric FROM payments p JOIN users u ON u.id = p.user_id", []string{"payments", "users"}},
		{"clickhouse final", "SELECT * FROM db.events FINAL WHERE day = today()", []string{"db.events"}},
		{"union", "SELECT id FROM a UNION ALL SELECT id FROM b", []string{"a", "b"}},
		{"in subquery", "SELECT * FROM orders WHERE user_id IN (SELECT id FROM users)", []string{"orders", "users"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tables(tt.query)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tables(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestParseTables(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    []string
		wantErr bool
	}{
		{"ansi quotes", `SELECT * FROM "public"."orders" o`, []string{"public.orders"}, false},
		{"backticks", "SELECT * FROM `sales` s JOIN `db`.`items` i ON s.id = i.sale_id", []string{"sales", "db.items"}, false},
		{"cte", "WITH x AS (SELECT * FROM t1) SELECT * FROM x JOIN t2 ON 1=1", []string{"t1", "t2"}, false},
		{"qualified name equal to cte", "WITH t AS (SELECT 1) SELECT * FROM t JOIN s.t ON 1=1", []string{"s.t"}, false},
		{"question placeholder", "SELECT * FROM t WHERE id = ?", []string{"t"}, false},
		{"postgres cast", "SELECT v::text FROM t", nil, true},
		{"brackets", "SELECT * FROM [dbo].[t]", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTables(tt.query)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseTables(%q) error = %v, wantErr %v", tt.query, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseTables(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestScanTables(t *testing.T) {
	got := scanTables("SELECT * FROM t1 WHERE a = $1 AND b::text = 'x'")
	if !reflect.DeepEqual(got, []string{"t1"}) {
		t.Errorf("scanTables() = %v", got)
	}
}

func TestLexerQuoting(t *testing.T) {
	tokens := NewLexer(`"a""b" 'it''s' [x] 1.5`).Tokens()
	want := []Token{
		{Type: TokenQuoted, Literal: `a"b`, Pos: 0},
		{Type: TokenString, Literal: "it's", Pos: 7},
		{Type: TokenQuoted, Literal: "x", Pos: 15},
		{Type: TokenNumber, Literal: "1.5", Pos: 19},
	}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("Tokens() = %v, want %v", tokens, want)
	}
}
