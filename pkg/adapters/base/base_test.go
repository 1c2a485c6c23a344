package base

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ruslano69/sqlframe/pkg/adapters"
	"github.com/ruslano69/sqlframe/pkg/core/coerce"
	"github.com/ruslano69/sqlframe/pkg/core/frame"
	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

func TestInstallHookIdempotent(t *testing.T) {
	conn := NewConn(nil, adapters.Descriptor{Driver: "sqlite"})
	calls := 0
	hook := func(stmt string) string {
		calls++
		return strings.Replace(stmt, "INSERT INTO", "INSERT OR IGNORE INTO", 1)
	}

	if !conn.InstallHook(IgnoreHookName, hook) {
		t.Fatal("first InstallHook must report installation")
	}
	if conn.InstallHook(IgnoreHookName, hook) {
		t.Error("second InstallHook with the same name must be a no-op")
	}
	if !conn.HasHook(IgnoreHookName) {
		t.Error("HasHook = false after install")
	}

	got := conn.Rewrite("INSERT INTO t (a) VALUES (?)")
	if got != "INSERT OR IGNORE INTO t (a) VALUES (?)" {
		t.Errorf("Rewrite() = %q", got)
	}
	if calls != 1 {
		t.Errorf("hook applied %d times, want 1", calls)
	}
}

func TestRewriteOnlyInserts(t *testing.T) {
	conn := NewConn(nil, adapters.Descriptor{Driver: "sqlite"})
	conn.InstallHook("upper", strings.ToUpper)

	tests := []struct {
		stmt string
		want string
	}{
		{"insert into t values (1)", "INSERT INTO T VALUES (1)"},
		{"  INSERT INTO t values (1)", "  INSERT INTO T VALUES (1)"},
		{"create table t (a int)", "create table t (a int)"},
		{"select 'insert into'", "select 'insert into'"},
	}
	for _, tt := range tests {
		if got := conn.Rewrite(tt.stmt); got != tt.want {
			t.Errorf("Rewrite(%q) = %q, want %q", tt.stmt, got, tt.want)
		}
	}
}

func TestInstallHookConcurrent(t *testing.T) {
	conn := NewConn(nil, adapters.Descriptor{Driver: "sqlite"})
	var wg sync.WaitGroup
	installed := make(chan bool, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			installed <- conn.InstallHook(IgnoreHookName, func(s string) string { return s })
		}()
	}
	wg.Wait()
	close(installed)

	n := 0
	for ok := range installed {
		if ok {
			n++
		}
	}
	if n != 1 {
		t.Errorf("hook installed %d times, want 1", n)
	}
}

type limitedDialect struct {
	StandardDialect
	params, rows int
}

func (d limitedDialect) InsertLimits() (int, int) { return d.params, d.rows }

func TestInsertBatchSize(t *testing.T) {
	tests := []struct {
		name    string
		d       Dialect
		batch   int
		numCols int
		want    int
	}{
		{"no limits", StandardDialect{}, 1000, 10, 1000},
		{"param limit", limitedDialect{params: 2100}, 1000, 10, 210},
		{"row limit", limitedDialect{rows: 500}, 1000, 2, 500},
		{"wide table", limitedDialect{params: 100}, 1000, 300, 1},
	}
	for _, tt := range tests {
		if got := insertBatchSize(tt.d, tt.batch, tt.numCols); got != tt.want {
			t.Errorf("%s: insertBatchSize() = %d, want %d", tt.name, got, tt.want)
		}
	}
}

type dollarDialect struct{ StandardDialect }

func (dollarDialect) Placeholder(n int) string { return "$" + string(rune('0'+n)) }

func TestBuildInsert(t *testing.T) {
	got := buildInsert(StandardDialect{}, "s.t", []string{"id", "name"}, 2)
	want := `INSERT INTO "s"."t" ("id", "name") VALUES (?, ?), (?, ?)`
	if got != want {
		t.Errorf("buildInsert() = %q, want %q", got, want)
	}

	got = buildInsert(dollarDialect{}, "t", []string{"a", "b"}, 2)
	want = `INSERT INTO "t" ("a", "b") VALUES ($1, $2), ($3, $4)`
	if got != want {
		t.Errorf("buildInsert() = %q, want %q", got, want)
	}
}

func TestLookupDialect(t *testing.T) {
	RegisterDialect(dollarDialect{}, "testdb")

	if _, ok := LookupDialect("TestDB+native").(dollarDialect); !ok {
		t.Error("LookupDialect must ignore case and driver suffix")
	}
	if _, ok := LookupDialect("unknown").(StandardDialect); !ok {
		t.Error("unknown driver must fall back to StandardDialect")
	}
}

func TestStandardDialect(t *testing.T) {
	d := StandardDialect{}
	if got := d.QuoteIdentifier(`we"ird`); got != `"we""ird"` {
		t.Errorf("QuoteIdentifier() = %s", got)
	}
	if got := d.ColumnType(schema.ColumnDef{Type: schema.TypeString, Key: true}); got != "VARCHAR(255)" {
		t.Errorf("ColumnType(key string) = %s", got)
	}
	if got := d.BindValue(90*time.Minute, schema.TypeTime); got != "01:30:00.000000" {
		t.Errorf("BindValue(time) = %v", got)
	}
	if got := d.BindValue(int64(5), schema.TypeInt64); got != int64(5) {
		t.Errorf("BindValue(int64) = %v", got)
	}
}

type otherConn struct{}

func (otherConn) Descriptor() adapters.Descriptor { return adapters.Descriptor{Driver: "postgres"} }

func TestNewStrategyUnsupported(t *testing.T) {
	_, err := NewStrategy(otherConn{})
	if !errors.Is(err, adapters.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}

	s, err := NewStrategy(NewConn(nil, adapters.Descriptor{Driver: "whatever"}))
	if err != nil {
		t.Fatal(err)
	}
	if s.Family() != adapters.FamilyGeneric || s.DedupSupported() {
		t.Errorf("unexpected strategy: family=%v dedup=%v", s.Family(), s.DedupSupported())
	}
}

func TestSplitTable(t *testing.T) {
	if s, n := SplitTable("db.sch.t"); s != "db.sch" || n != "t" {
		t.Errorf("SplitTable() = %q, %q", s, n)
	}
	if got := QualifyTable("t", "public"); got != "public.t" {
		t.Errorf("QualifyTable() = %q", got)
	}
	if got := QualifyTable("x.t", "public"); got != "x.t" {
		t.Errorf("QualifyTable() = %q", got)
	}
}

func TestAcceleratedMapping(t *testing.T) {
	ds := frame.MustNew(
		frame.Column{Name: "id", Type: schema.TypeInt64, Values: []any{int64(1)}},
		frame.Column{Name: "day", Type: schema.TypeString, Values: []any{"2024-05-17"}},
	)
	reflected := coerce.Mapping{"day": schema.TypeDate, "other": schema.TypeBool}

	got := acceleratedMapping(ds, reflected)
	want := coerce.Mapping{"id": schema.TypeInt64, "day": schema.TypeDate, "other": schema.TypeBool}
	if len(got) != len(want) {
		t.Fatalf("acceleratedMapping() = %v, want %v", got, want)
	}
	for name, typ := range want {
		if got[name] != typ {
			t.Errorf("acceleratedMapping()[%s] = %s, want %s", name, got[name], typ)
		}
	}
	if len(reflected) != 2 {
		t.Errorf("reflected mapping modified: %v", reflected)
	}
}
