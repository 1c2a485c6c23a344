package clickhouse

import (
	"context"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruslano69/sqlframe/pkg/adapters"
	"github.com/ruslano69/sqlframe/pkg/core/frame"
	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in       string
		want     schema.DataType
		nullable bool
	}{
		{"Int64", schema.TypeInt64, false},
		{"Nullable(UInt32)", schema.TypeUint32, true},
		{"LowCardinality(Nullable(String))", schema.TypeString, true},
		{"DateTime64(6, 'UTC')", schema.TypeDatetime, false},
		{"Date32", schema.TypeDate, false},
		{"Decimal(18, 4)", schema.TypeFloat64, false},
		{"Enum8('a' = 1, 'b' = 2)", schema.TypeString, false},
	}
	for _, tt := range tests {
		got, ok := ParseType(tt.in)
		_, nullable := unwrapType(tt.in)
		if !ok || got != tt.want || nullable != tt.nullable {
			t.Errorf("ParseType(%q) = %v, %v (nullable %v), want %v (nullable %v)",
				tt.in, got, ok, nullable, tt.want, tt.nullable)
		}
	}

	if _, ok := ParseType("Array(Int64)"); ok {
		t.Error("ParseType(Array) must be unknown")
	}
}

func TestSynthesize(t *testing.T) {
	ds := frame.MustNew(
		frame.Column{Name: "id", Values: []any{int64(1), int64(2)}},
		frame.Column{Name: "val", Values: []any{"a", nil}},
		frame.Column{Name: "time", Values: []any{int64(5), int64(6)}},
	)

	stmt, err := schema.Synthesize(schema.TableSpec{Table: "t", Columns: ds.ColumnDefs(), Keys: []string{"id"}}, Dialect{})
	require.NoError(t, err)
	want := "CREATE TABLE IF NOT EXISTS `t` (\n" +
		"  `id` Int64,\n" +
		"  `val` Nullable(String),\n" +
		"  `time` Int64\n" +
		")\nENGINE = ReplacingMergeTree()\nORDER BY (`id`)"
	assert.Equal(t, want, stmt)

	d := Dialect{}.WithStorageEngine("MergeTree() ORDER BY id")
	stmt, err = schema.Synthesize(schema.TableSpec{Table: "t", Columns: ds.ColumnDefs(), Keys: []string{"id"}}, d)
	require.NoError(t, err)
	assert.Contains(t, stmt, "ENGINE = MergeTree() ORDER BY id")
	assert.NotContains(t, stmt, "ORDER BY (`id`)")
	assert.NotContains(t, stmt, "PRIMARY KEY")

	stmt, err = schema.Synthesize(schema.TableSpec{Table: "t", Columns: ds.ColumnDefs()}, Dialect{})
	require.NoError(t, err)
	assert.Contains(t, stmt, "ORDER BY tuple()")
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, "`a\\`b`", Dialect{}.QuoteIdentifier("a`b"))
	assert.Equal(t, "`db`.`t`", schema.QuoteQualified(Dialect{}, "db.t"))
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name     string
		desc     adapters.Descriptor
		protocol clickhouse.Protocol
		addr     string
	}{
		{"native default port", adapters.Descriptor{Driver: "clickhouse+native", Host: "ch"}, clickhouse.Native, "ch:9000"},
		{"native ignores shift", adapters.Descriptor{Driver: "clickhouse+native", Host: "ch", Port: 9000, PortShift: -877}, clickhouse.Native, "ch:9000"},
		{"http shifted", adapters.Descriptor{Driver: "clickhouse+http", PortShift: 10}, clickhouse.HTTP, "localhost:8133"},
		{"bare driver is http", adapters.Descriptor{Driver: "clickhouse", Host: "ch", Port: 9000, PortShift: -877}, clickhouse.HTTP, "ch:8123"},
		{"https", adapters.Descriptor{Driver: "clickhouse+https", Host: "ch", Port: 8443}, clickhouse.HTTP, "ch:8443"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options(tt.desc)
			assert.Equal(t, tt.protocol, opts.Protocol)
			assert.Equal(t, []string{tt.addr}, opts.Addr)
		})
	}

	opts := Options(adapters.Descriptor{Driver: "clickhouse+native", User: "u", Database: "db"})
	assert.Equal(t, "db", opts.Auth.Database)
	assert.Equal(t, "u", opts.Auth.Username)
	assert.Nil(t, opts.TLS)

	opts = Options(adapters.Descriptor{Driver: "clickhouse+https", Host: "ch"})
	require.NotNil(t, opts.TLS)
	assert.Equal(t, "ch", opts.TLS.ServerName)
}

func TestParsePrimaryKey(t *testing.T) {
	assert.Equal(t, []string{"region", "id"}, ParsePrimaryKey("region, id"))
	assert.Nil(t, ParsePrimaryKey(""))

	db, name := splitTable("analytics.events")
	assert.Equal(t, "'analytics'", db)
	assert.Equal(t, "events", name)

	db, _ = splitTable("events")
	assert.Equal(t, "currentDatabase()", db)
}

type stringer struct{}

func (stringer) String() string { return "s" }

func TestNormalize(t *testing.T) {
	var nilPtr *int64
	n := int64(7)
	ptr := &n
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Nil(t, normalize(reflect.ValueOf(&nilPtr).Elem()))
	assert.Equal(t, int64(7), normalize(reflect.ValueOf(&ptr).Elem()))
	assert.Equal(t, ts, normalize(reflect.ValueOf(ts)))
	assert.Equal(t, "s", normalize(reflect.ValueOf(stringer{})))
}

type otherConn struct{}

func (otherConn) Descriptor() adapters.Descriptor { return adapters.Descriptor{Driver: "clickhouse"} }

func TestNewStrategyUnsupported(t *testing.T) {
	_, err := adapters.Dispatch(context.Background(), otherConn{})
	assert.ErrorIs(t, err, adapters.ErrUnsupported)
}

// Интеграционный тест требует запущенный ClickHouse:
//
//	SQLFRAME_CLICKHOUSE_DSN=clickhouse://default:@localhost:9000/default go test ./pkg/adapters/clickhouse/
func TestIntegration_WriteAndRead(t *testing.T) {
	dsn := os.Getenv("SQLFRAME_CLICKHOUSE_DSN")
	if dsn == "" {
		t.Skip("SQLFRAME_CLICKHOUSE_DSN not set")
	}
	ctx := context.Background()

	opts, err := clickhouse.ParseDSN(dsn)
	require.NoError(t, err)
	native, err := clickhouse.Open(opts)
	require.NoError(t, err)

	conn := NewConn(native, adapters.Descriptor{Driver: "clickhouse+native"})
	defer conn.Close()

	s, err := adapters.Dispatch(ctx, conn)
	require.NoError(t, err)

	const table = "sqlframe_ch_test"
	require.NoError(t, s.Exec(ctx, "DROP TABLE IF EXISTS "+table))
	defer s.Exec(context.Background(), "DROP TABLE IF EXISTS "+table)

	ds := frame.MustNew(
		frame.Column{Name: "id", Values: []any{int64(1), int64(2)}},
		frame.Column{Name: "val", Values: []any{"a", nil}},
		frame.Column{Name: "time", Values: []any{90 * time.Minute, 2 * time.Second}},
	)
	prepared, err := s.PrepareWrite(ds)
	require.NoError(t, err)

	stmt, err := schema.Synthesize(schema.TableSpec{Table: table, Columns: prepared.ColumnDefs(), Keys: []string{"id"}}, s.Dialect())
	require.NoError(t, err)
	require.NoError(t, s.Exec(ctx, stmt))
	require.NoError(t, s.Exec(ctx, stmt))

	info, err := s.ReflectTable(ctx, table)
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, info.PrimaryKey)

	require.NoError(t, s.Insert(ctx, table, prepared, adapters.DefaultWriteOptions()))

	got, err := s.Read(ctx, "SELECT * FROM "+table+" ORDER BY id", adapters.ReadOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, got.NumRows())
	assert.Equal(t, []any{int64(1), "a", 90 * time.Minute}, got.Row(0))
	assert.Equal(t, []any{int64(2), nil, 2 * time.Second}, got.Row(1))
}
