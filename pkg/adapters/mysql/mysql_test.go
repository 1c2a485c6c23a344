package mysql

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruslano69/sqlframe/pkg/adapters"
	"github.com/ruslano69/sqlframe/pkg/core/frame"
	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want schema.DataType
	}{
		{"UNSIGNED BIGINT", schema.TypeUint64},
		{"int(10) unsigned", schema.TypeUint32},
		{"tinyint(1)", schema.TypeBool},
		{"TINYINT", schema.TypeInt8},
		{"varchar(255)", schema.TypeString},
		{"enum('a','b')", schema.TypeString},
		{"datetime(6)", schema.TypeDatetime},
		{"time(6)", schema.TypeTime},
		{"DECIMAL", schema.TypeFloat64},
	}
	for _, tt := range tests {
		got, ok := ParseType(tt.in)
		if !ok || got != tt.want {
			t.Errorf("ParseType(%q) = %v, %v, want %v", tt.in, got, ok, tt.want)
		}
	}
}

func TestDialect(t *testing.T) {
	d := Dialect{}
	assert.Equal(t, "`we``ird`", d.QuoteIdentifier("we`ird"))
	assert.Equal(t, "?", d.Placeholder(5))
	assert.Equal(t, "VARCHAR(255)", d.ColumnType(schema.ColumnDef{Type: schema.TypeString, Key: true}))
	assert.Equal(t, "LONGTEXT", d.ColumnType(schema.ColumnDef{Type: schema.TypeString}))

	hook, ok := d.IgnoreInsert()
	require.True(t, ok)
	assert.Equal(t, "INSERT IGNORE INTO `t` (`a`) VALUES (?)", hook("INSERT INTO `t` (`a`) VALUES (?)"))

	assert.Equal(t, "25:30:00.000000", d.BindValue(25*time.Hour+30*time.Minute, schema.TypeDuration))
	assert.Equal(t, "01:30:00.000000", d.BindValue(25*time.Hour+30*time.Minute, schema.TypeTime))
	assert.Equal(t, "-00:01:30.000000", FormatTime(-90*time.Second))
	assert.Equal(t, int64(1), d.BindValue(int64(1), schema.TypeInt64))
}

func TestDurationPastOneDay(t *testing.T) {
	d := Dialect{}
	values := []time.Duration{
		24 * time.Hour,
		26*time.Hour + 1500*time.Millisecond,
		838*time.Hour + 59*time.Minute + 59*time.Second,
		-30 * time.Hour,
	}

	ds := frame.MustNew(frame.Column{Name: "elapsed", Type: schema.TypeDuration, Values: []any{values[0], values[1], values[2], values[3]}})
	prepared, err := d.PrepareWrite(ds)
	require.NoError(t, err)
	col, _ := prepared.Column("elapsed")
	require.Equal(t, schema.TypeDuration, col.Type)
	assert.Equal(t, "TIME(6)", d.ColumnType(col.Def()))

	for i, want := range values {
		literal := d.BindValue(col.Values[i], col.Type)
		got, err := schema.Convert(literal, schema.TypeDuration)
		require.NoError(t, err, "literal %v", literal)
		assert.Equal(t, want, got, "literal %v", literal)
	}
	assert.Equal(t, "838:59:59.000000", d.BindValue(values[2], schema.TypeDuration))
}

func TestDescriptor(t *testing.T) {
	cfg, err := mysql.ParseDSN("user:secret@tcp(db.local:3307)/sales")
	require.NoError(t, err)

	desc := descriptor(cfg)
	assert.Equal(t, "mysql", desc.Driver)
	assert.Equal(t, "db.local", desc.Host)
	assert.Equal(t, 3307, desc.Port)
	assert.Equal(t, "sales", desc.Database)
	assert.Equal(t, adapters.FamilyGeneric, adapters.Classify(desc.Driver))
}

// Интеграционный тест требует запущенный MySQL:
//
//	SQLFRAME_MYSQL_DSN='user:pass@tcp(localhost:3306)/test' go test ./pkg/adapters/mysql/
func TestIntegration_WriteAndRead(t *testing.T) {
	dsn := os.Getenv("SQLFRAME_MYSQL_DSN")
	if dsn == "" {
		t.Skip("SQLFRAME_MYSQL_DSN not set")
	}
	ctx := context.Background()

	conn, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer conn.Close()

	s, err := adapters.Dispatch(ctx, conn)
	require.NoError(t, err)

	const table = "sqlframe_mysql_test"
	require.NoError(t, s.Exec(ctx, "DROP TABLE IF EXISTS "+table))
	defer s.Exec(context.Background(), "DROP TABLE IF EXISTS "+table)

	ds := frame.MustNew(
		frame.Column{Name: "id", Values: []any{uint64(1), uint64(2)}},
		frame.Column{Name: "elapsed", Values: []any{26 * time.Hour, nil}},
	)
	stmt, err := schema.Synthesize(schema.TableSpec{Table: table, Columns: ds.ColumnDefs(), Keys: []string{"id"}}, s.Dialect())
	require.NoError(t, err)
	require.NoError(t, s.Exec(ctx, stmt))

	require.NoError(t, s.Insert(ctx, table, ds, adapters.DefaultWriteOptions()))
	require.NoError(t, s.Insert(ctx, table, ds, adapters.DefaultWriteOptions()))

	got, err := s.Read(ctx, "SELECT * FROM "+table+" ORDER BY id", adapters.ReadOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, got.NumRows())
	assert.Equal(t, []any{uint64(1), 26 * time.Hour}, got.Row(0))
}
