package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

func TestUnescapeCopy(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{`a\tb`, "a\tb"},
		{`line\nnext`, "line\nnext"},
		{`back\\slash`, `back\slash`},
		{`trailing\`, `trailing\`},
	}
	for _, tt := range tests {
		if got := unescapeCopy(tt.in); got != tt.want {
			t.Errorf("unescapeCopy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadCopyText(t *testing.T) {
	// так COPY ... TO STDOUT выводит bytea и обратный слеш в тексте
	input := "1\thello\\tworld\tt\t\\\\x0aff\n" +
		"2\t\\N\tf\t\\N\n" +
		"3\tC:\\\\temp\\\\new\tt\t\\\\x\n"
	types := []schema.DataType{schema.TypeInt64, schema.TypeString, schema.TypeBool, schema.TypeBytes}

	rows, err := readCopyText(strings.NewReader(input), types)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []any{int64(1), "hello\tworld", true, []byte{0x0a, 0xff}}, rows[0])
	assert.Equal(t, []any{int64(2), nil, false, nil}, rows[1])
	assert.Equal(t, []any{int64(3), `C:\temp\new`, true, []byte{}}, rows[2])
}

func TestReadCopyTextFieldCount(t *testing.T) {
	_, err := readCopyText(strings.NewReader("1\t2\n"), []schema.DataType{schema.TypeInt64})
	assert.Error(t, err)
}

func TestCopyValueTimestamptz(t *testing.T) {
	v, err := copyValue("2024-05-17 10:30:00+03", schema.TypeDatetime)
	require.NoError(t, err)
	want := time.Date(2024, 5, 17, 7, 30, 0, 0, time.UTC)
	assert.True(t, want.Equal(v.(time.Time)))
}

func TestDialect(t *testing.T) {
	d := Dialect{}
	assert.Equal(t, "$3", d.Placeholder(3))
	assert.Equal(t, "INTERVAL", d.ColumnType(schema.ColumnDef{Type: schema.TypeDuration}))
	assert.Equal(t, "NUMERIC(20)", d.ColumnType(schema.ColumnDef{Type: schema.TypeUint64}))

	hook, ok := d.IgnoreInsert()
	require.True(t, ok)
	stmt := hook(`INSERT INTO "t" ("id") VALUES ($1)`)
	assert.Equal(t, `INSERT INTO "t" ("id") VALUES ($1) ON CONFLICT DO NOTHING`, stmt)
	assert.Equal(t, stmt, hook(stmt))

	iv := d.BindValue(90*time.Minute, schema.TypeDuration)
	assert.Equal(t, pgtype.Interval{Microseconds: (90 * time.Minute).Microseconds(), Valid: true}, iv)

	tod := d.BindValue(25*time.Hour, schema.TypeTime)
	assert.Equal(t, pgtype.Time{Microseconds: time.Hour.Microseconds(), Valid: true}, tod)
}

func TestNormalizeValue(t *testing.T) {
	d := Dialect{}
	iv := pgtype.Interval{Months: 1, Days: 2, Microseconds: 3_000_000, Valid: true}
	assert.Equal(t, 32*24*time.Hour+3*time.Second, d.NormalizeValue(iv))
	assert.Nil(t, d.NormalizeValue(pgtype.Interval{}))
	assert.Equal(t, 90*time.Minute, d.NormalizeValue(pgtype.Time{Microseconds: (90 * time.Minute).Microseconds(), Valid: true}))
	assert.Equal(t, "abc", d.NormalizeValue("abc"))

	id := [16]byte{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0, 0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0}
	assert.Equal(t, "12345678-9abc-def0-1234-56789abcdef0", d.NormalizeValue(id))
}
