package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

func sample(t *testing.T) *Dataset {
	t.Helper()
	ds, err := New(
		Column{Name: "id", Values: []any{int64(1), int64(2), int64(3)}},
		Column{Name: "val", Values: []any{"a", nil, "c"}},
	)
	require.NoError(t, err)
	return ds
}

func TestNew(t *testing.T) {
	ds := sample(t)

	assert.Equal(t, 3, ds.NumRows())
	assert.Equal(t, 2, ds.NumCols())
	assert.Equal(t, []string{"id", "val"}, ds.ColumnNames())

	id, ok := ds.Column("id")
	require.True(t, ok)
	assert.Equal(t, schema.TypeInt64, id.Type)

	val, _ := ds.Column("val")
	assert.Equal(t, schema.TypeString, val.Type)
	assert.True(t, val.HasNulls())
	assert.Equal(t, []any{int64(2), nil}, ds.Row(1))
}

func TestNewErrors(t *testing.T) {
	_, err := New(
		Column{Name: "a", Values: []any{1}},
		Column{Name: "b", Values: []any{1, 2}},
	)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = New(
		Column{Name: "a", Values: []any{1}},
		Column{Name: "a", Values: []any{2}},
	)
	assert.ErrorIs(t, err, ErrDuplicateColumn)

	_, err = New(Column{Values: []any{1}})
	assert.Error(t, err)
}

func TestFromRows(t *testing.T) {
	ds, err := FromRows([]string{"x", "y"}, []schema.DataType{schema.TypeInt64}, [][]any{
		{int64(1), "a"},
		{int64(2), "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, ds.NumRows())

	y, _ := ds.Column("y")
	assert.Equal(t, schema.TypeString, y.Type)

	_, err = FromRows([]string{"x"}, nil, [][]any{{1, 2}})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestFilterDoesNotMutate(t *testing.T) {
	ds := sample(t)
	filtered := ds.Filter([]bool{true, false, true})

	assert.Equal(t, 2, filtered.NumRows())
	assert.Equal(t, []any{int64(3), "c"}, filtered.Row(1))

	assert.Equal(t, 3, ds.NumRows())
	assert.Equal(t, []any{int64(2), nil}, ds.Row(1))
}

func TestSlice(t *testing.T) {
	ds := sample(t)

	assert.Equal(t, 2, ds.Slice(1, 3).NumRows())
	assert.Equal(t, []any{int64(2), nil}, ds.Slice(1, 3).Row(0))
	assert.Equal(t, 0, ds.Slice(5, 9).NumRows())
	assert.Equal(t, 3, ds.Slice(-1, 10).NumRows())
}

func TestReplaceColumn(t *testing.T) {
	ds := sample(t)

	out, err := ds.ReplaceColumn(Column{Name: "val", Type: schema.TypeString, Values: []any{"x", "y", "z"}})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2), "y"}, out.Row(1))
	assert.Equal(t, []any{int64(2), nil}, ds.Row(1))

	_, err = ds.ReplaceColumn(Column{Name: "nope", Values: []any{1, 2, 3}})
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = ds.ReplaceColumn(Column{Name: "val", Values: []any{1}})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestResetIndex(t *testing.T) {
	ds := sample(t)

	t.Run("positional", func(t *testing.T) {
		out, err := ds.ResetIndex("")
		require.NoError(t, err)
		assert.Equal(t, []string{DefaultIndexLabel, "id", "val"}, out.ColumnNames())
		assert.Equal(t, []any{int64(2), int64(3), "c"}, out.Row(2))
	})

	t.Run("named index with label", func(t *testing.T) {
		indexed, err := ds.WithIndex(Column{Name: "ts", Values: []any{"k1", "k2", "k3"}})
		require.NoError(t, err)

		out, err := indexed.ResetIndex("key")
		require.NoError(t, err)
		assert.Equal(t, []string{"key", "id", "val"}, out.ColumnNames())
		_, hasIndex := out.Index()
		assert.False(t, hasIndex)

		out, err = indexed.ResetIndex("")
		require.NoError(t, err)
		assert.Equal(t, "ts", out.ColumnNames()[0])
	})

	t.Run("label clashes with column", func(t *testing.T) {
		_, err := ds.ResetIndex("id")
		assert.ErrorIs(t, err, ErrDuplicateColumn)
	})
}

func TestConcat(t *testing.T) {
	ds := sample(t)

	out, err := Concat(ds.Slice(0, 1), nil, ds.Slice(1, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, out.NumRows())
	for i := 0; i < 3; i++ {
		assert.Equal(t, ds.Row(i), out.Row(i))
	}

	other := MustNew(Column{Name: "id", Values: []any{int64(1)}})
	_, err = Concat(ds, other)
	assert.Error(t, err)

	empty, err := Concat()
	require.NoError(t, err)
	assert.Equal(t, 0, empty.NumRows())
}

func TestSelect(t *testing.T) {
	ds := sample(t)

	out, err := ds.Select("val", "id")
	require.NoError(t, err)
	assert.Equal(t, []string{"val", "id"}, out.ColumnNames())

	_, err = ds.Select("missing")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}
