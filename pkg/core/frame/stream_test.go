package frame

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

// sliceScanner - RowScanner поверх строк в памяти
type sliceScanner struct {
	rows   [][]any
	pos    int
	err    error
	closed bool
}

func (s *sliceScanner) Next() bool {
	if s.pos >= len(s.rows) {
		return false
	}
	s.pos++
	return true
}

func (s *sliceScanner) Values() ([]any, error) {
	return append([]any(nil), s.rows[s.pos-1]...), nil
}

func (s *sliceScanner) Err() error { return s.err }

func (s *sliceScanner) Close() error {
	s.closed = true
	return nil
}

func makeRows(n int) [][]any {
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = []any{int64(i), fmt.Sprintf("v%d", i)}
	}
	return rows
}

func TestStreamChunkCompleteness(t *testing.T) {
	const total = 7
	full, err := FromRows([]string{"id", "val"}, nil, makeRows(total))
	require.NoError(t, err)

	for size := 1; size <= total; size++ {
		t.Run(fmt.Sprintf("chunk=%d", size), func(t *testing.T) {
			scanner := &sliceScanner{rows: makeRows(total)}
			s := NewStream(context.Background(), NewRowChunker([]string{"id", "val"}, nil, scanner, size))

			var parts []*Dataset
			for s.Next() {
				assert.LessOrEqual(t, s.Dataset().NumRows(), size)
				parts = append(parts, s.Dataset())
			}
			require.NoError(t, s.Err())
			assert.True(t, scanner.closed, "cursor must be released at end of stream")

			got, err := Concat(parts...)
			require.NoError(t, err)
			require.Equal(t, full.NumRows(), got.NumRows())
			for i := 0; i < total; i++ {
				assert.Equal(t, full.Row(i), got.Row(i))
			}

			assert.False(t, s.Next(), "stream is not restartable")
		})
	}
}

func TestStreamMapAppliedPerChunk(t *testing.T) {
	scanner := &sliceScanner{rows: makeRows(5)}
	calls := 0
	s := NewStream(context.Background(), NewRowChunker([]string{"id", "val"}, nil, scanner, 2)).
		Map(func(ds *Dataset) (*Dataset, error) {
			calls++
			return ds.Select("id")
		})

	out, err := s.Collect()
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []string{"id"}, out.ColumnNames())
	assert.Equal(t, 5, out.NumRows())
}

func TestStreamEmptyKeepsColumns(t *testing.T) {
	scanner := &sliceScanner{}
	s := NewStream(context.Background(), NewRowChunker([]string{"id", "val"}, nil, scanner, 10))

	out, err := s.Collect()
	require.NoError(t, err)
	assert.Equal(t, 0, out.NumRows())
	assert.Equal(t, []string{"id", "val"}, out.ColumnNames())
}

func TestStreamError(t *testing.T) {
	boom := errors.New("boom")
	scanner := &sliceScanner{rows: makeRows(3), err: boom}
	s := NewStream(context.Background(), NewRowChunker([]string{"id", "val"}, nil, scanner, 10))

	assert.False(t, s.Next())
	assert.ErrorIs(t, s.Err(), boom)
	assert.True(t, scanner.closed)
}

func TestStreamCloseEarly(t *testing.T) {
	scanner := &sliceScanner{rows: makeRows(10)}
	s := NewStream(context.Background(), NewRowChunker([]string{"id", "val"}, nil, scanner, 3))

	require.True(t, s.Next())
	require.NoError(t, s.Close())
	assert.True(t, scanner.closed)
	assert.False(t, s.Next())
	assert.NoError(t, s.Close())
}

// listSource отдает заранее подготовленные чанки
type listSource struct {
	chunks []*Dataset
	closed bool
}

func (l *listSource) NextChunk(context.Context) (*Dataset, error) {
	if len(l.chunks) == 0 {
		return nil, nil
	}
	c := l.chunks[0]
	l.chunks = l.chunks[1:]
	return c, nil
}

func (l *listSource) Close() error {
	l.closed = true
	return nil
}

func TestRechunk(t *testing.T) {
	full, err := FromRows([]string{"id", "val"}, nil, makeRows(10))
	require.NoError(t, err)

	src := &listSource{chunks: []*Dataset{full.Slice(0, 4), full.Slice(4, 5), full.Slice(5, 10)}}
	s := NewStream(context.Background(), Rechunk(src, 3))

	var sizes []int
	var parts []*Dataset
	for s.Next() {
		sizes = append(sizes, s.Dataset().NumRows())
		parts = append(parts, s.Dataset())
	}
	require.NoError(t, s.Err())
	assert.Equal(t, []int{3, 3, 3, 1}, sizes)
	assert.True(t, src.closed)

	got, err := Concat(parts...)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		assert.Equal(t, full.Row(i), got.Row(i))
	}
}

func TestFromArrow(t *testing.T) {
	mem := memory.NewGoAllocator()
	sc := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "day", Type: arrow.FixedWidthTypes.Date32},
		{Name: "at", Type: arrow.FixedWidthTypes.Time64us},
		{Name: "ts", Type: &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}},
	}, nil)

	b := array.NewRecordBuilder(mem, sc)
	defer b.Release()

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	b.Field(0).(*array.Int64Builder).AppendValues([]int64{1, 2}, nil)
	b.Field(1).(*array.StringBuilder).Append("a")
	b.Field(1).(*array.StringBuilder).AppendNull()
	b.Field(2).(*array.Date32Builder).AppendValues([]arrow.Date32{arrow.Date32FromTime(day), arrow.Date32FromTime(day)}, nil)
	b.Field(3).(*array.Time64Builder).AppendValues([]arrow.Time64{arrow.Time64(90 * time.Minute / time.Microsecond), 0}, nil)
	b.Field(4).(*array.TimestampBuilder).AppendValues([]arrow.Timestamp{arrow.Timestamp(ts.UnixMicro()), 0}, nil)

	rec := b.NewRecord()
	ds, err := FromArrow(rec)
	rec.Release()
	require.NoError(t, err)

	assert.Equal(t, 2, ds.NumRows())
	row := ds.Row(0)
	assert.Equal(t, int64(1), row[0])
	assert.Equal(t, "a", row[1])
	assert.True(t, day.Equal(row[2].(time.Time)))
	assert.Equal(t, 90*time.Minute, row[3])
	assert.True(t, ts.Equal(row[4].(time.Time)))
	assert.Nil(t, ds.Row(1)[1])

	at, _ := ds.Column("at")
	assert.Equal(t, schema.TypeTime, at.Type)
	dayCol, _ := ds.Column("day")
	assert.Equal(t, schema.TypeDate, dayCol.Type)
}
