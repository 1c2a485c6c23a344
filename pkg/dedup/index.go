package dedup

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/ruslano69/sqlframe/pkg/core/frame"
)

// Index - множество кортежей первичного ключа.
// Кортеж кодируется канонически, хэш xxh3 ведет в корзину,
// совпадение подтверждается сравнением кодировок целиком.
type Index struct {
	buckets map[uint64][]string
	size    int
}

// NewIndex строит индекс по колонкам cols датасета
func NewIndex(ds *frame.Dataset, cols []string) (*Index, error) {
	columns, err := keyColumns(ds, cols)
	if err != nil {
		return nil, err
	}

	idx := &Index{buckets: make(map[uint64][]string, ds.NumRows())}
	var buf []byte
	for i := 0; i < ds.NumRows(); i++ {
		buf = encodeRow(buf[:0], columns, i)
		idx.add(buf)
	}
	return idx, nil
}

func (idx *Index) add(key []byte) {
	h := xxh3.Hash(key)
	for _, k := range idx.buckets[h] {
		if k == string(key) {
			return
		}
	}
	idx.buckets[h] = append(idx.buckets[h], string(key))
	idx.size++
}

// Len возвращает число различных кортежей
func (idx *Index) Len() int { return idx.size }

// contains проверяет закодированный кортеж
func (idx *Index) contains(key []byte) bool {
	for _, k := range idx.buckets[xxh3.Hash(key)] {
		if k == string(key) {
			return true
		}
	}
	return false
}

// Missing возвращает маску строк датасета, чьих кортежей нет в индексе
func (idx *Index) Missing(ds *frame.Dataset, cols []string) ([]bool, error) {
	columns, err := keyColumns(ds, cols)
	if err != nil {
		return nil, err
	}

	keep := make([]bool, ds.NumRows())
	var buf []byte
	for i := range keep {
		buf = encodeRow(buf[:0], columns, i)
		keep[i] = !idx.contains(buf)
	}
	return keep, nil
}

func keyColumns(ds *frame.Dataset, cols []string) ([]frame.Column, error) {
	columns := make([]frame.Column, len(cols))
	for i, name := range cols {
		col, ok := ds.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", frame.ErrUnknownColumn, name)
		}
		columns[i] = col
	}
	return columns, nil
}

func encodeRow(buf []byte, columns []frame.Column, row int) []byte {
	for _, col := range columns {
		buf = encodeValue(buf, col.Values[row])
	}
	return buf
}

// encodeValue дописывает каноническую кодировку значения: тег типа и байты.
// Целые любой ширины кодируются одинаково, строки и байты с длиной.
func encodeValue(buf []byte, v any) []byte {
	switch x := v.(type) {
	case nil:
		return append(buf, 'n')
	case bool:
		if x {
			return append(buf, 'b', 1)
		}
		return append(buf, 'b', 0)
	case int8:
		return appendInt(buf, int64(x))
	case int16:
		return appendInt(buf, int64(x))
	case int32:
		return appendInt(buf, int64(x))
	case int64:
		return appendInt(buf, x)
	case int:
		return appendInt(buf, int64(x))
	case uint8:
		return appendUint(buf, uint64(x))
	case uint16:
		return appendUint(buf, uint64(x))
	case uint32:
		return appendUint(buf, uint64(x))
	case uint64:
		return appendUint(buf, x)
	case float32:
		return binary.BigEndian.AppendUint64(append(buf, 'f'), math.Float64bits(float64(x)))
	case float64:
		return binary.BigEndian.AppendUint64(append(buf, 'f'), math.Float64bits(x))
	case time.Duration:
		return appendInt(buf, int64(x))
	case time.Time:
		// секунды и наносекунды раздельно: UnixNano не определен вне 1678-2262
		buf = binary.BigEndian.AppendUint64(append(buf, 't'), uint64(x.Unix()))
		return binary.BigEndian.AppendUint32(buf, uint32(x.Nanosecond()))
	case string:
		return appendBytes(append(buf, 's'), []byte(x))
	case []byte:
		return appendBytes(append(buf, 'y'), x)
	default:
		return appendBytes(append(buf, 'v'), []byte(fmt.Sprint(x)))
	}
}

func appendInt(buf []byte, n int64) []byte {
	if n >= 0 {
		return appendUint(buf, uint64(n))
	}
	return binary.BigEndian.AppendUint64(append(buf, '-'), uint64(n))
}

func appendUint(buf []byte, n uint64) []byte {
	return binary.BigEndian.AppendUint64(append(buf, 'i'), n)
}

func appendBytes(buf, b []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(b)))
	return append(buf, b...)
}
