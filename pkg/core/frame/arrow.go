package frame

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

// ArrowType сопоставляет тип Arrow семантическому типу
func ArrowType(dt arrow.DataType) schema.DataType {
	switch dt.ID() {
	case arrow.INT8:
		return schema.TypeInt8
	case arrow.INT16:
		return schema.TypeInt16
	case arrow.INT32:
		return schema.TypeInt32
	case arrow.INT64:
		return schema.TypeInt64
	case arrow.UINT8:
		return schema.TypeUint8
	case arrow.UINT16:
		return schema.TypeUint16
	case arrow.UINT32:
		return schema.TypeUint32
	case arrow.UINT64:
		return schema.TypeUint64
	case arrow.FLOAT16, arrow.FLOAT32:
		return schema.TypeFloat32
	case arrow.FLOAT64, arrow.DECIMAL128, arrow.DECIMAL256:
		return schema.TypeFloat64
	case arrow.BOOL:
		return schema.TypeBool
	case arrow.BINARY, arrow.LARGE_BINARY, arrow.FIXED_SIZE_BINARY, arrow.BINARY_VIEW:
		return schema.TypeBytes
	case arrow.DATE32, arrow.DATE64:
		return schema.TypeDate
	case arrow.TIME32, arrow.TIME64:
		return schema.TypeTime
	case arrow.TIMESTAMP:
		return schema.TypeDatetime
	case arrow.DURATION, arrow.INTERVAL_MONTH_DAY_NANO:
		return schema.TypeDuration
	default:
		return schema.TypeString
	}
}

// FromArrow копирует record batch в Dataset. Строки и байты копируются,
// поэтому record можно освободить сразу после вызова.
func FromArrow(rec arrow.Record) (*Dataset, error) {
	cols := make([]Column, rec.NumCols())
	for i := range cols {
		arr := rec.Column(i)
		values := make([]any, arr.Len())
		for r := range values {
			v, err := arrowValue(arr, r)
			if err != nil {
				return nil, fmt.Errorf("column %s row %d: %w", rec.ColumnName(i), r, err)
			}
			values[r] = v
		}
		cols[i] = Column{
			Name:   rec.ColumnName(i),
			Type:   ArrowType(arr.DataType()),
			Values: values,
		}
	}
	return New(cols...)
}

func arrowValue(arr arrow.Array, i int) (any, error) {
	if arr.IsNull(i) {
		return nil, nil
	}

	switch a := arr.(type) {
	case *array.Int8:
		return a.Value(i), nil
	case *array.Int16:
		return a.Value(i), nil
	case *array.Int32:
		return a.Value(i), nil
	case *array.Int64:
		return a.Value(i), nil
	case *array.Uint8:
		return a.Value(i), nil
	case *array.Uint16:
		return a.Value(i), nil
	case *array.Uint32:
		return a.Value(i), nil
	case *array.Uint64:
		return a.Value(i), nil
	case *array.Float16:
		return a.Value(i).Float32(), nil
	case *array.Float32:
		return a.Value(i), nil
	case *array.Float64:
		return a.Value(i), nil
	case *array.Boolean:
		return a.Value(i), nil

	case *array.String:
		return strings.Clone(a.Value(i)), nil
	case *array.LargeString:
		return strings.Clone(a.Value(i)), nil
	case *array.StringView:
		return strings.Clone(a.Value(i)), nil
	case *array.Binary:
		return append([]byte(nil), a.Value(i)...), nil
	case *array.LargeBinary:
		return append([]byte(nil), a.Value(i)...), nil
	case *array.BinaryView:
		return append([]byte(nil), a.Value(i)...), nil
	case *array.FixedSizeBinary:
		return append([]byte(nil), a.Value(i)...), nil

	case *array.Date32:
		return a.Value(i).ToTime(), nil
	case *array.Date64:
		return a.Value(i).ToTime(), nil
	case *array.Time32:
		unit := a.DataType().(*arrow.Time32Type).Unit
		return time.Duration(a.Value(i)) * unit.Multiplier(), nil
	case *array.Time64:
		unit := a.DataType().(*arrow.Time64Type).Unit
		return time.Duration(a.Value(i)) * unit.Multiplier(), nil
	case *array.Timestamp:
		tsType := a.DataType().(*arrow.TimestampType)
		tz, err := tsType.GetZone()
		if err != nil {
			return nil, err
		}
		return a.Value(i).ToTime(tsType.Unit).In(tz), nil
	case *array.Duration:
		unit := a.DataType().(*arrow.DurationType).Unit
		return time.Duration(a.Value(i)) * unit.Multiplier(), nil
	case *array.MonthDayNanoInterval:
		v := a.Value(i)
		return time.Duration(v.Months)*30*24*time.Hour +
			time.Duration(v.Days)*24*time.Hour +
			time.Duration(v.Nanoseconds), nil

	case *array.Decimal128, *array.Decimal256:
		return strconv.ParseFloat(arr.ValueStr(i), 64)

	default:
		return arr.ValueStr(i), nil
	}
}

// ArrowSource - источник чанков поверх array.RecordReader
type ArrowSource struct {
	reader  array.RecordReader
	release func() error
}

// NewArrowSource оборачивает reader; release вызывается при Close
// (например, чтобы вернуть соединение в пул)
func NewArrowSource(reader array.RecordReader, release func() error) *ArrowSource {
	return &ArrowSource{reader: reader, release: release}
}

// NextChunk конвертирует следующий record batch
func (s *ArrowSource) NextChunk(ctx context.Context) (*Dataset, error) {
	if !s.reader.Next() {
		if err := s.reader.Err(); err != nil {
			return nil, err
		}
		return s.empty()
	}
	return FromArrow(s.reader.Record())
}

// Close освобождает reader и связанные ресурсы
func (s *ArrowSource) Close() error {
	if s.reader != nil {
		s.reader.Release()
		s.reader = nil
	}
	if s.release != nil {
		release := s.release
		s.release = nil
		return release()
	}
	return nil
}

// empty возвращает пустой датасет со схемой reader'а
func (s *ArrowSource) empty() (*Dataset, error) {
	sc := s.reader.Schema()
	cols := make([]Column, sc.NumFields())
	for i, f := range sc.Fields() {
		cols[i] = Column{Name: f.Name, Type: ArrowType(f.Type), Values: []any{}}
	}
	return New(cols...)
}
