// Package coerce приводит временные типы на границе с СУБД.
//
// Нативные типы времени и длительности у разных семейств СУБД несовместимы,
// поэтому все преобразования собраны здесь, а не в адаптерах:
//
//   - чтение: date → datetime, time → duration (от полуночи); целые числа
//     во временных колонках трактуются как микросекунды;
//   - запись (columnar/embedded): duration и time → int64 микросекунд;
//   - запись (generic без interval типа): duration → время суток.
package coerce

import (
	"fmt"
	"regexp"
	"time"

	"github.com/ruslano69/sqlframe/pkg/core/frame"
	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

// Mapping - имя колонки → семантический тип, построенный рефлексией на один вызов
type Mapping map[string]schema.DataType

// Merge добавляет записи other поверх m и возвращает m
func (m Mapping) Merge(other Mapping) Mapping {
	for k, v := range other {
		m[k] = v
	}
	return m
}

// Rule - именованное правило приведения, применяемое после маппинга
type Rule interface {
	Name() string
	Apply(ds *frame.Dataset) (*frame.Dataset, error)
}

// ========== Чтение ==========

// Reader приводит прочитанные чанки по маппингу и правилам
type Reader struct {
	Mapping   Mapping
	Rules     []Rule
	Converter *schema.Converter
}

// NewReader создает приводящий reader
func NewReader(m Mapping, rules ...Rule) *Reader {
	return &Reader{Mapping: m, Rules: rules, Converter: schema.NewConverter()}
}

// ReadType возвращает тип, в котором колонка отдается вызывающему
func ReadType(t schema.DataType) schema.DataType {
	switch t {
	case schema.TypeDate:
		return schema.TypeDatetime
	case schema.TypeTime:
		return schema.TypeDuration
	default:
		return t
	}
}

// Apply приводит один датасет (чанк). Подходит как frame.Transform.
func (r *Reader) Apply(ds *frame.Dataset) (*frame.Dataset, error) {
	out := ds
	for _, col := range ds.Columns() {
		target, mapped := r.Mapping[col.Name]
		if !mapped {
			target = col.Type
		}
		target = ReadType(target)
		if target == col.Type && !mapped {
			continue
		}

		values, err := r.Converter.ConvertAll(col.Values, target)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		if out, err = out.ReplaceColumn(frame.Column{Name: col.Name, Type: target, Values: values}); err != nil {
			return nil, err
		}
	}

	for _, rule := range r.Rules {
		var err error
		if out, err = rule.Apply(out); err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.Name(), err)
		}
	}
	return out, nil
}

// TimeColumnRuleName - имя правила для журналов и конфигурации
const TimeColumnRuleName = "time-column-as-duration"

var timeColumnName = regexp.MustCompile(`(?i)^time$`)

// TimeColumnRule - эвристика по имени, а не по типу: колонка, названная ровно
// "time" (без учета регистра) и содержащая int64, читается как длительность
// в микросекундах. Отключается на уровне вызова.
type TimeColumnRule struct{}

// Name возвращает имя правила
func (TimeColumnRule) Name() string { return TimeColumnRuleName }

// Apply переинтерпретирует подходящие колонки
func (TimeColumnRule) Apply(ds *frame.Dataset) (*frame.Dataset, error) {
	out := ds
	for _, col := range ds.Columns() {
		if !timeColumnName.MatchString(col.Name) || col.Type != schema.TypeInt64 {
			continue
		}
		values := make([]any, len(col.Values))
		for i, v := range col.Values {
			if n, ok := v.(int64); ok {
				values[i] = schema.MicrosToDuration(n)
			}
		}
		var err error
		if out, err = out.ReplaceColumn(frame.Column{Name: col.Name, Type: schema.TypeDuration, Values: values}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ========== Запись ==========

// DurationsToMicros превращает колонки duration и time в int64 микросекунд
func DurationsToMicros(ds *frame.Dataset) (*frame.Dataset, error) {
	return mapColumns(ds, func(col frame.Column) (frame.Column, bool, error) {
		if col.Type != schema.TypeDuration && col.Type != schema.TypeTime {
			return col, false, nil
		}
		values := make([]any, len(col.Values))
		for i, v := range col.Values {
			d, err := schema.Convert(v, schema.TypeDuration)
			if err != nil {
				return col, false, fmt.Errorf("column %s: %w", col.Name, err)
			}
			if d != nil {
				values[i] = schema.DurationToMicros(d.(time.Duration))
			}
		}
		return frame.Column{Name: col.Name, Type: schema.TypeInt64, Values: values}, true, nil
	})
}

// DurationsToTimeOfDay складывает длительность с эпохой и оставляет время суток
// (значения от 24 часов заворачиваются)
func DurationsToTimeOfDay(ds *frame.Dataset) (*frame.Dataset, error) {
	return mapColumns(ds, func(col frame.Column) (frame.Column, bool, error) {
		if col.Type != schema.TypeDuration {
			return col, false, nil
		}
		values := make([]any, len(col.Values))
		for i, v := range col.Values {
			if d, ok := v.(time.Duration); ok {
				values[i] = schema.TimeOfDay(d)
			}
		}
		return frame.Column{Name: col.Name, Type: schema.TypeTime, Values: values}, true, nil
	})
}

// CastToTable приводит датасет к колонкам существующей таблицы: порядок
// колонок как в таблице, значения в типах таблицы. Колонки таблицы,
// отсутствующие в датасете, заполняются NULL.
func CastToTable(ds *frame.Dataset, table []schema.ColumnDef) (*frame.Dataset, error) {
	known := make(map[string]bool, len(table))
	for _, c := range table {
		known[c.Name] = true
	}
	for _, name := range ds.ColumnNames() {
		if !known[name] {
			return nil, fmt.Errorf("%w: %s is not a column of the target table", frame.ErrUnknownColumn, name)
		}
	}

	conv := schema.NewConverter()
	cols := make([]frame.Column, len(table))
	for i, tc := range table {
		col, ok := ds.Column(tc.Name)
		if !ok {
			cols[i] = frame.Column{Name: tc.Name, Type: tc.Type, Values: make([]any, ds.NumRows())}
			continue
		}
		if tc.Type == "" || tc.Type == col.Type {
			cols[i] = col
			continue
		}
		values, err := conv.ConvertAll(col.Values, tc.Type)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		cols[i] = frame.Column{Name: tc.Name, Type: tc.Type, Values: values}
	}
	return frame.New(cols...)
}

func mapColumns(ds *frame.Dataset, fn func(frame.Column) (frame.Column, bool, error)) (*frame.Dataset, error) {
	out := ds
	for _, col := range ds.Columns() {
		mapped, changed, err := fn(col)
		if err != nil {
			return nil, err
		}
		if !changed {
			continue
		}
		if out, err = out.ReplaceColumn(mapped); err != nil {
			return nil, err
		}
	}
	return out, nil
}
