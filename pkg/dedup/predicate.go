package dedup

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/ruslano69/sqlframe/pkg/adapters"
	"github.com/ruslano69/sqlframe/pkg/core/frame"
)

// Predicate - условие, сужающее выборку существующих ключей.
// Пустой Predicate - выбираются все ключи таблицы.
type Predicate struct {
	Clauses []string
	Args    []any
}

// Empty сообщает, что условие пустое
func (p Predicate) Empty() bool { return len(p.Clauses) == 0 }

// Where возвращает " WHERE ..." или пустую строку
func (p Predicate) Where() string {
	if p.Empty() {
		return ""
	}
	return " WHERE " + strings.Join(p.Clauses, " AND ")
}

// BuildPredicate строит конъюнкцию:
//
//	(<category> IN (?, ...) [OR <category> IS NULL])
//	(<range> BETWEEN ? AND ? [OR <range> IS NULL])
//
// Значения берутся из датасета: различные значения для category-колонок,
// минимум и максимум для range-колонок. Параметры нумеруются подряд.
func BuildPredicate(d adapters.Dialect, ds *frame.Dataset, categoryKeys, rangeKeys []string) (Predicate, error) {
	var p Predicate
	n := 0
	next := func(v any) string {
		n++
		p.Args = append(p.Args, v)
		return d.Placeholder(n)
	}

	for _, name := range categoryKeys {
		col, ok := ds.Column(name)
		if !ok {
			return Predicate{}, fmt.Errorf("%w: category key %s", frame.ErrUnknownColumn, name)
		}

		values, hasNull := distinct(col.Values)
		q := d.QuoteIdentifier(name)
		var parts []string
		if len(values) > 0 {
			marks := make([]string, len(values))
			for i, v := range values {
				marks[i] = next(v)
			}
			parts = append(parts, fmt.Sprintf("%s IN (%s)", q, strings.Join(marks, ", ")))
		}
		if hasNull {
			parts = append(parts, q+" IS NULL")
		}
		p.Clauses = append(p.Clauses, "("+strings.Join(parts, " OR ")+")")
	}

	for _, name := range rangeKeys {
		col, ok := ds.Column(name)
		if !ok {
			return Predicate{}, fmt.Errorf("%w: range key %s", frame.ErrUnknownColumn, name)
		}

		lo, hi, hasNull, err := bounds(col.Values)
		if err != nil {
			return Predicate{}, fmt.Errorf("range key %s: %w", name, err)
		}
		q := d.QuoteIdentifier(name)
		var parts []string
		if lo != nil {
			parts = append(parts, fmt.Sprintf("%s BETWEEN %s AND %s", q, next(lo), next(hi)))
		}
		if hasNull {
			parts = append(parts, q+" IS NULL")
		}
		p.Clauses = append(p.Clauses, "("+strings.Join(parts, " OR ")+")")
	}

	return p, nil
}

// distinct возвращает различные непустые значения в порядке появления
func distinct(values []any) ([]any, bool) {
	seen := make(map[string]bool, len(values))
	var out []any
	hasNull := false
	for _, v := range values {
		if v == nil {
			hasNull = true
			continue
		}
		k := string(encodeValue(nil, v))
		if !seen[k] {
			seen[k] = true
			out = append(out, v)
		}
	}
	return out, hasNull
}

// bounds возвращает минимум и максимум непустых значений
func bounds(values []any) (lo, hi any, hasNull bool, err error) {
	for _, v := range values {
		if v == nil {
			hasNull = true
			continue
		}
		if lo == nil {
			lo, hi = v, v
			continue
		}
		c, err := compare(v, lo)
		if err != nil {
			return nil, nil, false, err
		}
		if c < 0 {
			lo = v
		}
		if c, _ = compare(v, hi); c > 0 {
			hi = v
		}
	}
	return lo, hi, hasNull, nil
}

// compare сравнивает значения одной колонки
func compare(a, b any) (int, error) {
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), nil
		}
	case []byte:
		if y, ok := b.([]byte); ok {
			return bytes.Compare(x, y), nil
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), nil
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0, nil
			case !x:
				return -1, nil
			default:
				return 1, nil
			}
		}
	}

	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			switch {
			case fa < fb:
				return -1, nil
			case fa > fb:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}
	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case time.Duration:
		return float64(x), true
	}
	return 0, false
}
