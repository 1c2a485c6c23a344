package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Converter приводит значения драйверов к каноническому Go-представлению
// семантического типа:
//
//	int8..int64, uint8..uint64  → одноименные Go типы
//	float32, float64            → float32, float64
//	bool, string, bytes         → bool, string, []byte
//	date, datetime              → time.Time
//	time, duration              → time.Duration
//
// Целые числа для временных типов трактуются как микросекунды
// (от эпохи для date/datetime, от полуночи для time).
type Converter struct {
	// Location - таймзона для строковых datetime без смещения
	Location *time.Location
}

// NewConverter создает новый конвертер (строки без смещения читаются как UTC)
func NewConverter() *Converter {
	return &Converter{Location: time.UTC}
}

var defaultConverter = NewConverter()

// Convert приводит значение к типу t конвертером по умолчанию
func Convert(v any, t DataType) (any, error) {
	return defaultConverter.Convert(v, t)
}

// Convert приводит одно значение к каноническому представлению типа t.
// nil (и nil-указатель) всегда остается nil.
func (c *Converter) Convert(v any, t DataType) (any, error) {
	v = deref(v)
	if v == nil {
		return nil, nil
	}

	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		n, err := toInt64(v)
		if err != nil {
			return nil, fail(t, v, err)
		}
		return narrowSigned(n, t)

	case TypeUint8, TypeUint16, TypeUint32, TypeUint64:
		n, err := toUint64(v)
		if err != nil {
			return nil, fail(t, v, err)
		}
		return narrowUnsigned(n, t)

	case TypeFloat32:
		f, err := toFloat64(v)
		if err != nil {
			return nil, fail(t, v, err)
		}
		return float32(f), nil

	case TypeFloat64:
		f, err := toFloat64(v)
		if err != nil {
			return nil, fail(t, v, err)
		}
		return f, nil

	case TypeBool:
		b, err := toBool(v)
		if err != nil {
			return nil, fail(t, v, err)
		}
		return b, nil

	case TypeString:
		return toString(v), nil

	case TypeBytes:
		switch x := v.(type) {
		case []byte:
			return append([]byte(nil), x...), nil
		case string:
			return []byte(x), nil
		default:
			return []byte(toString(v)), nil
		}

	case TypeDatetime:
		ts, err := c.toDatetime(v)
		if err != nil {
			return nil, fail(t, v, err)
		}
		return ts, nil

	case TypeDate:
		ts, err := c.toDatetime(v)
		if err != nil {
			return nil, fail(t, v, err)
		}
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil

	case TypeTime:
		d, err := toTimeOfDay(v)
		if err != nil {
			return nil, fail(t, v, err)
		}
		return d, nil

	case TypeDuration:
		d, err := toDuration(v)
		if err != nil {
			return nil, fail(t, v, err)
		}
		return d, nil

	default:
		return nil, &ValidationError{
			Message: fmt.Sprintf("unsupported type: %s", t),
			Value:   toString(v),
		}
	}
}

// ConvertAll приводит все значения колонки, возвращая новый срез
func (c *Converter) ConvertAll(values []any, t DataType) ([]any, error) {
	out := make([]any, len(values))
	for i, v := range values {
		cv, err := c.Convert(v, t)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = cv
	}
	return out, nil
}

// InferType определяет семантический тип по Go-значению
func InferType(v any) DataType {
	switch deref(v).(type) {
	case int8:
		return TypeInt8
	case int16:
		return TypeInt16
	case int32:
		return TypeInt32
	case int, int64:
		return TypeInt64
	case uint8:
		return TypeUint8
	case uint16:
		return TypeUint16
	case uint32:
		return TypeUint32
	case uint, uint64:
		return TypeUint64
	case float32:
		return TypeFloat32
	case float64:
		return TypeFloat64
	case bool:
		return TypeBool
	case []byte:
		return TypeBytes
	case time.Time:
		return TypeDatetime
	case time.Duration:
		return TypeDuration
	default:
		return TypeString
	}
}

// InferColumnType определяет тип колонки по первому не-NULL значению.
// Колонка из одних NULL считается строковой.
func InferColumnType(values []any) DataType {
	for _, v := range values {
		if deref(v) != nil {
			return InferType(v)
		}
	}
	return TypeString
}

// ========== Временные значения ==========

// MicrosToDuration переводит микросекунды в time.Duration
func MicrosToDuration(us int64) time.Duration {
	return time.Duration(us) * time.Microsecond
}

// DurationToMicros переводит time.Duration в микросекунды
func DurationToMicros(d time.Duration) int64 {
	return d.Microseconds()
}

// TimeOfDay сворачивает длительность во время суток [0, 24h)
func TimeOfDay(d time.Duration) time.Duration {
	const day = 24 * time.Hour
	d %= day
	if d < 0 {
		d += day
	}
	return d
}

// FormatTimeOfDay форматирует время суток как HH:MM:SS.ffffff
func FormatTimeOfDay(d time.Duration) string {
	d = TimeOfDay(d)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	return fmt.Sprintf("%02d:%02d:%02d.%06d", h, m, s, d/time.Microsecond)
}

// ParseTimeOfDay парсит время суток: "15:04:05", "15:04:05.123456"
// или полную дату-время (берется только время).
func ParseTimeOfDay(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if len(s) > 10 && (strings.Contains(s, "T") || strings.Count(s, "-") >= 2) {
		ts, err := defaultConverter.parseDatetime(s)
		if err != nil {
			return 0, err
		}
		return sinceMidnight(ts), nil
	}
	return parseClock(s)
}

// ParseDuration парсит длительность в форматах:
//
//	Go:          "1h30m", "250ms"
//	clock:       "01:30:00", "-00:00:01.5", "838:59:59"
//	day-time:    "3 days 02:00:00", "1 day, 2:00:00", "-1 days +02:00:00"
//	interval:    "1 year 2 mons 3 days 04:05:06", "@ 1 hour 30 mins"
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	fields := strings.Fields(strings.NewReplacer(",", " ", "@", " ").Replace(s))
	if len(fields) == 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	var total time.Duration
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if strings.Contains(f, ":") {
			d, err := parseClock(f)
			if err != nil {
				return 0, err
			}
			total += d
			continue
		}

		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		unit := time.Second
		if i+1 < len(fields) {
			if u, ok := intervalUnits[strings.ToLower(fields[i+1])]; ok {
				unit = u
				i++
			}
		}
		total += time.Duration(n * float64(unit))
	}
	return total, nil
}

var intervalUnits = map[string]time.Duration{
	"year": 8766 * time.Hour, "years": 8766 * time.Hour,
	"mon": 720 * time.Hour, "mons": 720 * time.Hour,
	"month": 720 * time.Hour, "months": 720 * time.Hour,
	"week": 168 * time.Hour, "weeks": 168 * time.Hour,
	"day": 24 * time.Hour, "days": 24 * time.Hour,
	"hour": time.Hour, "hours": time.Hour,
	"min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
}

// parseClock парсит [-+]H:MM[:SS[.fffffffff]]; часы могут превышать 24
func parseClock(s string) (time.Duration, error) {
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", s)
	}

	h, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hours in %q", s)
	}
	m, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || m > 59 {
		return 0, fmt.Errorf("invalid minutes in %q", s)
	}

	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
	if len(parts) == 3 {
		sec, frac, _ := strings.Cut(parts[2], ".")
		sv, err := strconv.ParseInt(sec, 10, 64)
		if err != nil || sv > 60 {
			return 0, fmt.Errorf("invalid seconds in %q", s)
		}
		d += time.Duration(sv) * time.Second
		if frac != "" {
			if len(frac) > 9 {
				frac = frac[:9]
			}
			fv, err := strconv.ParseInt(frac, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid fraction in %q", s)
			}
			for i := len(frac); i < 9; i++ {
				fv *= 10
			}
			d += time.Duration(fv)
		}
	}

	if neg {
		d = -d
	}
	return d, nil
}

func sinceMidnight(ts time.Time) time.Duration {
	h, m, s := ts.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(ts.Nanosecond())
}

// datetimeLayouts форматы, которые возвращают драйверы в текстовом виде
var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (c *Converter) parseDatetime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range datetimeLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q", s)
}

func (c *Converter) toDatetime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		return c.parseDatetime(x)
	case []byte:
		return c.parseDatetime(string(x))
	case fmt.Stringer:
		return c.parseDatetime(x.String())
	}
	n, err := toInt64(v)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMicro(n).UTC(), nil
}

func toTimeOfDay(v any) (time.Duration, error) {
	switch x := v.(type) {
	case time.Duration:
		return x, nil
	case time.Time:
		return sinceMidnight(x), nil
	case string:
		return ParseTimeOfDay(x)
	case []byte:
		return ParseTimeOfDay(string(x))
	case fmt.Stringer:
		return ParseTimeOfDay(x.String())
	}
	n, err := toInt64(v)
	if err != nil {
		return 0, err
	}
	return MicrosToDuration(n), nil
}

func toDuration(v any) (time.Duration, error) {
	switch x := v.(type) {
	case time.Duration:
		return x, nil
	case time.Time:
		return sinceMidnight(x), nil
	case float32:
		return time.Duration(math.Round(float64(x) * float64(time.Microsecond))), nil
	case float64:
		return time.Duration(math.Round(x * float64(time.Microsecond))), nil
	case string:
		return ParseDuration(x)
	case []byte:
		return ParseDuration(string(x))
	case fmt.Stringer:
		return ParseDuration(x.String())
	}
	n, err := toInt64(v)
	if err != nil {
		return 0, err
	}
	return MicrosToDuration(n), nil
}

// ========== Числа и строки ==========

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint, uint8, uint16, uint32, uint64:
		u, _ := toUint64(x)
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("value out of range")
		}
		return int64(u), nil
	case float32:
		return floatToInt(float64(x))
	case float64:
		return floatToInt(x)
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case time.Duration:
		return x.Microseconds(), nil
	case time.Time:
		return x.UnixMicro(), nil
	case string:
		return parseInt(x)
	case []byte:
		return parseInt(string(x))
	case fmt.Stringer:
		return parseInt(x.String())
	default:
		return 0, fmt.Errorf("cannot convert %T to integer", v)
	}
}

func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value")
	}
	return floatToInt(f)
}

func floatToInt(f float64) (int64, error) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("not an integer")
	}
	return int64(f), nil
}

func toUint64(v any) (uint64, error) {
	switch x := v.(type) {
	case uint:
		return uint64(x), nil
	case uint8:
		return uint64(x), nil
	case uint16:
		return uint64(x), nil
	case uint32:
		return uint64(x), nil
	case uint64:
		return x, nil
	case string:
		if u, err := strconv.ParseUint(strings.TrimSpace(x), 10, 64); err == nil {
			return u, nil
		}
	case []byte:
		if u, err := strconv.ParseUint(strings.TrimSpace(string(x)), 10, 64); err == nil {
			return u, nil
		}
	}
	n, err := toInt64(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value for unsigned type")
	}
	return uint64(n), nil
}

func toFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	case uint64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case string:
		return parseFloat(x)
	case []byte:
		return parseFloat(string(x))
	case fmt.Stringer:
		return parseFloat(x.String())
	}
	n, err := toInt64(v)
	if err != nil {
		return 0, err
	}
	return float64(n), nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value")
	}
	return f, nil
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(x))
	case []byte:
		return strconv.ParseBool(strings.TrimSpace(string(x)))
	}
	n, err := toInt64(v)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

func narrowSigned(n int64, t DataType) (any, error) {
	switch t {
	case TypeInt8:
		if n < math.MinInt8 || n > math.MaxInt8 {
			return nil, outOfRange(n, t)
		}
		return int8(n), nil
	case TypeInt16:
		if n < math.MinInt16 || n > math.MaxInt16 {
			return nil, outOfRange(n, t)
		}
		return int16(n), nil
	case TypeInt32:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, outOfRange(n, t)
		}
		return int32(n), nil
	default:
		return n, nil
	}
}

func narrowUnsigned(n uint64, t DataType) (any, error) {
	switch t {
	case TypeUint8:
		if n > math.MaxUint8 {
			return nil, outOfRange(n, t)
		}
		return uint8(n), nil
	case TypeUint16:
		if n > math.MaxUint16 {
			return nil, outOfRange(n, t)
		}
		return uint16(n), nil
	case TypeUint32:
		if n > math.MaxUint32 {
			return nil, outOfRange(n, t)
		}
		return uint32(n), nil
	default:
		return n, nil
	}
}

func outOfRange(n any, t DataType) error {
	return &ValidationError{
		Message: fmt.Sprintf("value out of range for %s", t),
		Value:   fmt.Sprint(n),
	}
}

func fail(t DataType, v any, err error) error {
	return &ValidationError{
		Message: fmt.Sprintf("cannot convert to %s: %v", t, err),
		Value:   toString(v),
	}
}

// deref снимает указатели, которые возвращают некоторые драйверы для Nullable колонок
func deref(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case *int64:
		if x == nil {
			return nil
		}
		return *x
	case *int32:
		if x == nil {
			return nil
		}
		return *x
	case *float64:
		if x == nil {
			return nil
		}
		return *x
	case *string:
		if x == nil {
			return nil
		}
		return *x
	case *bool:
		if x == nil {
			return nil
		}
		return *x
	case *time.Time:
		if x == nil {
			return nil
		}
		return *x
	default:
		return v
	}
}
