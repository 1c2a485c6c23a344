// Package frame содержит колоночное представление таблицы в памяти (Dataset)
// и ленивую последовательность чанков (Stream).
//
// Dataset неизменяем с точки зрения библиотеки: любые преобразования
// (сброс индекса, приведение типов, фильтрация) возвращают новый Dataset,
// исходные срезы значений не модифицируются.
package frame

import (
	"errors"
	"fmt"

	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

var (
	// ErrLengthMismatch - колонки разной длины
	ErrLengthMismatch = errors.New("column length mismatch")

	// ErrDuplicateColumn - повторяющееся имя колонки
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrUnknownColumn - колонка не найдена
	ErrUnknownColumn = errors.New("unknown column")
)

// DefaultIndexLabel - имя колонки для сброшенного индекса без явной метки
const DefaultIndexLabel = "index"

// Column - именованная типизированная колонка
type Column struct {
	Name   string
	Type   schema.DataType
	Values []any
}

// Len возвращает количество значений
func (c Column) Len() int {
	return len(c.Values)
}

// HasNulls проверяет есть ли в колонке NULL
func (c Column) HasNulls() bool {
	for _, v := range c.Values {
		if v == nil {
			return true
		}
	}
	return false
}

// Def возвращает описание колонки для синтеза схемы
func (c Column) Def() schema.ColumnDef {
	return schema.ColumnDef{Name: c.Name, Type: c.Type, Nullable: c.HasNulls()}
}

// Dataset - упорядоченный набор колонок одинаковой длины
// с необязательным индексом строк
type Dataset struct {
	columns []Column
	index   *Column
	byName  map[string]int
	rows    int
}

// New создает Dataset из колонок. Колонки без типа получают тип
// по первому не-NULL значению.
func New(cols ...Column) (*Dataset, error) {
	ds := &Dataset{
		columns: make([]Column, len(cols)),
		byName:  make(map[string]int, len(cols)),
	}

	for i, col := range cols {
		if col.Name == "" {
			return nil, fmt.Errorf("column at index %d has empty name", i)
		}
		if _, ok := ds.byName[col.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, col.Name)
		}
		if i == 0 {
			ds.rows = len(col.Values)
		} else if len(col.Values) != ds.rows {
			return nil, fmt.Errorf("%w: %s has %d values, expected %d",
				ErrLengthMismatch, col.Name, len(col.Values), ds.rows)
		}
		if col.Type == "" {
			col.Type = schema.InferColumnType(col.Values)
		}
		ds.byName[col.Name] = i
		ds.columns[i] = col
	}

	return ds, nil
}

// MustNew создает Dataset или паникует при ошибке
// Использовать только в тестах и при статически известных данных
func MustNew(cols ...Column) *Dataset {
	ds, err := New(cols...)
	if err != nil {
		panic(fmt.Sprintf("failed to create dataset: %v", err))
	}
	return ds
}

// FromRows строит Dataset из строк
func FromRows(names []string, types []schema.DataType, rows [][]any) (*Dataset, error) {
	cols := make([]Column, len(names))
	for i, name := range names {
		cols[i] = Column{Name: name, Values: make([]any, len(rows))}
		if i < len(types) {
			cols[i].Type = types[i]
		}
	}

	for r, row := range rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d",
				ErrLengthMismatch, r, len(row), len(names))
		}
		for i, v := range row {
			cols[i].Values[r] = v
		}
	}

	return New(cols...)
}

// WithIndex возвращает копию датасета с индексом строк
func (d *Dataset) WithIndex(idx Column) (*Dataset, error) {
	if len(idx.Values) != d.rows {
		return nil, fmt.Errorf("%w: index has %d values, expected %d",
			ErrLengthMismatch, len(idx.Values), d.rows)
	}
	if idx.Type == "" {
		idx.Type = schema.InferColumnType(idx.Values)
	}
	out := d.clone()
	out.index = &idx
	return out, nil
}

// Index возвращает индекс строк, если он задан
func (d *Dataset) Index() (Column, bool) {
	if d.index == nil {
		return Column{}, false
	}
	return *d.index, true
}

// NumRows возвращает количество строк
func (d *Dataset) NumRows() int {
	if d == nil {
		return 0
	}
	return d.rows
}

// NumCols возвращает количество колонок (без индекса)
func (d *Dataset) NumCols() int {
	return len(d.columns)
}

// Columns возвращает колонки в порядке объявления
func (d *Dataset) Columns() []Column {
	out := make([]Column, len(d.columns))
	copy(out, d.columns)
	return out
}

// ColumnNames возвращает имена колонок
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

// ColumnDefs возвращает описания колонок для синтеза схемы
func (d *Dataset) ColumnDefs() []schema.ColumnDef {
	defs := make([]schema.ColumnDef, len(d.columns))
	for i, c := range d.columns {
		defs[i] = c.Def()
	}
	return defs
}

// Column находит колонку по имени
func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.byName[name]
	if !ok {
		return Column{}, false
	}
	return d.columns[i], true
}

// Row возвращает значения строки i в порядке колонок
func (d *Dataset) Row(i int) []any {
	row := make([]any, len(d.columns))
	for c, col := range d.columns {
		row[c] = col.Values[i]
	}
	return row
}

// ReplaceColumn возвращает копию датасета с замененной колонкой (по имени)
func (d *Dataset) ReplaceColumn(col Column) (*Dataset, error) {
	i, ok := d.byName[col.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, col.Name)
	}
	if len(col.Values) != d.rows {
		return nil, fmt.Errorf("%w: %s has %d values, expected %d",
			ErrLengthMismatch, col.Name, len(col.Values), d.rows)
	}
	out := d.clone()
	out.columns[i] = col
	return out, nil
}

// Select возвращает датасет только с указанными колонками в указанном порядке
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	cols := make([]Column, len(names))
	for i, name := range names {
		col, ok := d.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
		}
		cols[i] = col
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		out.rows = d.rows
	}
	out.index = d.index
	return out, nil
}

// Filter оставляет строки, для которых keep[i] == true
func (d *Dataset) Filter(keep []bool) *Dataset {
	n := 0
	for i := 0; i < d.rows && i < len(keep); i++ {
		if keep[i] {
			n++
		}
	}

	pick := func(values []any) []any {
		out := make([]any, 0, n)
		for i, v := range values {
			if i < len(keep) && keep[i] {
				out = append(out, v)
			}
		}
		return out
	}

	out := d.clone()
	out.rows = n
	for i, col := range out.columns {
		out.columns[i].Values = pick(col.Values)
	}
	if d.index != nil {
		idx := *d.index
		idx.Values = pick(idx.Values)
		out.index = &idx
	}
	return out
}

// Slice возвращает строки [i, j)
func (d *Dataset) Slice(i, j int) *Dataset {
	if i < 0 {
		i = 0
	}
	if j > d.rows {
		j = d.rows
	}
	if i > j {
		i = j
	}

	out := d.clone()
	out.rows = j - i
	for c, col := range out.columns {
		out.columns[c].Values = col.Values[i:j:j]
	}
	if d.index != nil {
		idx := *d.index
		idx.Values = idx.Values[i:j:j]
		out.index = &idx
	}
	return out
}

// ResetIndex превращает индекс строк в первую обычную колонку.
// Без явного индекса используется позиционный 0..n-1 (int64).
// Пустая метка заменяется на имя индекса или DefaultIndexLabel.
func (d *Dataset) ResetIndex(label string) (*Dataset, error) {
	var idx Column
	if d.index != nil {
		idx = *d.index
	} else {
		idx = Column{Type: schema.TypeInt64, Values: make([]any, d.rows)}
		for i := range idx.Values {
			idx.Values[i] = int64(i)
		}
	}

	switch {
	case label != "":
		idx.Name = label
	case idx.Name == "":
		idx.Name = DefaultIndexLabel
	}

	out, err := New(append([]Column{idx}, d.columns...)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Concat склеивает датасеты с одинаковым набором колонок
func Concat(parts ...*Dataset) (*Dataset, error) {
	var first *Dataset
	for _, p := range parts {
		if p != nil {
			first = p
			break
		}
	}
	if first == nil {
		return New()
	}

	cols := first.Columns()
	for i := range cols {
		cols[i].Values = nil
	}

	for _, p := range parts {
		if p == nil {
			continue
		}
		if p.NumCols() != len(cols) {
			return nil, fmt.Errorf("%w: chunk has %d columns, expected %d",
				ErrLengthMismatch, p.NumCols(), len(cols))
		}
		for i := range cols {
			col, ok := p.Column(cols[i].Name)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, cols[i].Name)
			}
			cols[i].Values = append(cols[i].Values, col.Values...)
		}
	}

	for i := range cols {
		if cols[i].Values == nil {
			cols[i].Values = []any{}
		}
	}
	return New(cols...)
}

func (d *Dataset) clone() *Dataset {
	out := &Dataset{
		columns: make([]Column, len(d.columns)),
		index:   d.index,
		byName:  d.byName,
		rows:    d.rows,
	}
	copy(out.columns, d.columns)
	return out
}
