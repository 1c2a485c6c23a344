package adapters

import (
	"fmt"
	"strings"
)

// IfExists - поведение записи, если таблица уже существует
type IfExists string

const (
	// IfExistsAppend - дописать строки в существующую таблицу
	IfExistsAppend IfExists = "append"

	// IfExistsReplace - удалить таблицу и создать заново
	IfExistsReplace IfExists = "replace"

	// IfExistsFail - вернуть ErrTableExists
	IfExistsFail IfExists = "fail"
)

const (
	// DefaultStorageEngine - движок таблиц ClickHouse по умолчанию
	DefaultStorageEngine = "ReplacingMergeTree()"

	// DefaultBatchSize - строк в одном INSERT по умолчанию
	DefaultBatchSize = 1000
)

// ReadOptions - параметры чтения
type ReadOptions struct {
	// DisableTimeColumnRule отключает чтение колонки "time" (int64) как длительности
	DisableTimeColumnRule bool

	// DisableAcceleration запрещает блочный reader, даже если он доступен
	DisableAcceleration bool
}

// WriteOptions - параметры записи
type WriteOptions struct {
	// IfExists - append (по умолчанию), replace или fail
	IfExists IfExists

	// Index - сохранить индекс строк первой колонкой
	Index bool

	// IndexLabel - имя колонки индекса
	IndexLabel string

	// Keys - колонки первичного ключа создаваемой таблицы
	Keys []string

	// DTypes - явные SQL типы колонок (имя → тип)
	DTypes map[string]string

	// IgnoreDuplicate - пропускать строки, ключ которых уже есть в таблице
	IgnoreDuplicate bool

	// CategoryKeys - колонки, сужающие выборку ключей через IN
	CategoryKeys []string

	// RangeKeys - колонки, сужающие выборку ключей через BETWEEN
	RangeKeys []string

	// StorageEngine - движок таблицы для колоночного хранилища
	StorageEngine string

	// BatchSize - строк в одном INSERT
	BatchSize int
}

// DefaultWriteOptions возвращает параметры записи по умолчанию
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		IfExists:        IfExistsAppend,
		IgnoreDuplicate: true,
		StorageEngine:   DefaultStorageEngine,
		BatchSize:       DefaultBatchSize,
	}
}

// WithDefaults заполняет незаданные поля (кроме IgnoreDuplicate)
func (o WriteOptions) WithDefaults() WriteOptions {
	if o.IfExists == "" {
		o.IfExists = IfExistsAppend
	}
	o.IfExists = IfExists(strings.ToLower(string(o.IfExists)))
	if o.StorageEngine == "" {
		o.StorageEngine = DefaultStorageEngine
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	return o
}

// Validate проверяет параметры записи. IfExists сравнивается без учета регистра.
func (o WriteOptions) Validate() error {
	switch IfExists(strings.ToLower(string(o.IfExists))) {
	case "", IfExistsAppend, IfExistsReplace, IfExistsFail:
	default:
		return fmt.Errorf("%w: if_exists must be append, replace or fail, got %q", ErrInvalidOptions, o.IfExists)
	}
	if o.BatchSize < 0 {
		return fmt.Errorf("%w: batch_size must be positive", ErrInvalidOptions)
	}
	if err := checkNames("keys", o.Keys); err != nil {
		return err
	}
	if err := checkNames("category_keys", o.CategoryKeys); err != nil {
		return err
	}
	return checkNames("range_keys", o.RangeKeys)
}

func checkNames(field string, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if n == "" {
			return fmt.Errorf("%w: %s contains empty name", ErrInvalidOptions, field)
		}
		if seen[n] {
			return fmt.Errorf("%w: %s contains %q twice", ErrInvalidOptions, field, n)
		}
		seen[n] = true
	}
	return nil
}
