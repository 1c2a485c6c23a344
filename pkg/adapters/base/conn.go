package base

import (
	"database/sql"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/ruslano69/sqlframe/pkg/adapters"
)

// Hook переписывает текст INSERT перед выполнением
type Hook func(stmt string) string

// IgnoreHookName - имя hook'а вставки с пропуском конфликтов
const IgnoreHookName = "ignore-on-conflict"

// Conn - соединение семейства generic-relational.
// Набор hook'ов принадлежит соединению и защищен мьютексом.
type Conn struct {
	db    *sql.DB
	desc  adapters.Descriptor
	accel Accelerator

	mu    sync.RWMutex
	hooks []namedHook
}

type namedHook struct {
	name string
	fn   Hook
}

// Option - параметр NewConn
type Option func(*Conn)

// WithAccelerator подключает блочный reader результата
func WithAccelerator(a Accelerator) Option {
	return func(c *Conn) {
		c.accel = a
	}
}

// Compile-time check
var _ adapters.Connection = (*Conn)(nil)

// NewConn оборачивает открытую *sql.DB
func NewConn(db *sql.DB, desc adapters.Descriptor, opts ...Option) *Conn {
	c := &Conn{db: db, desc: desc}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Descriptor возвращает параметры подключения
func (c *Conn) Descriptor() adapters.Descriptor {
	return c.desc
}

// DB возвращает *sql.DB для прямого доступа
func (c *Conn) DB() *sql.DB {
	return c.db
}

// Accelerator возвращает блочный reader (nil, если не подключен)
func (c *Conn) Accelerator() Accelerator {
	return c.accel
}

// InstallHook устанавливает hook под именем name.
// Повторная установка с тем же именем ничего не делает и возвращает false.
func (c *Conn) InstallHook(name string, fn Hook) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, h := range c.hooks {
		if h.name == name {
			return false
		}
	}
	c.hooks = append(c.hooks, namedHook{name: name, fn: fn})
	return true
}

// HasHook проверяет, установлен ли hook
func (c *Conn) HasHook(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, h := range c.hooks {
		if h.name == name {
			return true
		}
	}
	return false
}

// Rewrite применяет установленные hook'и к INSERT. Прочие запросы не меняются.
func (c *Conn) Rewrite(stmt string) string {
	if !isInsert(stmt) {
		return stmt
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, h := range c.hooks {
		stmt = h.fn(stmt)
	}
	return stmt
}

// Close закрывает *sql.DB и accelerator (если он держит ресурсы)
func (c *Conn) Close() error {
	var errs []error
	if c.db != nil {
		errs = append(errs, c.db.Close())
	}
	if closer, ok := c.accel.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	return errors.Join(errs...)
}

func isInsert(stmt string) bool {
	s := strings.TrimSpace(stmt)
	return len(s) >= len("INSERT INTO ") && strings.EqualFold(s[:len("INSERT INTO ")], "INSERT INTO ")
}
