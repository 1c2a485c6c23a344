package adapters

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported - операция не поддерживается для данного соединения
	ErrUnsupported = errors.New("unsupported operation")

	// ErrTableExists - таблица уже существует (IfExists = fail)
	ErrTableExists = errors.New("table already exists")

	// ErrInvalidOptions - некорректные параметры вызова
	ErrInvalidOptions = errors.New("invalid options")
)

// UnsupportedError возвращается до любого обращения к СУБД, если
// соединение или операция не поддерживаются семейством
type UnsupportedError struct {
	Family Family
	Driver string
	Op     string
	Reason string
}

// Error реализует интерфейс error
func (e *UnsupportedError) Error() string {
	msg := fmt.Sprintf("%s: %s not supported", e.Family, e.Op)
	if e.Driver != "" {
		msg = fmt.Sprintf("%s (driver %q): %s not supported", e.Family, e.Driver, e.Op)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Unwrap позволяет проверять errors.Is(err, ErrUnsupported)
func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// Unsupported создает UnsupportedError для соединения
func Unsupported(conn Connection, op, reason string) *UnsupportedError {
	e := &UnsupportedError{Op: op, Reason: reason}
	if conn != nil {
		desc := conn.Descriptor()
		e.Driver = desc.Driver
		e.Family = Classify(desc.Driver)
	}
	return e
}
