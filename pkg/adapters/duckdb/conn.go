package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb"
	"github.com/rs/zerolog"

	"github.com/ruslano69/sqlframe/pkg/adapters"
)

// Conn - соединение с DuckDB
type Conn struct {
	db   *sql.DB
	desc adapters.Descriptor
}

// Compile-time check
var _ adapters.Connection = (*Conn)(nil)

// Open открывает базу DuckDB. Пустой dsn или ":memory:" - база в памяти;
// все соединения пула работают с одной базой.
func Open(ctx context.Context, dsn string) (*Conn, error) {
	connector, err := duckdb.NewConnector(dsn, func(driver.ExecerContext) error { return nil })
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	conn := NewConn(db, adapters.Descriptor{Driver: "duckdb", Database: dsn})
	zerolog.Ctx(ctx).Debug().Str("conn", conn.desc.String()).Msg("duckdb opened")
	return conn, nil
}

// NewConn оборачивает *sql.DB, открытую драйвером go-duckdb
func NewConn(db *sql.DB, desc adapters.Descriptor) *Conn {
	if desc.Driver == "" {
		desc.Driver = "duckdb"
	}
	return &Conn{db: db, desc: desc}
}

// Descriptor возвращает дескриптор соединения
func (c *Conn) Descriptor() adapters.Descriptor { return c.desc }

// DB возвращает *sql.DB
func (c *Conn) DB() *sql.DB { return c.db }

// Close закрывает базу
func (c *Conn) Close() error { return c.db.Close() }

// rawConn берет из пула выделенное соединение и отдает его драйверное соединение.
// Выделенное соединение возвращается в пул вызовом release.
func (c *Conn) rawConn(ctx context.Context) (driver.Conn, func() error, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, nil, err
	}

	var dc driver.Conn
	err = conn.Raw(func(raw any) error {
		var ok bool
		if dc, ok = raw.(driver.Conn); !ok {
			return fmt.Errorf("unexpected driver connection %T", raw)
		}
		return nil
	})
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return dc, conn.Close, nil
}
