package clickhouse

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/rs/zerolog"

	"github.com/ruslano69/sqlframe/pkg/adapters"
)

const (
	defaultNativePort = 9000
	defaultHTTPPort   = 8123

	driverNative = "clickhouse+native"
)

// Conn - соединение с ClickHouse
type Conn struct {
	conn driver.Conn
	desc adapters.Descriptor
}

// Compile-time check
var _ adapters.Connection = (*Conn)(nil)

// Open подключается по дескриптору. Нативный протокол только у драйвера
// "clickhouse+native"; остальные идут на HTTP точку запросов: порт
// дескриптора (или 8123) плюс PortShift.
func Open(ctx context.Context, desc adapters.Descriptor) (*Conn, error) {
	opts := Options(desc)

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open clickhouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("conn", desc.String()).Strs("addr", opts.Addr).Msg("clickhouse connected")
	return NewConn(conn, desc), nil
}

// Options строит параметры клиента по дескриптору
func Options(desc adapters.Descriptor) *clickhouse.Options {
	opts := &clickhouse.Options{
		Protocol: clickhouse.HTTP,
		Addr:     []string{desc.QueryAddress(defaultHTTPPort)},
		Auth: clickhouse.Auth{
			Database: desc.Database,
			Username: desc.User,
			Password: desc.Password,
		},
	}
	if strings.HasSuffix(strings.ToLower(desc.Driver), "+https") {
		opts.TLS = &tls.Config{ServerName: desc.Host}
	}
	if strings.EqualFold(desc.Driver, driverNative) {
		opts.Protocol = clickhouse.Native
		opts.Addr = []string{desc.Address(defaultNativePort)}
	}
	return opts
}

// NewConn оборачивает открытое соединение clickhouse-go
func NewConn(conn driver.Conn, desc adapters.Descriptor) *Conn {
	if desc.Driver == "" {
		desc.Driver = "clickhouse"
	}
	return &Conn{conn: conn, desc: desc}
}

// Descriptor возвращает дескриптор соединения
func (c *Conn) Descriptor() adapters.Descriptor { return c.desc }

// Native возвращает соединение clickhouse-go
func (c *Conn) Native() driver.Conn { return c.conn }

// Close закрывает соединение
func (c *Conn) Close() error { return c.conn.Close() }
