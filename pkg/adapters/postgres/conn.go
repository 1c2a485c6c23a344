package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"github.com/ruslano69/sqlframe/pkg/adapters"
	"github.com/ruslano69/sqlframe/pkg/adapters/base"
)

// Open подключается к PostgreSQL через пул pgx.
// schema - схема по умолчанию для неквалифицированных таблиц (пусто - public).
func Open(ctx context.Context, dsn, schemaName string) (*base.Conn, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if schemaName == "" {
		schemaName = "public"
	}

	conn := NewConn(pool, schemaName)
	zerolog.Ctx(ctx).Debug().Str("conn", conn.Descriptor().String()).Msg("postgres connected")
	return conn, nil
}

// NewConn оборачивает открытый пул: запросы идут через database/sql,
// полные чтения через COPY
func NewConn(pool *pgxpool.Pool, schemaName string) *base.Conn {
	cfg := pool.Config().ConnConfig
	desc := adapters.Descriptor{
		Driver:   "postgres",
		Host:     cfg.Host,
		Port:     int(cfg.Port),
		User:     cfg.User,
		Password: cfg.Password,
		Database: cfg.Database,
		Schema:   schemaName,
	}
	return base.NewConn(stdlib.OpenDBFromPool(pool), desc,
		base.WithAccelerator(&copyReader{pool: pool}))
}
