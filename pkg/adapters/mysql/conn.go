package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"

	"github.com/ruslano69/sqlframe/pkg/adapters"
	"github.com/ruslano69/sqlframe/pkg/adapters/base"
)

// Open подключается к MySQL. DATE/DATETIME всегда разбираются в time.Time (UTC).
func Open(ctx context.Context, dsn string) (*base.Conn, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connector: %w", err)
	}

	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn := base.NewConn(db, descriptor(cfg))
	zerolog.Ctx(ctx).Debug().Str("conn", conn.Descriptor().String()).Msg("mysql connected")
	return conn, nil
}

func descriptor(cfg *mysql.Config) adapters.Descriptor {
	desc := adapters.Descriptor{
		Driver:   "mysql",
		Host:     cfg.Addr,
		User:     cfg.User,
		Password: cfg.Passwd,
		Database: cfg.DBName,
	}
	if host, port, err := net.SplitHostPort(cfg.Addr); err == nil {
		desc.Host = host
		desc.Port, _ = strconv.Atoi(port)
	}
	return desc
}
