package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/ruslano69/sqlframe/pkg/adapters"
	"github.com/ruslano69/sqlframe/pkg/adapters/base"
)

const driverSqlite = "sqlite"

// Open открывает файл (или ":memory:") и возвращает соединение для sqlio.
// БД в памяти ограничивается одним соединением пула: каждое новое
// соединение получило бы свою пустую БД.
func Open(ctx context.Context, dsn string) (*base.Conn, error) {
	db, err := sql.Open(driverSqlite, dsn)
	if err != nil {
		return nil, err
	}
	if isMemory(dsn) {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	applyPragmas(ctx, db)

	return base.NewConn(db, adapters.Descriptor{Driver: driverSqlite, Database: dsn}), nil
}

// applyPragmas применяет PRAGMA для массовой вставки. Ошибки не критичны.
func applyPragmas(ctx context.Context, db *sql.DB) {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -64000",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("pragma", pragma).Msg("pragma failed")
		}
	}
}

func isMemory(dsn string) bool {
	return dsn == "" || strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
