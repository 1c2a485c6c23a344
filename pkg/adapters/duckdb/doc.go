// Package duckdb - стратегия семейства embedded-analytical (DuckDB).
//
// Чтение идет через Arrow record batch'и драйвера, запись через Appender.
// Первичный ключ таблицы надежен, поэтому дубликаты отсекаются до вставки
// (pkg/dedup), а не hook'ом СУБД.
//
// Длительности хранятся как BIGINT микросекунд. При чтении колонка с именем
// "time" и типом BIGINT снова становится длительностью (coerce.TimeColumnRule).
//
// Использование:
//
//	conn, err := duckdb.Open(ctx, "analytics.duckdb")
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
//
//	ds, err := sqlio.ReadSQL(ctx, "SELECT * FROM events", conn, adapters.ReadOptions{})
package duckdb
