/*
Package adapters выбирает стратегию чтения и записи по семейству СУБД.

# Семейства

Соединение сообщает о себе Descriptor; по имени драйвера Classify относит
его ровно к одному семейству:

	┌────────────────────────────────────────────┐
	│  sqlio.ReadSQL / ReadSQLChunked / WriteSQL │
	└─────────────────────┬──────────────────────┘
	                      │ adapters.Dispatch(ctx, conn)
	        ┌─────────────┼───────────────┐
	        │             │               │
	┌───────▼──────┐ ┌────▼─────┐ ┌───────▼─────────┐
	│ columnar     │ │ embedded │ │ generic         │
	│ (ClickHouse) │ │ (DuckDB) │ │ (database/sql)  │
	└──────────────┘ └──────────┘ └───────┬─────────┘
	                                      │ base.Dialect
	                          sqlite / postgres / mysql / mssql

Стратегии регистрируются в init() своих пакетов:
  - pkg/adapters/clickhouse - FamilyColumnar
  - pkg/adapters/duckdb - FamilyEmbedded
  - pkg/adapters/base - FamilyGeneric (диалекты регистрируются отдельно)

# Ошибки

Ошибки СУБД возвращаются без обертки. Неподдерживаемое соединение или
операция дают *UnsupportedError до любого обращения к СУБД:

	if errors.Is(err, adapters.ErrUnsupported) { ... }

# Использование

	strategy, err := adapters.Dispatch(ctx, conn)
	if err != nil {
	    return err
	}
	ds, err := strategy.Read(ctx, "SELECT * FROM events", adapters.ReadOptions{})
*/
package adapters
