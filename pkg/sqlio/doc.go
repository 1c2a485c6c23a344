// Package sqlio - точки входа для чтения и записи датасетов.
//
// Семейство СУБД определяется по соединению при каждом вызове:
//
//	*clickhouse.Conn → columnar-analytical
//	*duckdb.Conn     → embedded-analytical
//	*base.Conn       → generic-relational (SQLite, PostgreSQL, MySQL, MS SQL, ...)
//
// Пример:
//
//	conn, _ := sqlite.Open(ctx, "app.db")
//	defer conn.Close()
//
//	opts := adapters.DefaultWriteOptions()
//	opts.Keys = []string{"id"}
//	if err := sqlio.WriteSQL(ctx, ds, "events", conn, opts); err != nil {
//	    return err
//	}
//
//	stream, err := sqlio.ReadSQLChunked(ctx, "SELECT * FROM events", conn, 10000, adapters.ReadOptions{})
//	if err != nil {
//	    return err
//	}
//	defer stream.Close()
//	for stream.Next() {
//	    process(stream.Dataset())
//	}
//	return stream.Err()
package sqlio
