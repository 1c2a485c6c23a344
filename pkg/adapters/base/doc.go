// Package base реализует стратегию семейства generic-relational поверх database/sql.
//
// # Основные компоненты
//
// Conn - обертка соединения, которую передает вызывающий:
//   - хранит *sql.DB и Descriptor
//   - держит набор hook'ов переписывания INSERT (устанавливаются один раз по имени)
//   - опционально несет Accelerator - блочный reader результата
//
// Dialect - все, чем СУБД отличаются друг от друга:
//   - квотирование, маркеры параметров, SQL типы для CREATE TABLE
//   - рефлексия колонок и первичного ключа
//   - hook вставки с пропуском конфликтов
//   - приведение длительностей при записи и привязка значений
//
// Диалекты регистрируются в init() своих пакетов (sqlite, postgres, mysql, mssql).
// Для незарегистрированного драйвера используется StandardDialect.
//
// # Использование
//
//	db, err := sql.Open("sqlite", "file:app.db")
//	if err != nil {
//	    return err
//	}
//	conn := base.NewConn(db, adapters.Descriptor{Driver: "sqlite", Database: "app.db"})
//	defer conn.Close()
//
//	ds, err := sqlio.ReadSQL(ctx, "SELECT * FROM events", conn, adapters.ReadOptions{})
package base
