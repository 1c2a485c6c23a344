package sqlio

import (
	_ "github.com/ruslano69/sqlframe/pkg/adapters/base"       // generic-relational
	_ "github.com/ruslano69/sqlframe/pkg/adapters/clickhouse" // columnar-analytical
	_ "github.com/ruslano69/sqlframe/pkg/adapters/duckdb"     // embedded-analytical
	_ "github.com/ruslano69/sqlframe/pkg/adapters/mssql"
	_ "github.com/ruslano69/sqlframe/pkg/adapters/mysql"
	_ "github.com/ruslano69/sqlframe/pkg/adapters/postgres"
	_ "github.com/ruslano69/sqlframe/pkg/adapters/sqlite"
)
