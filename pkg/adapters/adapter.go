package adapters

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/ruslano69/sqlframe/pkg/core/frame"
	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

// Descriptor - параметры подключения, которые соединение сообщает о себе.
// Читается заново при каждом вызове и нигде не кешируется.
type Descriptor struct {
	// Driver - идентификатор драйвера:
	//   "clickhouse+native", "clickhouse+http", "duckdb",
	//   "sqlite", "postgres", "mysql", "sqlserver", ...
	Driver string

	Host     string
	Port     int
	User     string
	Password string
	Database string

	// Schema - схема по умолчанию (PostgreSQL/MS SQL), пусто для остальных
	Schema string

	// PortShift - смещение порта для точки запросов колоночного хранилища
	PortShift int
}

// Address возвращает host:port.
// defaultPort используется, если порт не задан.
func (d Descriptor) Address(defaultPort int) string {
	return d.hostPort(defaultPort, 0)
}

// QueryAddress возвращает host:port точки запросов со смещением PortShift
func (d Descriptor) QueryAddress(defaultPort int) string {
	return d.hostPort(defaultPort, d.PortShift)
}

func (d Descriptor) hostPort(defaultPort, shift int) string {
	port := d.Port
	if port == 0 {
		port = defaultPort
	}
	host := d.Host
	if host == "" {
		host = "localhost"
	}
	return net.JoinHostPort(host, strconv.Itoa(port+shift))
}

// String возвращает описание без пароля (для логов)
func (d Descriptor) String() string {
	if d.Host == "" {
		return fmt.Sprintf("%s:%s", d.Driver, d.Database)
	}
	return fmt.Sprintf("%s://%s@%s/%s", d.Driver, d.User, d.Address(0), d.Database)
}

// Connection - соединение, переданное вызывающим.
// Конкретный тип определяет семейство: *clickhouse.Conn, *duckdb.Conn, *base.Conn.
type Connection interface {
	Descriptor() Descriptor
}

// Dialect - диалект SQL стратегии: квотирование и типы для синтеза схемы,
// плюс синтаксис параметров для параметризованных запросов
type Dialect interface {
	schema.Dialect

	// Placeholder возвращает маркер n-го параметра (с 1): "?", "$1", "@p1"
	Placeholder(n int) string
}

// EngineDialect - диалект, в CREATE TABLE которого задается движок хранения
type EngineDialect interface {
	Dialect

	// WithStorageEngine возвращает копию диалекта с клаузой движка
	// ("ReplacingMergeTree()", "MergeTree() ORDER BY id")
	WithStorageEngine(clause string) Dialect
}

// TableInfo - отраженное описание существующей таблицы
type TableInfo struct {
	Name       string
	Columns    []schema.ColumnDef
	PrimaryKey []string
}

// Column находит колонку таблицы по точному имени
func (t *TableInfo) Column(name string) (schema.ColumnDef, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return schema.ColumnDef{}, false
}

// Strategy - реализация чтения и записи для одного семейства СУБД,
// привязанная к конкретному соединению.
//
// Ошибки СУБД возвращаются без обертки, чтобы вызывающий мог
// сопоставить их с типами ошибок своего драйвера.
type Strategy interface {
	// Family возвращает семейство стратегии
	Family() Family

	// DedupSupported - выполняется ли дедупликация перед вставкой
	DedupSupported() bool

	// Dialect возвращает диалект для синтеза схемы и построения запросов
	Dialect() Dialect

	// ========== Чтение ==========

	// Read выполняет запрос и возвращает весь результат
	Read(ctx context.Context, query string, opts ReadOptions) (*frame.Dataset, error)

	// ReadChunks возвращает ленивую последовательность чанков не длиннее chunkSize
	ReadChunks(ctx context.Context, query string, chunkSize int, opts ReadOptions) (*frame.Stream, error)

	// Query выполняет параметризованный запрос без правил приведения
	Query(ctx context.Context, query string, args ...any) (*frame.Dataset, error)

	// ========== Схема ==========

	// ReflectTable возвращает колонки и первичный ключ таблицы
	ReflectTable(ctx context.Context, table string) (*TableInfo, error)

	// TableExists проверяет существование таблицы
	TableExists(ctx context.Context, table string) (bool, error)

	// Exec выполняет DDL
	Exec(ctx context.Context, stmt string) error

	// ========== Запись ==========

	// PrepareWrite приводит датасет к представлению, которое примет СУБД
	PrepareWrite(ds *frame.Dataset) (*frame.Dataset, error)

	// Insert вставляет строки пакетно
	Insert(ctx context.Context, table string, ds *frame.Dataset, opts WriteOptions) error
}
