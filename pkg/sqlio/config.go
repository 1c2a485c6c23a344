package sqlio

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ruslano69/sqlframe/pkg/adapters"
	"github.com/ruslano69/sqlframe/pkg/core/frame"
	"github.com/ruslano69/sqlframe/pkg/logging"
)

// DefaultChunkSize - строк в чанке, если read.chunk_size не задан
const DefaultChunkSize = 50000

// Config - параметры чтения, записи и журналирования из YAML
type Config struct {
	Read    ReadConfig     `yaml:"read"`
	Write   WriteConfig    `yaml:"write"`
	Logging logging.Config `yaml:"logging"`
}

// ReadConfig - параметры чтения
type ReadConfig struct {
	ChunkSize             int  `yaml:"chunk_size"`
	DisableTimeColumnRule bool `yaml:"disable_time_column_rule"`
	DisableAcceleration   bool `yaml:"disable_acceleration"`
}

// WriteConfig - параметры записи
type WriteConfig struct {
	IfExists     string            `yaml:"if_exists"`
	Index        bool              `yaml:"index"`
	IndexLabel   string            `yaml:"index_label"`
	Keys         []string          `yaml:"keys"`
	DTypes       map[string]string `yaml:"dtype"`
	CategoryKeys []string          `yaml:"category_keys"`
	RangeKeys    []string          `yaml:"range_keys"`

	// IgnoreDuplicate - указатель, чтобы отличить false от отсутствия (по умолчанию true)
	IgnoreDuplicate *bool `yaml:"ignore_duplicate"`

	StorageEngine string `yaml:"storage_engine"`
	BatchSize     int    `yaml:"batch_size"`
}

// LoadConfig читает конфигурацию из YAML файла
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig разбирает YAML, проверяет и дополняет значениями по умолчанию
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	config.SetDefaults()
	return &config, nil
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.Read.ChunkSize < 0 {
		return fmt.Errorf("%w: read.chunk_size must not be negative", adapters.ErrInvalidOptions)
	}
	return c.WriteOptions().Validate()
}

// SetDefaults устанавливает значения по умолчанию
func (c *Config) SetDefaults() {
	if c.Read.ChunkSize == 0 {
		c.Read.ChunkSize = DefaultChunkSize
	}
	if c.Write.IfExists == "" {
		c.Write.IfExists = string(adapters.IfExistsAppend)
	}
	if c.Write.IgnoreDuplicate == nil {
		ignore := true
		c.Write.IgnoreDuplicate = &ignore
	}
	if c.Write.StorageEngine == "" {
		c.Write.StorageEngine = adapters.DefaultStorageEngine
	}
	if c.Write.BatchSize == 0 {
		c.Write.BatchSize = adapters.DefaultBatchSize
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// ChunkSize возвращает размер чанка для ReadChunked
func (c *Config) ChunkSize() int {
	if c.Read.ChunkSize < 1 {
		return DefaultChunkSize
	}
	return c.Read.ChunkSize
}

// ReadOptions возвращает параметры чтения
func (c *Config) ReadOptions() adapters.ReadOptions {
	return adapters.ReadOptions{
		DisableTimeColumnRule: c.Read.DisableTimeColumnRule,
		DisableAcceleration:   c.Read.DisableAcceleration,
	}
}

// WriteOptions возвращает параметры записи
func (c *Config) WriteOptions() adapters.WriteOptions {
	opts := adapters.WriteOptions{
		IfExists:        adapters.IfExists(c.Write.IfExists),
		Index:           c.Write.Index,
		IndexLabel:      c.Write.IndexLabel,
		Keys:            c.Write.Keys,
		DTypes:          c.Write.DTypes,
		IgnoreDuplicate: true,
		CategoryKeys:    c.Write.CategoryKeys,
		RangeKeys:       c.Write.RangeKeys,
		StorageEngine:   c.Write.StorageEngine,
		BatchSize:       c.Write.BatchSize,
	}
	if c.Write.IgnoreDuplicate != nil {
		opts.IgnoreDuplicate = *c.Write.IgnoreDuplicate
	}
	return opts
}

// Logger создает логгер из секции logging
func (c *Config) Logger() zerolog.Logger {
	return logging.NewWithComponent(c.Logging, "sqlio")
}

// ReadChunked читает запрос чанками по read.chunk_size с параметрами из read
func (c *Config) ReadChunked(ctx context.Context, query string, conn adapters.Connection) (*frame.Stream, error) {
	return ReadSQLChunked(ctx, query, conn, c.ChunkSize(), c.ReadOptions())
}

// WriteDataset записывает датасет с параметрами из write
func (c *Config) WriteDataset(ctx context.Context, ds *frame.Dataset, table string, conn adapters.Connection) error {
	return WriteSQL(ctx, ds, table, conn, c.WriteOptions())
}
