// Package logging настраивает zerolog для sqlframe.
//
// Библиотечный код пишет в логгер из контекста (zerolog.Ctx), поэтому
// вызывающий подключает логгер так:
//
//	logger := logging.New(logging.Config{Level: "debug"})
//	ctx = logger.WithContext(ctx)
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Config - параметры логгера
type Config struct {
	// Level - trace, debug, info, warn, error, disabled (по умолчанию info)
	Level string `yaml:"level"`

	// Pretty - человекочитаемый вывод вместо JSON
	Pretty bool `yaml:"pretty"`

	// Output - куда писать (по умолчанию os.Stderr)
	Output io.Writer `yaml:"-"`
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
	return Config{Level: "info", Output: os.Stderr}
}

// New создает логгер по конфигурации. Неизвестный уровень - info.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// NewWithComponent создает логгер с полем component
func NewWithComponent(cfg Config, component string) zerolog.Logger {
	return New(cfg).With().Str("component", component).Logger()
}
