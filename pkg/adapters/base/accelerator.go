package base

import (
	"context"
	"runtime"

	"github.com/ruslano69/sqlframe/pkg/core/frame"
)

// Accelerator - блочный reader результата запроса в обход построчного
// интерфейса database/sql (например, COPY TO у PostgreSQL).
// Возвращает колонки, типизированные по метаданным результата.
type Accelerator interface {
	ReadAll(ctx context.Context, query string) (*frame.Dataset, error)
}

// acceleratedArch - архитектуры, на которых включен блочный reader
var acceleratedArch = map[string]bool{
	"amd64": true,
	"386":   true,
}

// AccelerationAvailable сообщает, доступен ли блочный reader на текущей архитектуре
func AccelerationAvailable() bool {
	return acceleratedArch[runtime.GOARCH]
}
