package sqlio

import (
	"context"
	"fmt"

	"github.com/ruslano69/sqlframe/pkg/adapters"
	"github.com/ruslano69/sqlframe/pkg/core/frame"
)

// ReadSQL выполняет запрос и возвращает весь результат с приведенными типами
func ReadSQL(ctx context.Context, query string, conn adapters.Connection, opts adapters.ReadOptions) (*frame.Dataset, error) {
	s, err := adapters.Dispatch(ctx, conn)
	if err != nil {
		return nil, err
	}
	return s.Read(ctx, query, opts)
}

// ReadSQLChunked возвращает ленивый поток чанков не длиннее chunkSize строк.
// Поток держит курсор СУБД до исчерпания или Close.
func ReadSQLChunked(ctx context.Context, query string, conn adapters.Connection, chunkSize int, opts adapters.ReadOptions) (*frame.Stream, error) {
	if chunkSize < 1 {
		return nil, fmt.Errorf("%w: chunk size must be at least 1, got %d", adapters.ErrInvalidOptions, chunkSize)
	}

	s, err := adapters.Dispatch(ctx, conn)
	if err != nil {
		return nil, err
	}
	return s.ReadChunks(ctx, query, chunkSize, opts)
}
