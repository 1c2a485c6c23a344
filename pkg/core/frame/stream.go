package frame

import (
	"context"
	"errors"

	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

// ChunkSource - источник чанков. Пустой (или nil) чанк означает конец данных.
type ChunkSource interface {
	NextChunk(ctx context.Context) (*Dataset, error)
	Close() error
}

// Transform - преобразование, применяемое к каждому чанку независимо
type Transform func(*Dataset) (*Dataset, error)

// Stream - ленивая конечная одноразовая последовательность датасетов.
// Держит курсор СУБД до исчерпания или до Close.
//
//	for s.Next() {
//	    chunk := s.Dataset()
//	}
//	if err := s.Err(); err != nil { ... }
type Stream struct {
	ctx        context.Context
	src        ChunkSource
	transforms []Transform

	cur    *Dataset
	tail   *Dataset // пустой завершающий чанк: сохраняет набор колонок
	err    error
	done   bool
	closed bool
}

// NewStream оборачивает источник чанков
func NewStream(ctx context.Context, src ChunkSource) *Stream {
	return &Stream{ctx: ctx, src: src}
}

// Map добавляет преобразование чанков. Вызывать до первого Next.
func (s *Stream) Map(fn Transform) *Stream {
	s.transforms = append(s.transforms, fn)
	return s
}

// Next переходит к следующему чанку. false - данные кончились или ошибка (см. Err).
// На конце потока источник закрывается автоматически.
func (s *Stream) Next() bool {
	if s.done {
		return false
	}

	chunk, err := s.src.NextChunk(s.ctx)
	if err != nil {
		s.fail(err)
		return false
	}
	if chunk.NumRows() == 0 {
		s.tail = chunk
		s.finish()
		return false
	}

	for _, fn := range s.transforms {
		if chunk, err = fn(chunk); err != nil {
			s.fail(err)
			return false
		}
	}

	s.cur = chunk
	return true
}

// Dataset возвращает текущий чанк
func (s *Stream) Dataset() *Dataset {
	return s.cur
}

// Err возвращает ошибку, остановившую поток
func (s *Stream) Err() error {
	return s.err
}

// Close освобождает курсор. Безопасно вызывать повторно.
func (s *Stream) Close() error {
	s.done = true
	s.cur = nil
	if s.closed {
		return nil
	}
	s.closed = true
	return s.src.Close()
}

// Collect читает все оставшиеся чанки и склеивает их в один датасет
func (s *Stream) Collect() (*Dataset, error) {
	defer s.Close()

	var parts []*Dataset
	for s.Next() {
		parts = append(parts, s.Dataset())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if len(parts) == 0 && s.tail != nil {
		out := s.tail
		var err error
		for _, fn := range s.transforms {
			if out, err = fn(out); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return Concat(parts...)
}

func (s *Stream) fail(err error) {
	s.err = err
	if cerr := s.Close(); cerr != nil {
		s.err = errors.Join(err, cerr)
	}
}

func (s *Stream) finish() {
	if err := s.Close(); err != nil {
		s.err = err
	}
}

// ========== Построчные курсоры ==========

// RowScanner - построчный курсор драйвера
type RowScanner interface {
	Next() bool
	// Values возвращает значения текущей строки; срез принадлежит вызывающему
	Values() ([]any, error)
	Err() error
	Close() error
}

// RowChunker собирает строки курсора в чанки по size строк.
// Клиентский буфер ограничен размером чанка.
type RowChunker struct {
	names   []string
	types   []schema.DataType
	scanner RowScanner
	size    int
}

// NewRowChunker создает источник чанков поверх курсора
func NewRowChunker(names []string, types []schema.DataType, scanner RowScanner, size int) *RowChunker {
	if size < 1 {
		size = 1
	}
	return &RowChunker{names: names, types: types, scanner: scanner, size: size}
}

// NextChunk читает до size строк
func (c *RowChunker) NextChunk(ctx context.Context) (*Dataset, error) {
	rows := make([][]any, 0, c.size)
	for len(rows) < c.size && c.scanner.Next() {
		values, err := c.scanner.Values()
		if err != nil {
			return nil, err
		}
		rows = append(rows, values)
	}
	if err := c.scanner.Err(); err != nil {
		return nil, err
	}
	return FromRows(c.names, c.types, rows)
}

// Close закрывает курсор
func (c *RowChunker) Close() error {
	return c.scanner.Close()
}

// ========== Перенарезка чанков ==========

type rechunker struct {
	src  ChunkSource
	size int
	buf  *Dataset
	eof  bool
}

// Rechunk перенарезает чанки источника на куски ровно по size строк
// (последний кусок может быть короче)
func Rechunk(src ChunkSource, size int) ChunkSource {
	if size < 1 {
		size = 1
	}
	return &rechunker{src: src, size: size}
}

func (r *rechunker) NextChunk(ctx context.Context) (*Dataset, error) {
	for !r.eof && r.buf.NumRows() < r.size {
		chunk, err := r.src.NextChunk(ctx)
		if err != nil {
			return nil, err
		}
		if chunk.NumRows() == 0 {
			r.eof = true
			if r.buf == nil {
				r.buf = chunk
			}
			break
		}
		if r.buf == nil {
			r.buf = chunk
			continue
		}
		if r.buf, err = Concat(r.buf, chunk); err != nil {
			return nil, err
		}
	}

	if r.buf.NumRows() == 0 {
		return r.buf, nil
	}

	n := r.size
	if n > r.buf.NumRows() {
		n = r.buf.NumRows()
	}
	out := r.buf.Slice(0, n)
	r.buf = r.buf.Slice(n, r.buf.NumRows())
	return out, nil
}

func (r *rechunker) Close() error {
	return r.src.Close()
}
