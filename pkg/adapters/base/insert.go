package base

import (
	"context"
	"strings"

	"github.com/ruslano69/sqlframe/pkg/core/frame"
	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

// insertBatchSize ограничивает число строк в одном INSERT лимитами диалекта
func insertBatchSize(d Dialect, batchSize, numCols int) int {
	size := batchSize
	maxParams, maxRows := d.InsertLimits()
	if maxParams > 0 && numCols > 0 && size*numCols > maxParams {
		size = maxParams / numCols
	}
	if maxRows > 0 && size > maxRows {
		size = maxRows
	}
	if size < 1 {
		size = 1
	}
	return size
}

// buildInsert строит многострочный INSERT на rows строк:
//
//	INSERT INTO "t" ("a", "b") VALUES (?, ?), (?, ?)
func buildInsert(d Dialect, table string, columns []string, rows int) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteIdentifier(c)
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(schema.QuoteQualified(d, table))
	sb.WriteString(" (")
	sb.WriteString(strings.Join(quoted, ", "))
	sb.WriteString(") VALUES ")

	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for c := range columns {
			if c > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(d.Placeholder(n))
			n++
		}
		sb.WriteByte(')')
	}
	return sb.String()
}

// insertRows вставляет строки пакетами в одной транзакции.
// Ошибки СУБД возвращаются без обертки, транзакция откатывается.
func (s *Strategy) insertRows(ctx context.Context, table string, ds *frame.Dataset, batchSize int) (err error) {
	cols := ds.Columns()
	names := ds.ColumnNames()
	size := insertBatchSize(s.dialect, batchSize, len(cols))

	tx, err := s.conn.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var stmt string
	stmtRows := 0
	for start := 0; start < ds.NumRows(); start += size {
		end := start + size
		if end > ds.NumRows() {
			end = ds.NumRows()
		}

		if end-start != stmtRows {
			stmtRows = end - start
			stmt = s.conn.Rewrite(buildInsert(s.dialect, table, names, stmtRows))
		}

		args := make([]any, 0, stmtRows*len(cols))
		for r := start; r < end; r++ {
			for _, col := range cols {
				args = append(args, s.dialect.BindValue(col.Values[r], col.Type))
			}
		}

		if _, err = tx.ExecContext(ctx, stmt, args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}
