package postgres

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ruslano69/sqlframe/pkg/adapters"
	"github.com/ruslano69/sqlframe/pkg/adapters/base"
	"github.com/ruslano69/sqlframe/pkg/core/frame"
	"github.com/ruslano69/sqlframe/pkg/core/schema"
)

func init() {
	base.RegisterDialect(Dialect{}, "postgres", "postgresql", "pgx")
}

// maxParams - лимит параметров протокола PostgreSQL (uint16)
const maxParams = 65535

// Dialect - диалект PostgreSQL
type Dialect struct {
	base.StandardDialect
}

// Compile-time check
var _ base.Dialect = Dialect{}

// Name возвращает имя диалекта
func (Dialect) Name() string { return "postgres" }

// Placeholder возвращает $n
func (Dialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

// ColumnType возвращает тип колонки для CREATE TABLE
func (Dialect) ColumnType(col schema.ColumnDef) string { return ColumnType(col) }

// ParseColumnType распознает типы PostgreSQL
func (Dialect) ParseColumnType(dbType string) (schema.DataType, bool) { return ParseType(dbType) }

// ReflectTable читает information_schema в текущей схеме
func (d Dialect) ReflectTable(ctx context.Context, q base.Querier, table string) (*adapters.TableInfo, error) {
	return base.InformationSchema{CurrentSchema: "current_schema()"}.Reflect(ctx, q, d, table)
}

// IgnoreInsert дописывает ON CONFLICT DO NOTHING
func (Dialect) IgnoreInsert() (base.Hook, bool) {
	return func(stmt string) string {
		if strings.Contains(strings.ToUpper(stmt), " ON CONFLICT ") {
			return stmt
		}
		return stmt + " ON CONFLICT DO NOTHING"
	}, true
}

// InsertLimits - лимит параметров протокола
func (Dialect) InsertLimits() (int, int) { return maxParams, 0 }

// PrepareWrite - длительности хранятся как INTERVAL без преобразования
func (Dialect) PrepareWrite(ds *frame.Dataset) (*frame.Dataset, error) { return ds, nil }

// BindValue передает длительность как interval, время суток как time
func (Dialect) BindValue(v any, t schema.DataType) any {
	d, ok := v.(time.Duration)
	if !ok {
		return v
	}
	switch t {
	case schema.TypeDuration:
		return pgtype.Interval{Microseconds: d.Microseconds(), Valid: true}
	case schema.TypeTime:
		return pgtype.Time{Microseconds: schema.TimeOfDay(d).Microseconds(), Valid: true}
	}
	return v
}

// NormalizeValue приводит значения pgtype к базовым Go типам
func (Dialect) NormalizeValue(v any) any {
	switch x := v.(type) {
	case pgtype.Interval:
		if !x.Valid {
			return nil
		}
		return IntervalDuration(x)
	case pgtype.Time:
		if !x.Valid {
			return nil
		}
		return schema.MicrosToDuration(x.Microseconds)
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(x).String()
	}
	return v
}

// IntervalDuration переводит interval в длительность (месяц = 30 дней)
func IntervalDuration(iv pgtype.Interval) time.Duration {
	days := int64(iv.Months)*30 + int64(iv.Days)
	return time.Duration(days)*24*time.Hour + schema.MicrosToDuration(iv.Microseconds)
}
