// Package sqlstore implements the repositories on database/sql. Queries are
// written with '?' placeholders and rebound for Postgres.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// Observer times a logical DB operation. *observability.Prom satisfies it.
type Observer interface {
	ObserveDB(op string, fn func() error) error
}

type nopObserver struct{}

func (nopObserver) ObserveDB(_ string, fn func() error) error { return fn() }

type DB struct {
	sql     *sql.DB
	dialect Dialect
	obs     Observer
}

func New(db *sql.DB, dialect Dialect, obs Observer) *DB {
	if obs == nil {
		obs = nopObserver{}
	}
	return &DB{sql: db, dialect: dialect, obs: obs}
}

func (d *DB) Dialect() Dialect { return d.dialect }

func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

func (d *DB) q(query string) string {
	if d.dialect == Postgres {
		return Rebind(query)
	}
	return query
}

func (d *DB) exec(ctx context.Context, op, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := d.obs.ObserveDB(op, func() error {
		var err error
		res, err = d.sql.ExecContext(ctx, d.q(query), args...)
		return err
	})
	return res, err
}

// queryRowFound is queryRow that also reports whether a row came back.
func (d *DB) queryRowFound(ctx context.Context, op, query string, args []any, dest ...any) (bool, error) {
	found := true
	err := d.obs.ObserveDB(op, func() error {
		err := d.sql.QueryRowContext(ctx, d.q(query), args...).Scan(dest...)
		if errors.Is(err, sql.ErrNoRows) {
			found = false
			return nil
		}
		return err
	})
	return found && err == nil, err
}

func (d *DB) query(ctx context.Context, op, query string, args []any, each func(*sql.Rows) error) error {
	return d.obs.ObserveDB(op, func() error {
		rows, err := d.sql.QueryContext(ctx, d.q(query), args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			if err := each(rows); err != nil {
				return err
			}
		}
		return rows.Err()
	})
}

// Rebind turns '?' placeholders into $1..$n.
func Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// IsUniqueViolation recognises unique-constraint failures from either driver.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// timestamps are stored as fixed-width UTC text so string order is time order
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// dbTime scans TEXT (SQLite) and TIMESTAMPTZ (Postgres) columns.
type dbTime struct {
	time.Time
}

var timeLayouts = []string{timeLayout, time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02 15:04:05.999999999-07:00"}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (t *dbTime) parse(s string) error {
	for _, layout := range timeLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unparseable timestamp %q", s)
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
