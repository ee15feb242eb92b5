package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/repo/sqlstore"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Open connects to the configured backend and pings it.
func Open(ctx context.Context, driver, path, url string) (*sql.DB, sqlstore.Dialect, error) {
	switch sqlstore.Dialect(driver) {
	case sqlstore.SQLite, "":
		db, err := OpenSQLite(ctx, path)
		return db, sqlstore.SQLite, err
	case sqlstore.Postgres:
		db, err := OpenPostgres(ctx, url)
		return db, sqlstore.Postgres, err
	default:
		return nil, "", fmt.Errorf("unknown DB_DRIVER %q", driver)
	}
}

// OpenSQLite opens a single-file (or file::memory:) database with foreign
// keys enforced. One connection serialises writers.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

func OpenPostgres(ctx context.Context, dbURL string) (*sql.DB, error) {
	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, err
	}

	cfg.MaxConns = 5

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return stdlib.OpenDBFromPool(pool), nil
}
