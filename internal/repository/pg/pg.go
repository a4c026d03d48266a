// Package pg opens the PostgreSQL pool of the bookstore and migrates it.
package pg

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const driverName = "pgx"

//go:embed migrations/*.sql
var migrations embed.FS

// Options tune how Open waits for the server.
type Options struct {
	PingAttempts uint
	PingDelay    time.Duration
}

// gooseUp is replaced in tests.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

// Open connects to dsn, waits until the server answers and applies pending migrations.
// The returned pool holds a single connection.
func Open(ctx context.Context, dsn string, opts Options) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := prepare(ctx, db, opts); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func prepare(ctx context.Context, db *sql.DB, opts Options) error {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	attempts := opts.PingAttempts
	if attempts == 0 {
		attempts = 1
	}

	err := retry.Do(
		func() error { return db.PingContext(ctx) },
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(opts.PingDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	return Migrate(ctx, db)
}

// Migrate applies the embedded goose migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUp(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("migrate books: %w", err)
	}
	return nil
}
