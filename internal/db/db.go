package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

// ErrDuplicateLabel is returned when a key pair with the same label exists.
var ErrDuplicateLabel = errors.New("key label already exists")

// pingBackoffBase is the first delay of the Fibonacci backoff used while
// waiting for the database to accept connections.
const pingBackoffBase = 100 * time.Millisecond

// DB wraps a pgx connection pool for key store operations.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and returns a DB handle.
// The ping is retried with Fibonacci backoff for up to timeout, so callers
// should connect with New before running migrations against a database
// that may still be booting.
func New(ctx context.Context, dsn string, timeout time.Duration) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := pingWithRetry(ctx, pool, timeout); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

func pingWithRetry(ctx context.Context, pool pinger, timeout time.Duration) error {
	if timeout <= 0 {
		return pool.Ping(ctx)
	}

	attempt := 0
	b := retry.WithMaxDuration(timeout, retry.NewFibonacci(pingBackoffBase))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := pool.Ping(ctx); err != nil {
			slog.Debug("database not ready", "attempt", attempt, "err", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

// Close closes the database connection pool.
func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the underlying pgx pool.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}
