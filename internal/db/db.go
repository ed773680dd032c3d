// Package db provides PostgreSQL persistence for the outreach agent: the
// outcome log that quota reconstruction and daily stats read from, batch
// progress rows behind the campaign API, the crawled-page cache used by
// research, and API user accounts.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool. The pool is shared by the batch
// runner's workers and the HTTP server, so methods must be safe for
// concurrent use; pgxpool guarantees that.
type DB struct {
	pool *pgxpool.Pool
}

// Connect opens a connection pool for the given URL and verifies it with a
// ping, so a bad DSN or unreachable host fails at startup rather than on
// the first outcome write mid-batch.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to verify database connection: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close releases the pool. Safe to call on a zero DB.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}
