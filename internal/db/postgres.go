// Package db opens PostgreSQL and Redis connections from configuration.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Konovalexx/hh-parser-2/internal/config"
)

// reportPoolSize bounds the read-only pool; one menu session or a handful of
// HTTP report requests never need more.
const reportPoolSize = 4

// Connect opens a single connection to the database named in pg. The caller
// owns it and must Close it.
func Connect(ctx context.Context, pg config.Postgres) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, pg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("connect to %s@%s/%s: %w", pg.User, pg.Host, pg.DBName, err)
	}
	return conn, nil
}

// NewReportPool creates a small pool whose sessions default to read-only
// transactions, and verifies it with a ping.
func NewReportPool(ctx context.Context, pg config.Postgres) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(pg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}
	poolCfg.MaxConns = reportPoolSize
	poolCfg.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return pool, nil
}
