package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// DB is the subset of pgxpool.Pool the repositories use. pgxmock pools
// satisfy it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPool opens and pings a Postgres pool (Supabase exposes plain Postgres).
func NewPool(ctx context.Context, databaseURL string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	email          TEXT PRIMARY KEY,
	first_name     TEXT,
	last_name      TEXT,
	full_name      TEXT,
	phone          TEXT,
	monthly_income NUMERIC,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS buyerbrief_timelines (
	id             TEXT PRIMARY KEY,
	email          TEXT NOT NULL,
	scenario_id    TEXT NOT NULL,
	status         TEXT NOT NULL,
	grade          TEXT NOT NULL,
	all_in_monthly NUMERIC,
	payload        JSONB,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_buyerbrief_timelines_email_created
	ON buyerbrief_timelines (email, created_at DESC);
`

// Migrate creates the tables the service reads and writes.
func Migrate(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}
