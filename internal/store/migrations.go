package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for all tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		workers      INTEGER NOT NULL,
		seed         INTEGER NOT NULL,
		state        TEXT NOT NULL DEFAULT 'RUNNING',
		op_count     INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL,
		completed_at TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS ops (
		run_id  TEXT NOT NULL,
		idx     INTEGER NOT NULL,
		type    TEXT NOT NULL,
		f       TEXT NOT NULL,
		value   TEXT NOT NULL DEFAULT 'null',
		time_ns INTEGER NOT NULL,
		process INTEGER NOT NULL,
		error   TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, idx)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_state ON runs(state)`,
	`CREATE INDEX IF NOT EXISTS idx_ops_run_id ON ops(run_id)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
