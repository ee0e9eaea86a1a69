package store

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS mks_datasets (
    name TEXT PRIMARY KEY,
    dim INTEGER NOT NULL,
    size INTEGER NOT NULL,
    kind TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS mks_points (
    dataset TEXT NOT NULL,
    idx INTEGER NOT NULL,
    vec BLOB NOT NULL,
    PRIMARY KEY (dataset, idx)
);
CREATE TABLE IF NOT EXISTS mks_runs (
    run TEXT PRIMARY KEY,
    reference TEXT NOT NULL,
    queries TEXT NOT NULL,
    kernel TEXT NOT NULL,
    mode TEXT NOT NULL,
    k INTEGER NOT NULL,
    evaluations INTEGER NOT NULL,
    prunes INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS mks_results (
    run TEXT NOT NULL,
    query INTEGER NOT NULL,
    rank INTEGER NOT NULL,
    ref INTEGER NOT NULL,
    value REAL NOT NULL,
    PRIMARY KEY (run, query, rank)
);
`

// EnsureSchema creates the dataset, point, run and result tables if they do
// not already exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("store: ensure schema: %w", err)
	}
	return nil
}
