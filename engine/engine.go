package engine

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// Open opens a SQLite database with the kernel functions registered.
// Pass a file path or ":memory:". In-memory databases are limited to one
// connection so every statement sees the same database.
func Open(dsn string) (*sql.DB, error) {
	if err := RegisterKernelFunctions(); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("engine: open %s: %w", dsn, err)
	}
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}
