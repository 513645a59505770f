package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) the sqlite database at path, creating parent
// directories as needed, and applies the pragmas the store relies on:
// foreign keys for the users→transactions cascade and a busy timeout so
// concurrent API requests queue instead of failing with SQLITE_BUSY.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// Single writer; sqlite serializes writes anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := `
PRAGMA foreign_keys = ON;
PRAGMA busy_timeout = 5000;
`
	if _, err := db.Exec(pragmas); err != nil {
		return nil, fmt.Errorf("apply sqlite pragmas: %w", err)
	}

	return db, nil
}
