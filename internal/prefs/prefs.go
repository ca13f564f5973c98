// Package prefs is a durable key-value blob store backed by SQLite.
// The session store uses it to keep the weight unit preference across
// restarts; everything else about a session is ephemeral.
package prefs

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB is a small keyed blob store.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the prefs database at dir/prefs.db.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "prefs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening prefs db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS prefs (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating prefs table: %w", err)
	}

	return &DB{db: db}, nil
}

// Get returns the blob stored under key, or nil if the key is absent.
func (d *DB) Get(key string) ([]byte, error) {
	var value []byte
	err := d.db.QueryRow(`SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading pref %s: %w", key, err)
	}
	return value, nil
}

// Set stores a blob under key, replacing any previous value.
func (d *DB) Set(key string, value []byte) error {
	_, err := d.db.Exec(
		`INSERT INTO prefs (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("writing pref %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.db.Close()
}
