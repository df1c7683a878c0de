// Package history provides a SQLite-backed LIFO stack of previously active
// documents.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/notelink/internal/apperr"
	"github.com/starford/notelink/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS history (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	path       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS session (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Stack is the navigation history contract.
type Stack interface {
	Push(path string) error
	Pop() (string, error)
	List(limit int) ([]models.HistoryEntry, error)
	Len() (int, error)
	Clear() error
}

// Verify *DB satisfies Stack at compile time.
var _ Stack = (*DB)(nil)

// DB wraps a sql.DB with history operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Push records path as the most recent entry.
func (db *DB) Push(path string) error {
	if _, err := db.conn.Exec(`INSERT INTO history (path, created_at) VALUES (?, ?)`, path, time.Now().UTC()); err != nil {
		return fmt.Errorf("history: push: %w", err)
	}
	return nil
}

// Pop removes and returns the most recent entry. An empty stack yields
// apperr.ErrEmptyHistory.
func (db *DB) Pop() (string, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("history: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var (
		id   int64
		path string
	)
	err = tx.QueryRow(`SELECT id, path FROM history ORDER BY id DESC LIMIT 1`).Scan(&id, &path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.ErrEmptyHistory
	}
	if err != nil {
		return "", fmt.Errorf("history: pop: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM history WHERE id = ?`, id); err != nil {
		return "", fmt.Errorf("history: pop delete: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("history: commit: %w", err)
	}
	return path, nil
}

// List returns up to limit entries, most recent first. limit <= 0 means 50.
func (db *DB) List(limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(`SELECT id, path, created_at FROM history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var out []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.ID, &e.Path, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Len returns the number of entries.
func (db *DB) Len() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("history: count: %w", err)
	}
	return n, nil
}

// Clear removes every entry.
func (db *DB) Clear() error {
	if _, err := db.conn.Exec(`DELETE FROM history`); err != nil {
		return fmt.Errorf("history: clear: %w", err)
	}
	return nil
}

// Session values persisted between CLI invocations.
const (
	KeyActive  = "active"
	KeyInitial = "initial"
)

// Get returns a session value, or "" when unset.
func (db *DB) Get(key string) (string, error) {
	var v string
	err := db.conn.QueryRow(`SELECT value FROM session WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("history: get %s: %w", key, err)
	}
	return v, nil
}

// Set stores a session value.
func (db *DB) Set(key, value string) error {
	_, err := db.conn.Exec(`
		INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("history: set %s: %w", key, err)
	}
	return nil
}
