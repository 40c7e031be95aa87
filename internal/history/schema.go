// Package history records completed renders and caches weather reports in
// SQLite.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS renders (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	rendered_at DATETIME NOT NULL,
	duration_ns INTEGER  NOT NULL DEFAULT 0,
	checksum    TEXT     NOT NULL DEFAULT '',
	artwork     TEXT     NOT NULL DEFAULT '',
	weather_ok  INTEGER  NOT NULL DEFAULT 0,
	reminders   INTEGER  NOT NULL DEFAULT 0,
	source      TEXT     NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_renders_rendered_at ON renders(rendered_at);

CREATE TABLE IF NOT EXISTS weather_cache (
	key        TEXT PRIMARY KEY,
	payload    TEXT    NOT NULL,
	fetched_at INTEGER NOT NULL
);
`

// DB wraps a sql.DB with history-specific operations.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
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
	return &DB{conn: conn, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
