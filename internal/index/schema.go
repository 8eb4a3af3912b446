// Package index provides a SQLite-backed index of parsed ingots with
// optional FTS5 full-text search.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS ingots (
	path       TEXT PRIMARY KEY,
	id         INTEGER NOT NULL DEFAULT 0,
	pname      TEXT NOT NULL DEFAULT '',
	title      TEXT NOT NULL DEFAULT '',
	excerpt    TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT 'draft',
	target     TEXT NOT NULL DEFAULT 'post',
	published  DATETIME,
	modified   DATETIME,
	checksum   TEXT NOT NULL DEFAULT '',
	tags       TEXT NOT NULL DEFAULT '[]',
	categories TEXT NOT NULL DEFAULT '[]',
	terms      TEXT NOT NULL DEFAULT '',
	body       TEXT NOT NULL DEFAULT '',
	issues     INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_ingots_status ON ingots(status);
CREATE INDEX IF NOT EXISTS idx_ingots_published ON ingots(published);

CREATE TABLE IF NOT EXISTS ingot_terms (
	path    TEXT NOT NULL,
	kind    TEXT NOT NULL,
	term_id INTEGER NOT NULL,
	UNIQUE(path, kind, term_id)
);

CREATE INDEX IF NOT EXISTS idx_terms_term ON ingot_terms(kind, term_id);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable.
func (db *DB) Ping() error {
	return db.conn.Ping()
}
