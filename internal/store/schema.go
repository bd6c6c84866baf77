// Package store provides SQLite-backed packet persistence with optional FTS5
// full-text search over section and capture text.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS packets (
	id                TEXT PRIMARY KEY,
	title             TEXT NOT NULL DEFAULT '',
	source_path       TEXT NOT NULL DEFAULT '',
	original_filename TEXT NOT NULL DEFAULT '',
	source_checksum   TEXT NOT NULL DEFAULT '',
	created_at        DATETIME NOT NULL,
	modified_at       DATETIME NOT NULL,
	is_archived       INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_packets_checksum ON packets(source_checksum);

CREATE TABLE IF NOT EXISTS sections (
	id             TEXT PRIMARY KEY,
	packet_id      TEXT NOT NULL REFERENCES packets(id) ON DELETE CASCADE,
	title          TEXT NOT NULL DEFAULT '',
	content        TEXT NOT NULL DEFAULT '',
	page_reference TEXT NOT NULL DEFAULT '',
	section_type   TEXT NOT NULL DEFAULT 'content',
	position       INTEGER NOT NULL DEFAULT 0,
	created_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sections_packet ON sections(packet_id);

CREATE TABLE IF NOT EXISTS checklist_items (
	id             TEXT PRIMARY KEY,
	packet_id      TEXT NOT NULL REFERENCES packets(id) ON DELETE CASCADE,
	title          TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT 'pending',
	page_reference TEXT NOT NULL DEFAULT '',
	notes          TEXT NOT NULL DEFAULT '',
	reflection     TEXT NOT NULL DEFAULT '',
	position       INTEGER NOT NULL DEFAULT 0,
	created_at     DATETIME NOT NULL,
	modified_at    DATETIME NOT NULL,
	completed_at   DATETIME
);

CREATE INDEX IF NOT EXISTS idx_items_packet ON checklist_items(packet_id);

CREATE TABLE IF NOT EXISTS captures (
	id         TEXT PRIMARY KEY,
	packet_id  TEXT NOT NULL REFERENCES packets(id) ON DELETE CASCADE,
	type       TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL DEFAULT '',
	transcript TEXT NOT NULL DEFAULT '',
	summary    TEXT NOT NULL DEFAULT '',
	asset_path TEXT NOT NULL DEFAULT '',
	timestamp  DATETIME NOT NULL,
	duration   REAL NOT NULL DEFAULT 0,
	confidence REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_captures_packet ON captures(packet_id);

CREATE TABLE IF NOT EXISTS item_captures (
	capture_id TEXT NOT NULL REFERENCES captures(id) ON DELETE CASCADE,
	item_id    TEXT NOT NULL REFERENCES checklist_items(id) ON DELETE CASCADE,
	UNIQUE(capture_id, item_id)
);
`

// DB wraps a sql.DB with packet-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
