//go:build !sqlite_fts5

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses a LIKE fallback over the section and
	// capture tables directly.
	return nil
}

func ftsUpsert(_ *sql.Tx, _ uuid.UUID, _ string, _ uuid.UUID, _, _ string) error {
	// Section and capture text is already in the core tables; nothing extra
	// to do.
	return nil
}

func ftsDeletePacket(_ *sql.Tx, _ uuid.UUID) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT s.packet_id, p.title, 'section', s.id, s.title, substr(s.content, 1, 200)
		FROM sections s
		JOIN packets p ON p.id = s.packet_id
		WHERE s.title LIKE ? OR s.content LIKE ?
		UNION ALL
		SELECT c.packet_id, p.title, 'capture', c.id, c.title, substr(c.content, 1, 200)
		FROM captures c
		JOIN packets p ON p.id = c.packet_id
		WHERE c.title LIKE ? OR c.content LIKE ? OR c.transcript LIKE ?
		LIMIT ?
	`, like, like, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()

	return collectSearchResults(rows)
}
