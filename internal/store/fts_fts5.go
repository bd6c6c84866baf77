//go:build sqlite_fts5

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS packet_fts USING fts5(
			packet_id UNINDEXED,
			kind UNINDEXED,
			ref_id UNINDEXED,
			title,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, packetID uuid.UUID, kind string, refID uuid.UUID, title, body string) error {
	_, _ = tx.Exec(`DELETE FROM packet_fts WHERE ref_id = ?`, refID.String())
	_, err := tx.Exec(`INSERT INTO packet_fts (packet_id, kind, ref_id, title, body) VALUES (?, ?, ?, ?, ?)`,
		packetID.String(), kind, refID.String(), title, body)
	if err != nil {
		return fmt.Errorf("store: upsert fts: %w", err)
	}
	return nil
}

func ftsDeletePacket(tx *sql.Tx, packetID uuid.UUID) {
	_, _ = tx.Exec(`DELETE FROM packet_fts WHERE packet_id = ?`, packetID.String())
}

// Search performs an FTS5 full-text search over section and capture text.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT f.packet_id,
		       p.title,
		       f.kind,
		       f.ref_id,
		       f.title,
		       snippet(packet_fts, 4, '<b>', '</b>', '...', 64)
		FROM packet_fts f
		JOIN packets p ON p.id = f.packet_id
		WHERE packet_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()

	return collectSearchResults(rows)
}
