package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

// CreatePacket inserts a packet with all of its children in one transaction.
func (db *DB) CreatePacket(p *models.Packet) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO packets (id, title, source_path, original_filename, source_checksum, created_at, modified_at, is_archived)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID.String(), p.Title, p.SourcePath, p.OriginalFilename, p.SourceChecksum, p.CreatedAt, p.ModifiedAt, p.IsArchived)
	if err != nil {
		return fmt.Errorf("store: insert packet: %w", err)
	}

	if len(p.Sections) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO sections (id, packet_id, title, content, page_reference, section_type, position, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("store: prepare section insert: %w", err)
		}
		defer stmt.Close()
		for _, s := range p.Sections {
			if _, err := stmt.Exec(s.ID.String(), p.ID.String(), s.Title, s.Content, s.PageReference, string(s.Type), s.Order, s.CreatedAt); err != nil {
				return fmt.Errorf("store: insert section: %w", err)
			}
			if err := ftsUpsert(tx, p.ID, "section", s.ID, s.Title, s.Content); err != nil {
				return err
			}
		}
	}

	for _, item := range p.ChecklistItems {
		if err := insertItem(tx, p.ID, item); err != nil {
			return err
		}
	}

	for _, c := range p.Captures {
		if err := insertCapture(tx, p.ID, c); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertItem(tx *sql.Tx, packetID uuid.UUID, item models.ChecklistItem) error {
	var completed any
	if item.CompletedAt != nil {
		completed = *item.CompletedAt
	}
	_, err := tx.Exec(`
		INSERT INTO checklist_items (id, packet_id, title, status, page_reference, notes, reflection, position, created_at, modified_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID.String(), packetID.String(), item.Title, string(item.Status), item.PageReference,
		item.Notes, item.Reflection, item.Order, item.CreatedAt, item.ModifiedAt, completed)
	if err != nil {
		return fmt.Errorf("store: insert item: %w", err)
	}
	return nil
}

func insertCapture(tx *sql.Tx, packetID uuid.UUID, c models.Capture) error {
	_, err := tx.Exec(`
		INSERT INTO captures (id, packet_id, type, title, content, transcript, summary, asset_path, timestamp, duration, confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID.String(), packetID.String(), string(c.Type), c.Title, c.Content, c.Transcript, c.Summary,
		c.AssetPath, c.Timestamp, c.Duration, c.Confidence)
	if err != nil {
		return fmt.Errorf("store: insert capture: %w", err)
	}
	return ftsUpsert(tx, packetID, "capture", c.ID, c.Title, c.Content+" "+c.Transcript)
}

// GetPacket loads a packet with its sections, checklist items, and captures.
func (db *DB) GetPacket(id uuid.UUID) (*models.Packet, error) {
	p := &models.Packet{}
	var idStr string
	err := db.conn.QueryRow(`
		SELECT id, title, source_path, original_filename, source_checksum, created_at, modified_at, is_archived
		FROM packets WHERE id = ?
	`, id.String()).Scan(&idStr, &p.Title, &p.SourcePath, &p.OriginalFilename, &p.SourceChecksum,
		&p.CreatedAt, &p.ModifiedAt, &p.IsArchived)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: packet %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get packet: %w", err)
	}
	p.ID, _ = uuid.Parse(idStr)

	if p.Sections, err = db.packetSections(id); err != nil {
		return nil, err
	}
	if p.ChecklistItems, err = db.packetItems(id); err != nil {
		return nil, err
	}
	if p.Captures, err = db.packetCaptures(id); err != nil {
		return nil, err
	}
	return p, nil
}

func (db *DB) packetSections(packetID uuid.UUID) ([]models.Section, error) {
	rows, err := db.conn.Query(`
		SELECT id, title, content, page_reference, section_type, position, created_at
		FROM sections WHERE packet_id = ? ORDER BY position, created_at
	`, packetID.String())
	if err != nil {
		return nil, fmt.Errorf("store: packet sections: %w", err)
	}
	defer rows.Close()

	var out []models.Section
	for rows.Next() {
		var s models.Section
		var idStr, typ string
		if err := rows.Scan(&idStr, &s.Title, &s.Content, &s.PageReference, &typ, &s.Order, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.ID, _ = uuid.Parse(idStr)
		s.Type = models.SectionType(typ)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (db *DB) packetItems(packetID uuid.UUID) ([]models.ChecklistItem, error) {
	rows, err := db.conn.Query(`
		SELECT id, title, status, page_reference, notes, reflection, position, created_at, modified_at, completed_at
		FROM checklist_items WHERE packet_id = ? ORDER BY position, created_at
	`, packetID.String())
	if err != nil {
		return nil, fmt.Errorf("store: packet items: %w", err)
	}
	defer rows.Close()

	var out []models.ChecklistItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(r rowScanner) (*models.ChecklistItem, error) {
	var item models.ChecklistItem
	var idStr, status string
	var completed sql.NullTime
	if err := r.Scan(&idStr, &item.Title, &status, &item.PageReference, &item.Notes,
		&item.Reflection, &item.Order, &item.CreatedAt, &item.ModifiedAt, &completed); err != nil {
		return nil, err
	}
	item.ID, _ = uuid.Parse(idStr)
	item.Status = models.ItemStatus(status)
	if completed.Valid {
		t := completed.Time
		item.CompletedAt = &t
	}
	return &item, nil
}

func (db *DB) packetCaptures(packetID uuid.UUID) ([]models.Capture, error) {
	rows, err := db.conn.Query(`
		SELECT id, type, title, content, transcript, summary, asset_path, timestamp, duration, confidence
		FROM captures WHERE packet_id = ? ORDER BY timestamp
	`, packetID.String())
	if err != nil {
		return nil, fmt.Errorf("store: packet captures: %w", err)
	}
	defer rows.Close()

	var out []models.Capture
	for rows.Next() {
		var c models.Capture
		var idStr, typ string
		if err := rows.Scan(&idStr, &typ, &c.Title, &c.Content, &c.Transcript, &c.Summary,
			&c.AssetPath, &c.Timestamp, &c.Duration, &c.Confidence); err != nil {
			return nil, err
		}
		c.ID, _ = uuid.Parse(idStr)
		c.Type = models.CaptureType(typ)
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListPackets returns packet summaries newest-first. Archived packets are
// excluded unless includeArchived is set.
func (db *DB) ListPackets(includeArchived bool) ([]PacketSummary, error) {
	where := `WHERE p.is_archived = 0`
	if includeArchived {
		where = ``
	}
	rows, err := db.conn.Query(`
		SELECT p.id, p.title, p.created_at, p.modified_at, p.is_archived,
		       COUNT(i.id),
		       COALESCE(SUM(CASE WHEN i.status = 'completed' THEN 1 ELSE 0 END), 0)
		FROM packets p
		LEFT JOIN checklist_items i ON i.packet_id = p.id
		` + where + `
		GROUP BY p.id
		ORDER BY p.modified_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list packets: %w", err)
	}
	defer rows.Close()

	var out []PacketSummary
	for rows.Next() {
		var s PacketSummary
		var idStr string
		if err := rows.Scan(&idStr, &s.Title, &s.CreatedAt, &s.ModifiedAt, &s.IsArchived,
			&s.ItemCount, &s.CompletedCount); err != nil {
			return nil, err
		}
		s.ID, _ = uuid.Parse(idStr)
		out = append(out, s)
	}
	return out, rows.Err()
}

// SetArchived flips the packet's archive flag.
func (db *DB) SetArchived(id uuid.UUID, archived bool, now time.Time) error {
	res, err := db.conn.Exec(`UPDATE packets SET is_archived = ?, modified_at = ? WHERE id = ?`,
		archived, now, id.String())
	if err != nil {
		return fmt.Errorf("store: set archived: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: packet %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// DeletePacket removes a packet, its children, and search entries.
func (db *DB) DeletePacket(id uuid.UUID) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDeletePacket(tx, id)
	res, err := tx.Exec(`DELETE FROM packets WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("store: delete packet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: packet %s: %w", id, apperr.ErrNotFound)
	}
	return tx.Commit()
}

// SourceExists reports whether a packet with the given source checksum exists.
func (db *DB) SourceExists(checksum string) (bool, error) {
	if checksum == "" {
		return false, nil
	}
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(1) FROM packets WHERE source_checksum = ?`, checksum).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("store: source exists: %w", err)
	}
	return n > 0, nil
}

// AddChecklistItem appends an item to the packet's checklist. The item's
// position is assigned from the current checklist length.
func (db *DB) AddChecklistItem(packetID uuid.UUID, item *models.ChecklistItem) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var count int
	err = tx.QueryRow(`SELECT COUNT(1) FROM checklist_items WHERE packet_id = ?`, packetID.String()).Scan(&count)
	if err != nil {
		return fmt.Errorf("store: count items: %w", err)
	}
	item.Order = count

	if err := insertItem(tx, packetID, *item); err != nil {
		return err
	}
	if err := touchPacket(tx, packetID, item.ModifiedAt); err != nil {
		return err
	}
	return tx.Commit()
}

func touchPacket(tx *sql.Tx, packetID uuid.UUID, now time.Time) error {
	res, err := tx.Exec(`UPDATE packets SET modified_at = ? WHERE id = ?`, now, packetID.String())
	if err != nil {
		return fmt.Errorf("store: touch packet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: packet %s: %w", packetID, apperr.ErrNotFound)
	}
	return nil
}

// updateItem loads an item inside a transaction, applies mutate, and persists
// the result. The read-modify-write stays inside one transaction so the
// completed-at transition cannot race a concurrent status change.
func (db *DB) updateItem(id uuid.UUID, now time.Time, mutate func(*models.ChecklistItem)) (*models.ChecklistItem, uuid.UUID, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var packetIDStr string
	if err := tx.QueryRow(`SELECT packet_id FROM checklist_items WHERE id = ?`, id.String()).Scan(&packetIDStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, uuid.Nil, fmt.Errorf("store: item %s: %w", id, apperr.ErrNotFound)
		}
		return nil, uuid.Nil, fmt.Errorf("store: get item owner: %w", err)
	}
	packetID, _ := uuid.Parse(packetIDStr)

	item, err := scanItem(tx.QueryRow(`
		SELECT id, title, status, page_reference, notes, reflection, position, created_at, modified_at, completed_at
		FROM checklist_items WHERE id = ?
	`, id.String()))
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("store: get item: %w", err)
	}

	mutate(item)

	var completed any
	if item.CompletedAt != nil {
		completed = *item.CompletedAt
	}
	_, err = tx.Exec(`
		UPDATE checklist_items
		SET status = ?, notes = ?, reflection = ?, modified_at = ?, completed_at = ?
		WHERE id = ?
	`, string(item.Status), item.Notes, item.Reflection, item.ModifiedAt, completed, id.String())
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("store: update item: %w", err)
	}
	if err := touchPacket(tx, packetID, now); err != nil {
		return nil, uuid.Nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, uuid.Nil, err
	}
	return item, packetID, nil
}

// UpdateItemStatus transitions an item's status. The completed-at invariant is
// enforced by the model inside the update transaction.
func (db *DB) UpdateItemStatus(id uuid.UUID, status models.ItemStatus, now time.Time) (*models.ChecklistItem, uuid.UUID, error) {
	if !models.ValidStatus(status) {
		return nil, uuid.Nil, fmt.Errorf("store: status %q: %w", status, apperr.ErrInvalidInput)
	}
	return db.updateItem(id, now, func(item *models.ChecklistItem) {
		item.SetStatus(status, now)
	})
}

// UpdateItemNotes replaces an item's notes.
func (db *DB) UpdateItemNotes(id uuid.UUID, notes string, now time.Time) (*models.ChecklistItem, uuid.UUID, error) {
	return db.updateItem(id, now, func(item *models.ChecklistItem) {
		item.SetNotes(notes, now)
	})
}

// UpdateItemReflection replaces an item's reflection.
func (db *DB) UpdateItemReflection(id uuid.UUID, reflection string, now time.Time) (*models.ChecklistItem, uuid.UUID, error) {
	return db.updateItem(id, now, func(item *models.ChecklistItem) {
		item.SetReflection(reflection, now)
	})
}

// AddCapture records a capture under the packet.
func (db *DB) AddCapture(packetID uuid.UUID, c *models.Capture) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := insertCapture(tx, packetID, *c); err != nil {
		return err
	}
	if err := touchPacket(tx, packetID, c.Timestamp); err != nil {
		return err
	}
	return tx.Commit()
}

// AttachTranscript stores a transcription result on an existing capture.
func (db *DB) AttachTranscript(captureID uuid.UUID, transcript string, confidence float64) (*models.Capture, uuid.UUID, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var c models.Capture
	var idStr, typ, packetIDStr string
	err = tx.QueryRow(`
		SELECT id, packet_id, type, title, content, transcript, summary, asset_path, timestamp, duration, confidence
		FROM captures WHERE id = ?
	`, captureID.String()).Scan(&idStr, &packetIDStr, &typ, &c.Title, &c.Content, &c.Transcript,
		&c.Summary, &c.AssetPath, &c.Timestamp, &c.Duration, &c.Confidence)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, uuid.Nil, fmt.Errorf("store: capture %s: %w", captureID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("store: get capture: %w", err)
	}
	c.ID, _ = uuid.Parse(idStr)
	c.Type = models.CaptureType(typ)
	packetID, _ := uuid.Parse(packetIDStr)

	c.AttachTranscript(transcript, confidence)

	_, err = tx.Exec(`UPDATE captures SET content = ?, transcript = ?, confidence = ? WHERE id = ?`,
		c.Content, c.Transcript, c.Confidence, captureID.String())
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("store: update capture: %w", err)
	}
	if err := ftsUpsert(tx, packetID, "capture", c.ID, c.Title, c.Content+" "+c.Transcript); err != nil {
		return nil, uuid.Nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, uuid.Nil, err
	}
	return &c, packetID, nil
}

// LinkCapture associates a capture with a checklist item. Linking the same
// pair twice is a no-op.
func (db *DB) LinkCapture(captureID, itemID uuid.UUID) error {
	if err := db.requireRow(`SELECT 1 FROM captures WHERE id = ?`, captureID); err != nil {
		return err
	}
	if err := db.requireRow(`SELECT 1 FROM checklist_items WHERE id = ?`, itemID); err != nil {
		return err
	}
	_, err := db.conn.Exec(`INSERT OR IGNORE INTO item_captures (capture_id, item_id) VALUES (?, ?)`,
		captureID.String(), itemID.String())
	if err != nil {
		return fmt.Errorf("store: link capture: %w", err)
	}
	return nil
}

// UnlinkCapture removes a capture-item association. Unlinking a pair that is
// not linked is a no-op.
func (db *DB) UnlinkCapture(captureID, itemID uuid.UUID) error {
	_, err := db.conn.Exec(`DELETE FROM item_captures WHERE capture_id = ? AND item_id = ?`,
		captureID.String(), itemID.String())
	if err != nil {
		return fmt.Errorf("store: unlink capture: %w", err)
	}
	return nil
}

func (db *DB) requireRow(query string, id uuid.UUID) error {
	var one int
	err := db.conn.QueryRow(query, id.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("store: %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("store: lookup: %w", err)
	}
	return nil
}

// CaptureLinks returns all capture-item associations within a packet.
func (db *DB) CaptureLinks(packetID uuid.UUID) ([]CaptureLink, error) {
	rows, err := db.conn.Query(`
		SELECT ic.capture_id, ic.item_id
		FROM item_captures ic
		JOIN captures c ON c.id = ic.capture_id
		WHERE c.packet_id = ?
	`, packetID.String())
	if err != nil {
		return nil, fmt.Errorf("store: capture links: %w", err)
	}
	defer rows.Close()

	var out []CaptureLink
	for rows.Next() {
		var captureStr, itemStr string
		if err := rows.Scan(&captureStr, &itemStr); err != nil {
			return nil, err
		}
		var link CaptureLink
		link.CaptureID, _ = uuid.Parse(captureStr)
		link.ItemID, _ = uuid.Parse(itemStr)
		out = append(out, link)
	}
	return out, rows.Err()
}

// collectSearchResults scans search rows shared by both FTS variants.
func collectSearchResults(rows *sql.Rows) ([]SearchResult, error) {
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var packetStr, refStr string
		if err := rows.Scan(&packetStr, &r.PacketTitle, &r.Kind, &refStr, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		r.PacketID, _ = uuid.Parse(packetStr)
		r.RefID, _ = uuid.Parse(refStr)
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecentCaptures returns the newest captures across all packets.
func (db *DB) RecentCaptures(limit int) ([]CaptureRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT packet_id, id, type, title, content, transcript, summary, asset_path, timestamp, duration, confidence
		FROM captures
		ORDER BY timestamp DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: recent captures: %w", err)
	}
	defer rows.Close()

	var out []CaptureRow
	for rows.Next() {
		var r CaptureRow
		var packetStr, idStr, typ string
		if err := rows.Scan(&packetStr, &idStr, &typ, &r.Capture.Title, &r.Capture.Content,
			&r.Capture.Transcript, &r.Capture.Summary, &r.Capture.AssetPath, &r.Capture.Timestamp,
			&r.Capture.Duration, &r.Capture.Confidence); err != nil {
			return nil, err
		}
		r.PacketID, _ = uuid.Parse(packetStr)
		r.Capture.ID, _ = uuid.Parse(idStr)
		r.Capture.Type = models.CaptureType(typ)
		out = append(out, r)
	}
	return out, rows.Err()
}
