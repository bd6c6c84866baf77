package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/starford/ansuz/internal/models"
)

// PacketStore defines the interface for packet persistence operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type PacketStore interface {
	CreatePacket(p *models.Packet) error
	GetPacket(id uuid.UUID) (*models.Packet, error)
	ListPackets(includeArchived bool) ([]PacketSummary, error)
	SetArchived(id uuid.UUID, archived bool, now time.Time) error
	DeletePacket(id uuid.UUID) error
	SourceExists(checksum string) (bool, error)

	AddChecklistItem(packetID uuid.UUID, item *models.ChecklistItem) error
	UpdateItemStatus(id uuid.UUID, status models.ItemStatus, now time.Time) (*models.ChecklistItem, uuid.UUID, error)
	UpdateItemNotes(id uuid.UUID, notes string, now time.Time) (*models.ChecklistItem, uuid.UUID, error)
	UpdateItemReflection(id uuid.UUID, reflection string, now time.Time) (*models.ChecklistItem, uuid.UUID, error)

	AddCapture(packetID uuid.UUID, c *models.Capture) error
	AttachTranscript(captureID uuid.UUID, transcript string, confidence float64) (*models.Capture, uuid.UUID, error)
	LinkCapture(captureID, itemID uuid.UUID) error
	UnlinkCapture(captureID, itemID uuid.UUID) error
	CaptureLinks(packetID uuid.UUID) ([]CaptureLink, error)
	RecentCaptures(limit int) ([]CaptureRow, error)

	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies PacketStore at compile time.
var _ PacketStore = (*DB)(nil)

// PacketSummary is a listing row: packet header plus checklist counts, so
// list views can show progress without loading children.
type PacketSummary struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"created_at"`
	ModifiedAt     time.Time `json:"modified_at"`
	IsArchived     bool      `json:"is_archived"`
	ItemCount      int       `json:"item_count"`
	CompletedCount int       `json:"completed_count"`
}

// Progress is the completed fraction of the summary's checklist, 0 when empty.
func (s PacketSummary) Progress() float64 {
	if s.ItemCount == 0 {
		return 0
	}
	return float64(s.CompletedCount) / float64(s.ItemCount)
}

// CaptureLink is one capture-to-item association.
type CaptureLink struct {
	CaptureID uuid.UUID `json:"capture_id"`
	ItemID    uuid.UUID `json:"item_id"`
}

// CaptureRow is a capture together with its owning packet.
type CaptureRow struct {
	PacketID uuid.UUID      `json:"packet_id"`
	Capture  models.Capture `json:"capture"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	PacketID    uuid.UUID `json:"packet_id"`
	PacketTitle string    `json:"packet_title"`
	Kind        string    `json:"kind"` // "section" or "capture"
	RefID       uuid.UUID `json:"ref_id"`
	Title       string    `json:"title"`
	Snippet     string    `json:"snippet"`
}
