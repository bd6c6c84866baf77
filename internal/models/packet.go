package models

import (
	"time"

	"github.com/google/uuid"
)

// Packet is the top-level study unit produced from one imported document.
// Sections and the initial checklist are created in one batch at import time;
// later items are appended with monotonically increasing order.
type Packet struct {
	ID               uuid.UUID       `json:"id"`
	Title            string          `json:"title"`
	SourcePath       string          `json:"source_path,omitempty"`
	OriginalFilename string          `json:"original_filename,omitempty"`
	SourceChecksum   string          `json:"source_checksum,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	ModifiedAt       time.Time       `json:"modified_at"`
	IsArchived       bool            `json:"is_archived"`
	Sections         []Section       `json:"sections"`
	ChecklistItems   []ChecklistItem `json:"checklist_items"`
	Captures         []Capture       `json:"captures"`
}

// NewPacket creates an empty packet.
func NewPacket(title, sourcePath, originalFilename string) *Packet {
	now := time.Now()
	return &Packet{
		ID:               uuid.New(),
		Title:            title,
		SourcePath:       sourcePath,
		OriginalFilename: originalFilename,
		CreatedAt:        now,
		ModifiedAt:       now,
	}
}

// Progress is the completed fraction of checklist items, 0 when empty.
func (p *Packet) Progress() float64 {
	if len(p.ChecklistItems) == 0 {
		return 0
	}
	completed := 0
	for _, item := range p.ChecklistItems {
		if item.Status == StatusCompleted {
			completed++
		}
	}
	return float64(completed) / float64(len(p.ChecklistItems))
}

// IsCompleted reports whether the packet has items and all are completed.
func (p *Packet) IsCompleted() bool {
	if len(p.ChecklistItems) == 0 {
		return false
	}
	for _, item := range p.ChecklistItems {
		if item.Status != StatusCompleted {
			return false
		}
	}
	return true
}

// Touch bumps the packet's modification time.
func (p *Packet) Touch(now time.Time) {
	p.ModifiedAt = now
}

// Item returns a pointer to the checklist item with the given ID, or nil.
func (p *Packet) Item(id uuid.UUID) *ChecklistItem {
	for idx := range p.ChecklistItems {
		if p.ChecklistItems[idx].ID == id {
			return &p.ChecklistItems[idx]
		}
	}
	return nil
}
