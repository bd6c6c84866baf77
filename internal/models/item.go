package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemStatus is the lifecycle state of a checklist item.
type ItemStatus string

const (
	StatusPending    ItemStatus = "pending"
	StatusInProgress ItemStatus = "in_progress"
	StatusCompleted  ItemStatus = "completed"
	StatusBlocked    ItemStatus = "blocked"
	StatusSkipped    ItemStatus = "skipped"
)

// ValidStatus reports whether s is a known checklist status.
func ValidStatus(s ItemStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusBlocked, StatusSkipped:
		return true
	}
	return false
}

// ChecklistItem is one actionable, stateful study task within a packet.
type ChecklistItem struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Status        ItemStatus `json:"status"`
	PageReference string     `json:"page_reference,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	Reflection    string     `json:"reflection,omitempty"`
	Order         int        `json:"order"`
	CreatedAt     time.Time  `json:"created_at"`
	ModifiedAt    time.Time  `json:"modified_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// NewChecklistItem creates a pending item with a fresh ID.
func NewChecklistItem(title, pageRef string, order int) ChecklistItem {
	now := time.Now()
	return ChecklistItem{
		ID:            uuid.New(),
		Title:         title,
		Status:        StatusPending,
		PageReference: pageRef,
		Order:         order,
		CreatedAt:     now,
		ModifiedAt:    now,
	}
}

// SetStatus transitions the item and maintains CompletedAt: entering
// completed sets it once, leaving completed clears it. ModifiedAt is
// bumped on every call.
func (i *ChecklistItem) SetStatus(status ItemStatus, now time.Time) {
	i.Status = status
	i.ModifiedAt = now

	if status == StatusCompleted {
		if i.CompletedAt == nil {
			t := now
			i.CompletedAt = &t
		}
	} else {
		i.CompletedAt = nil
	}
}

// SetNotes replaces the item's notes.
func (i *ChecklistItem) SetNotes(notes string, now time.Time) {
	i.Notes = notes
	i.ModifiedAt = now
}

// SetReflection replaces the item's reflection.
func (i *ChecklistItem) SetReflection(reflection string, now time.Time) {
	i.Reflection = reflection
	i.ModifiedAt = now
}
