// Package models defines the domain types for Ansuz: packets, sections,
// checklist items, and captures.
package models

import (
	"time"

	"github.com/google/uuid"
)

// SectionType classifies a packet section.
type SectionType string

const (
	SectionHeading SectionType = "heading"
	SectionContent SectionType = "content"
	SectionFigure  SectionType = "figure"
	SectionCode    SectionType = "code"
	SectionQuote   SectionType = "quote"
	SectionList    SectionType = "list"
	SectionTask    SectionType = "task"
)

// Section is a titled content block derived from document text.
// Sections are immutable once created; Order is assigned by the producer.
type Section struct {
	ID            uuid.UUID   `json:"id"`
	Title         string      `json:"title"`
	Content       string      `json:"content"`
	PageReference string      `json:"page_reference,omitempty"`
	Type          SectionType `json:"section_type"`
	Order         int         `json:"order"`
	CreatedAt     time.Time   `json:"created_at"`
}

// NewSection creates a section with a fresh ID.
func NewSection(title, content, pageRef string, typ SectionType, order int) Section {
	return Section{
		ID:            uuid.New(),
		Title:         title,
		Content:       content,
		PageReference: pageRef,
		Type:          typ,
		Order:         order,
		CreatedAt:     time.Now(),
	}
}
