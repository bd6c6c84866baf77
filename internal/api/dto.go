package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/store"
)

// ImportRequest is the request body for importing a document.
type ImportRequest struct {
	Path string `json:"path" example:"/inbox/lecture.pdf" validate:"required"`
}

// Validate implements request validation.
func (r ImportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Path, validation.Required),
	)
}

// AddItemRequest is the request body for appending a checklist item.
type AddItemRequest struct {
	Title         string `json:"title" example:"Re-read section 3" validate:"required"`
	PageReference string `json:"pageReference,omitempty" example:"p. 3"`
}

// Validate implements request validation.
func (r AddItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 500)),
	)
}

// SetStatusRequest is the request body for an item status change.
type SetStatusRequest struct {
	Status models.ItemStatus `json:"status" example:"completed" validate:"required"`
}

// Validate implements request validation.
func (r SetStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.In(
			models.StatusPending, models.StatusInProgress, models.StatusCompleted,
			models.StatusBlocked, models.StatusSkipped)),
	)
}

// SetTextRequest is the request body for notes and reflection updates.
type SetTextRequest struct {
	Text string `json:"text" example:"Key insight: tribute flows shaped the empire"`
}

// AddCaptureRequest is the request body for recording a capture.
type AddCaptureRequest struct {
	Type    models.CaptureType `json:"type" example:"text" validate:"required"`
	Title   string             `json:"title,omitempty" example:"Voice Note"`
	Content string             `json:"content,omitempty" example:"remember to compare with the Maya calendar"`
}

// Validate implements request validation.
func (r AddCaptureRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required, validation.In(
			models.CaptureVoice, models.CaptureScreenClip, models.CaptureBrainstorm,
			models.CaptureText, models.CaptureImage)),
	)
}

// TranscriptRequest is the request body for attaching a transcription result.
type TranscriptRequest struct {
	Transcript string  `json:"transcript" validate:"required"`
	Confidence float64 `json:"confidence,omitempty" example:"0.92"`
}

// Validate implements request validation.
func (r TranscriptRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Transcript, validation.Required),
	)
}

// PacketDetail is the full packet response: the domain aggregate plus derived
// progress and capture-item links.
type PacketDetail struct {
	*models.Packet
	Progress     float64             `json:"progress"`
	CaptureLinks []store.CaptureLink `json:"capture_links"`
}

// PacketListResponse wraps packet listings.
type PacketListResponse struct {
	Packets []store.PacketSummary `json:"packets" validate:"required"`
	Total   int                   `json:"total" example:"4" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []store.SearchResult `json:"results" validate:"required"`
}
