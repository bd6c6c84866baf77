package models

import (
	"time"

	"github.com/google/uuid"
)

// CaptureType classifies a piece of freeform study evidence.
type CaptureType string

const (
	CaptureVoice      CaptureType = "voice"
	CaptureScreenClip CaptureType = "screen_clip"
	CaptureBrainstorm CaptureType = "brainstorm"
	CaptureText       CaptureType = "text"
	CaptureImage      CaptureType = "image"
)

// ValidCaptureType reports whether t is a known capture type.
func ValidCaptureType(t CaptureType) bool {
	switch t {
	case CaptureVoice, CaptureScreenClip, CaptureBrainstorm, CaptureText, CaptureImage:
		return true
	}
	return false
}

// DefaultTitle returns the display title used when a capture is created
// without one.
func (t CaptureType) DefaultTitle() string {
	switch t {
	case CaptureVoice:
		return "Voice Note"
	case CaptureScreenClip:
		return "Screen Clip"
	case CaptureBrainstorm:
		return "Brainstorm Session"
	case CaptureImage:
		return "Image"
	default:
		return "Text Note"
	}
}

// Capture is freeform evidence (note, transcript, clip) recorded after the
// fact. Links to checklist items are id-based and held by the store, not by
// the capture itself.
type Capture struct {
	ID         uuid.UUID   `json:"id"`
	Type       CaptureType `json:"type"`
	Title      string      `json:"title"`
	Content    string      `json:"content"`
	Transcript string      `json:"transcript,omitempty"`
	Summary    string      `json:"summary,omitempty"`
	AssetPath  string      `json:"asset_path,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Duration   float64     `json:"duration,omitempty"`
	Confidence float64     `json:"confidence,omitempty"`
}

// NewCapture creates a capture, falling back to the type's default title.
func NewCapture(typ CaptureType, title, content string) Capture {
	if title == "" {
		title = typ.DefaultTitle()
	}
	return Capture{
		ID:        uuid.New(),
		Type:      typ,
		Title:     title,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// AttachTranscript records a transcription result. When the capture has no
// content yet, the transcript doubles as content.
func (c *Capture) AttachTranscript(transcript string, confidence float64) {
	c.Transcript = transcript
	c.Confidence = confidence
	if c.Content == "" {
		c.Content = transcript
	}
}
