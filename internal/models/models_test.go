package models

import (
	"testing"
	"time"
)

func TestSetStatus_CompletedAtSetOnce(t *testing.T) {
	item := NewChecklistItem("Read chapter 1", "p. 3", 0)
	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	item.SetStatus(StatusCompleted, t0)
	if item.CompletedAt == nil || !item.CompletedAt.Equal(t0) {
		t.Fatalf("completedAt = %v, want %v", item.CompletedAt, t0)
	}

	// Completing again must not move the timestamp.
	t1 := t0.Add(time.Hour)
	item.SetStatus(StatusCompleted, t1)
	if !item.CompletedAt.Equal(t0) {
		t.Errorf("completedAt moved to %v, want %v", item.CompletedAt, t0)
	}
	if !item.ModifiedAt.Equal(t1) {
		t.Errorf("modifiedAt = %v, want %v", item.ModifiedAt, t1)
	}
}

func TestSetStatus_LeavingCompletedClearsTimestamp(t *testing.T) {
	item := NewChecklistItem("Outline the argument", "", 1)
	t0 := time.Now()

	item.SetStatus(StatusCompleted, t0)
	item.SetStatus(StatusInProgress, t0.Add(time.Minute))
	if item.CompletedAt != nil {
		t.Errorf("completedAt = %v, want nil after leaving completed", item.CompletedAt)
	}

	// Re-completing sets a fresh timestamp.
	t2 := t0.Add(2 * time.Minute)
	item.SetStatus(StatusCompleted, t2)
	if item.CompletedAt == nil || !item.CompletedAt.Equal(t2) {
		t.Errorf("completedAt = %v, want %v", item.CompletedAt, t2)
	}
}

func TestPacket_Progress(t *testing.T) {
	p := NewPacket("Mesoamerica", "", "meso.pdf")
	if got := p.Progress(); got != 0 {
		t.Fatalf("empty packet progress = %v, want 0", got)
	}

	now := time.Now()
	for i := 0; i < 4; i++ {
		p.ChecklistItems = append(p.ChecklistItems, NewChecklistItem("task", "", i))
	}
	p.ChecklistItems[0].SetStatus(StatusCompleted, now)
	p.ChecklistItems[1].SetStatus(StatusCompleted, now)

	if got := p.Progress(); got != 0.5 {
		t.Errorf("progress = %v, want 0.5", got)
	}
	if p.IsCompleted() {
		t.Error("packet should not be completed at 2/4")
	}

	p.ChecklistItems[2].SetStatus(StatusCompleted, now)
	p.ChecklistItems[3].SetStatus(StatusSkipped, now)
	if p.IsCompleted() {
		t.Error("skipped item should block completion")
	}

	p.ChecklistItems[3].SetStatus(StatusCompleted, now)
	if !p.IsCompleted() {
		t.Error("all completed should report completed")
	}
	if got := p.Progress(); got != 1 {
		t.Errorf("progress = %v, want 1", got)
	}
}

func TestPacket_ToggleDoesNotAffectOtherItems(t *testing.T) {
	p := NewPacket("doc", "", "")
	now := time.Now()
	p.ChecklistItems = append(p.ChecklistItems,
		NewChecklistItem("a", "", 0),
		NewChecklistItem("b", "", 1),
	)
	p.ChecklistItems[0].SetStatus(StatusCompleted, now)
	other := *p.ChecklistItems[0].CompletedAt

	p.ChecklistItems[1].SetStatus(StatusCompleted, now.Add(time.Second))
	p.ChecklistItems[1].SetStatus(StatusPending, now.Add(2*time.Second))
	p.ChecklistItems[1].SetStatus(StatusCompleted, now.Add(3*time.Second))

	if !p.ChecklistItems[0].CompletedAt.Equal(other) {
		t.Error("toggling item b changed item a's completedAt")
	}
	if got := p.Progress(); got < 0 || got > 1 {
		t.Errorf("progress out of range: %v", got)
	}
}

func TestCapture_Defaults(t *testing.T) {
	c := NewCapture(CaptureVoice, "", "")
	if c.Title != "Voice Note" {
		t.Errorf("title = %q, want default voice title", c.Title)
	}

	c.AttachTranscript("hello world", 0.92)
	if c.Content != "hello world" {
		t.Errorf("content = %q, want transcript to fill empty content", c.Content)
	}

	c2 := NewCapture(CaptureText, "My note", "body")
	c2.AttachTranscript("ignored", 0.5)
	if c2.Content != "body" {
		t.Errorf("content = %q, transcript must not overwrite content", c2.Content)
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []ItemStatus{StatusPending, StatusInProgress, StatusCompleted, StatusBlocked, StatusSkipped} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false", s)
		}
	}
	if ValidStatus("done") {
		t.Error(`ValidStatus("done") = true, want false`)
	}
}
