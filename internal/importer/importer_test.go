package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/starford/ansuz/internal/analysis"
	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/library"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/store"
)

type stubAnalyzer struct {
	result       *analysis.DocumentAnalysis
	err          error
	gotContent   string
	gotOrigTitle string
}

func (s *stubAnalyzer) Analyze(_ context.Context, content, originalTitle string) (*analysis.DocumentAnalysis, error) {
	s.gotContent = content
	s.gotOrigTitle = originalTitle
	return s.result, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// testService wires a Service against a real store and library with a fake
// page extractor.
func testService(t *testing.T, analyzer Analyzer, mode Mode, pages []string) (*Service, *store.DB) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	lib, err := library.New(filepath.Join(t.TempDir(), "library"))
	if err != nil {
		t.Fatal(err)
	}

	svc := New(db, lib, analyzer, mode, testLogger())
	svc.extractFn = func(string) ([]string, error) { return pages, nil }
	return svc, db
}

func writePDF(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImport_RejectsNonPDF(t *testing.T) {
	svc, _ := testService(t, nil, ModeStructural, nil)
	path := writePDF(t, "notes.txt", "plain")

	_, err := svc.Import(context.Background(), path)
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestImport_MissingFile(t *testing.T) {
	svc, _ := testService(t, nil, ModeStructural, nil)

	_, err := svc.Import(context.Background(), filepath.Join(t.TempDir(), "gone.pdf"))
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestImport_NoReadableText(t *testing.T) {
	svc, _ := testService(t, nil, ModeStructural, []string{"", "  \n "})
	path := writePDF(t, "scanned.pdf", "fake pdf bytes")

	_, err := svc.Import(context.Background(), path)
	if !errors.Is(err, apperr.ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
}

func TestImport_DuplicateChecksum(t *testing.T) {
	svc, _ := testService(t, nil, ModeStructural, []string{"1. Introduction\nsome text"})
	first := writePDF(t, "a.pdf", "identical bytes")
	second := writePDF(t, "b.pdf", "identical bytes")

	if _, err := svc.Import(context.Background(), first); err != nil {
		t.Fatalf("first import: %v", err)
	}
	_, err := svc.Import(context.Background(), second)
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestImport_StructuralMode(t *testing.T) {
	pages := []string{
		"1. Introduction\nBackground prose here.",
		"2. Methods\nMore prose.",
	}
	svc, db := testService(t, nil, ModeStructural, pages)
	path := writePDF(t, "paper.pdf", "fake pdf bytes")

	packet, err := svc.Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if packet.Title != "paper" {
		t.Errorf("title = %q, want filename stem", packet.Title)
	}
	if packet.OriginalFilename != "paper.pdf" || packet.SourceChecksum == "" {
		t.Errorf("packet = %+v", packet)
	}
	if len(packet.Sections) == 0 {
		t.Error("no sections produced")
	}
	last := packet.ChecklistItems[len(packet.ChecklistItems)-1]
	if last.Title != "Review and summarize key findings" {
		t.Errorf("closing item = %q", last.Title)
	}

	// Persisted and source copied into the library.
	got, err := db.GetPacket(packet.ID)
	if err != nil {
		t.Fatalf("GetPacket: %v", err)
	}
	if got.SourcePath == "" {
		t.Error("SourcePath not set")
	}
}

func TestImport_AutoMode(t *testing.T) {
	stub := &stubAnalyzer{result: &analysis.DocumentAnalysis{
		Title:   "Mesoamerican Civilizations",
		Summary: "A short summary.",
		StudyTasks: []analysis.StudyTask{
			{Title: "Review tribute system", TaskType: analysis.TaskReview},
		},
	}}
	svc, db := testService(t, stub, ModeAuto, []string{"page one", "page two"})
	path := writePDF(t, "meso.pdf", "fake pdf bytes")

	packet, err := svc.Import(context.Background(), path)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if packet.Title != "Mesoamerican Civilizations" {
		t.Errorf("title = %q, want analysis title", packet.Title)
	}
	if stub.gotContent != "page one\n\npage two" {
		t.Errorf("analyzer content = %q", stub.gotContent)
	}
	if stub.gotOrigTitle != "meso" {
		t.Errorf("analyzer originalTitle = %q", stub.gotOrigTitle)
	}
	if len(packet.ChecklistItems) != 1 || packet.ChecklistItems[0].Title != "Review tribute system" {
		t.Errorf("items = %+v", packet.ChecklistItems)
	}
	if _, err := db.GetPacket(packet.ID); err != nil {
		t.Errorf("GetPacket: %v", err)
	}
}

func TestImport_AnalyzerErrorPropagates(t *testing.T) {
	stub := &stubAnalyzer{err: apperr.ErrServiceUnavailable}
	svc, _ := testService(t, stub, ModeAuto, []string{"some text"})
	path := writePDF(t, "doc.pdf", "fake pdf bytes")

	_, err := svc.Import(context.Background(), path)
	if !errors.Is(err, apperr.ErrServiceUnavailable) {
		t.Fatalf("err = %v, want ErrServiceUnavailable", err)
	}
}

func TestImport_NilAnalyzerForcesStructural(t *testing.T) {
	svc, _ := testService(t, nil, ModeAuto, []string{"1. Intro\ntext"})
	if svc.mode != ModeStructural {
		t.Errorf("mode = %q, want structural when analyzer is nil", svc.mode)
	}
}

func TestImport_Notify(t *testing.T) {
	svc, _ := testService(t, nil, ModeStructural, []string{"some text"})
	path := writePDF(t, "doc.pdf", "fake pdf bytes")

	var gotKind string
	var gotID uuid.UUID
	svc.SetNotify(func(kind string, id uuid.UUID) {
		gotKind, gotID = kind, id
	})

	packet, err := svc.Import(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if gotKind != "packet.imported" || gotID != packet.ID {
		t.Errorf("notify = %q %s", gotKind, gotID)
	}
}

func TestImport_FallbackTitleWhenAnalysisBlank(t *testing.T) {
	stub := &stubAnalyzer{result: &analysis.DocumentAnalysis{
		Summary:    "untitled output",
		MainTopics: []analysis.Topic{{Name: "Something", Description: "d"}},
	}}
	svc, _ := testService(t, stub, ModeAuto, []string{"some text"})
	path := writePDF(t, "untitled.pdf", "fake pdf bytes")

	packet, err := svc.Import(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if packet.Title != "untitled" {
		t.Errorf("title = %q, want filename stem fallback", packet.Title)
	}
	if packet.ChecklistItems[0].Status != models.StatusPending {
		t.Errorf("new item status = %q", packet.ChecklistItems[0].Status)
	}
}
