// Package importer turns a PDF on disk into a persisted study packet:
// extract, segment, analyze, plan, store.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/ansuz/internal/analysis"
	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/extract"
	"github.com/starford/ansuz/internal/library"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/planner"
	"github.com/starford/ansuz/internal/segment"
	"github.com/starford/ansuz/internal/store"
)

// Mode selects how checklist content is produced.
type Mode string

const (
	// ModeAuto runs the analysis backend chain and builds the plan from its
	// output.
	ModeAuto Mode = "auto"
	// ModeStructural skips analysis and derives the checklist from the
	// segmenter output alone.
	ModeStructural Mode = "structural"
)

// Analyzer is the slice of the backend router the importer needs.
type Analyzer interface {
	Analyze(ctx context.Context, content, originalTitle string) (*analysis.DocumentAnalysis, error)
}

// NotifyFunc receives import lifecycle events ("packet.imported").
type NotifyFunc func(kind string, packetID uuid.UUID)

// Service orchestrates a single document import.
type Service struct {
	store    store.PacketStore
	library  *library.Library
	analyzer Analyzer
	mode     Mode
	logger   *slog.Logger
	notify   NotifyFunc

	// extractFn is swappable for tests; defaults to extract.Pages.
	extractFn func(path string) ([]string, error)
}

// New creates an import service. analyzer may be nil, which forces
// structural mode.
func New(st store.PacketStore, lib *library.Library, analyzer Analyzer, mode Mode, logger *slog.Logger) *Service {
	if analyzer == nil {
		mode = ModeStructural
	} else if mode != ModeStructural {
		mode = ModeAuto
	}
	return &Service{
		store:     st,
		library:   lib,
		analyzer:  analyzer,
		mode:      mode,
		logger:    logger,
		extractFn: extract.Pages,
	}
}

// SetNotify registers a callback invoked after each successful import.
func (s *Service) SetNotify(fn NotifyFunc) { s.notify = fn }

// SetExtractor replaces the page extractor. Tests use this to avoid needing
// real PDF fixtures.
func (s *Service) SetExtractor(fn func(path string) ([]string, error)) { s.extractFn = fn }

// Import runs the full pipeline for the PDF at path and returns the
// persisted packet.
func (s *Service) Import(ctx context.Context, path string) (*models.Packet, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, fmt.Errorf("importer: %s is not a pdf: %w", filepath.Base(path), apperr.ErrInvalidInput)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("importer: read source: %w: %w", err, apperr.ErrInvalidInput)
	}
	sum := checksum.Sum(data)

	exists, err := s.store.SourceExists(sum)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("importer: %s already imported: %w", filepath.Base(path), apperr.ErrAlreadyExists)
	}

	pages, err := s.extractFn(path)
	if err != nil {
		return nil, fmt.Errorf("importer: %w: %w", err, apperr.ErrExtractionFailed)
	}
	if !hasText(pages) {
		return nil, fmt.Errorf("importer: no readable text in %s: %w", filepath.Base(path), apperr.ErrExtractionFailed)
	}

	filename := filepath.Base(path)
	defaultTitle := strings.TrimSuffix(filename, filepath.Ext(filename))
	sections := segment.Document(pages)

	var packet *models.Packet
	if s.mode == ModeAuto {
		packet, err = s.buildAnalyzed(ctx, pages, defaultTitle)
		if err != nil {
			return nil, err
		}
	} else {
		packet = models.NewPacket(defaultTitle, "", filename)
		packet.Sections = sections
		packet.ChecklistItems = planner.BuildStructural(sections)
	}
	packet.OriginalFilename = filename
	packet.SourceChecksum = sum

	rel, err := s.library.StoreDocument(path, packet.ID)
	if err != nil {
		return nil, err
	}
	packet.SourcePath = rel

	if err := s.store.CreatePacket(packet); err != nil {
		return nil, err
	}

	s.logger.Info("importer: packet created",
		slog.String("id", packet.ID.String()),
		slog.String("title", packet.Title),
		slog.Int("sections", len(packet.Sections)),
		slog.Int("items", len(packet.ChecklistItems)))

	if s.notify != nil {
		s.notify("packet.imported", packet.ID)
	}
	return packet, nil
}

// buildAnalyzed runs the backend chain and materializes its output.
func (s *Service) buildAnalyzed(ctx context.Context, pages []string, defaultTitle string) (*models.Packet, error) {
	content := strings.Join(pages, "\n\n")
	result, err := s.analyzer.Analyze(ctx, content, defaultTitle)
	if err != nil {
		return nil, err
	}

	plan := planner.Build(result)
	title := plan.Title
	if title == "" {
		title = defaultTitle
	}

	packet := models.NewPacket(title, "", "")
	packet.Sections = plan.Sections
	packet.ChecklistItems = plan.ChecklistItems
	return packet, nil
}

func hasText(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}
