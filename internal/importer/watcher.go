package importer

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/ansuz/internal/apperr"
)

// settleDelay is how long a file must stay quiet before the watcher imports
// it. PDFs dropped into the inbox are often written in several chunks.
const settleDelay = 500 * time.Millisecond

// Watch imports PDFs dropped into inboxDir until ctx is cancelled. Files
// already present at startup are imported first. Duplicate drops are skipped
// via the checksum index, so a re-fired event for an imported file is
// harmless.
func Watch(ctx context.Context, svc *Service, inboxDir string, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(inboxDir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("inbox", inboxDir))

	importExisting(ctx, svc, inboxDir, logger)

	// Per-file settle timers funnel into one channel so all imports run on
	// this goroutine.
	ready := make(chan string)
	timers := make(map[string]*time.Timer)

	schedule := func(path string) {
		if t, ok := timers[path]; ok {
			t.Reset(settleDelay)
			return
		}
		timers[path] = time.AfterFunc(settleDelay, func() {
			select {
			case ready <- path:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			for _, t := range timers {
				t.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case path := <-ready:
			delete(timers, path)
			importOne(ctx, svc, path, logger)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), ".pdf") {
				continue
			}
			schedule(ev.Name)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// importExisting picks up PDFs already sitting in the inbox at startup.
func importExisting(ctx context.Context, svc *Service, inboxDir string, logger *slog.Logger) {
	_ = filepath.WalkDir(inboxDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}
		importOne(ctx, svc, path, logger)
		return nil
	})
}

func importOne(ctx context.Context, svc *Service, path string, logger *slog.Logger) {
	packet, err := svc.Import(ctx, path)
	switch {
	case errors.Is(err, apperr.ErrAlreadyExists):
		logger.Debug("watcher: already imported", slog.String("path", path))
	case err != nil:
		logger.Warn("watcher: import failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
	default:
		logger.Info("watcher: imported",
			slog.String("path", path),
			slog.String("packet", packet.ID.String()))
	}
}
