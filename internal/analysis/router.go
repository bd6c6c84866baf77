package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/ansuz/internal/apperr"
)

// Router tries backends in priority order; the first available backend that
// succeeds wins. There are no retries within a backend and no merging of
// partial results across backends.
type Router struct {
	backends []Backend
	logger   *slog.Logger
}

// NewRouter creates a router over the given backends, in priority order.
func NewRouter(logger *slog.Logger, backends ...Backend) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{backends: backends, logger: logger}
}

// Analyze runs the fallback chain. Backend-local failures are logged and
// converted into "try next backend"; only total exhaustion surfaces
// apperr.ErrServiceUnavailable.
func (r *Router) Analyze(ctx context.Context, content, title string) (*DocumentAnalysis, error) {
	for _, b := range r.backends {
		if !b.Available() {
			r.logger.Debug("backend unavailable, skipping", slog.String("backend", b.Name()))
			continue
		}

		result, err := b.Analyze(ctx, content, title)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logger.Warn("backend failed, trying next",
				slog.String("backend", b.Name()),
				slog.String("error", err.Error()))
			continue
		}

		r.logger.Info("document analysis completed", slog.String("backend", b.Name()))
		return result, nil
	}

	return nil, fmt.Errorf("all analysis backends exhausted: %w", apperr.ErrServiceUnavailable)
}
