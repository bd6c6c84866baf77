package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Packets.
	r.Post("/packets/import", h.ImportPacket)
	r.Get("/packets", h.ListPackets)
	r.Get("/packets/{id}", h.GetPacket)
	r.Delete("/packets/{id}", h.DeletePacket)
	r.Post("/packets/{id}/archive", h.SetArchived(true))
	r.Post("/packets/{id}/unarchive", h.SetArchived(false))

	// Checklist items.
	r.Post("/packets/{id}/items", h.AddItem)
	r.Patch("/items/{id}/status", h.SetItemStatus)
	r.Put("/items/{id}/notes", h.SetItemNotes)
	r.Put("/items/{id}/reflection", h.SetItemReflection)

	// Captures.
	r.Post("/packets/{id}/captures", h.AddCapture)
	r.Post("/packets/{id}/assets", h.UploadAsset)
	r.Post("/captures/{captureID}/links/{itemID}", h.LinkCapture)
	r.Delete("/captures/{captureID}/links/{itemID}", h.UnlinkCapture)
	r.Post("/captures/{captureID}/transcript", h.AttachTranscript)
	r.Get("/captures/recent", h.RecentCaptures)

	// Search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
