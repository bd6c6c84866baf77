package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/importer"
	"github.com/starford/ansuz/internal/library"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/store"
)

// Handler holds API route handlers.
type Handler struct {
	store    store.PacketStore
	importer *importer.Service
	library  *library.Library
	broker   *sse.Broker // may be nil
}

// NewHandler creates a new Handler. broker may be nil to disable events.
func NewHandler(st store.PacketStore, imp *importer.Service, lib *library.Library, broker *sse.Broker) *Handler {
	return &Handler{store: st, importer: imp, library: lib, broker: broker}
}

// urlID parses the named UUID route parameter.
func urlID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

func (h *Handler) publishPacket(kind string, id uuid.UUID) {
	if h.broker != nil {
		h.broker.PublishPacketEvent(kind, id)
	}
}

// publishItem emits item.updated plus a throttled progress event for the
// owning packet.
func (h *Handler) publishItem(packetID, itemID uuid.UUID) {
	if h.broker == nil {
		return
	}
	progress := 0.0
	if p, err := h.store.GetPacket(packetID); err == nil {
		progress = p.Progress()
	}
	h.broker.PublishItemEvent(packetID, itemID, progress)
}

// ImportPacket handles POST /api/packets/import.
//
//	@Summary		Import a PDF and build its study packet
//	@Tags			packets
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ImportRequest	true	"Document to import"
//	@Success		201		{object}	PacketDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/packets/import [post]
func (h *Handler) ImportPacket(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	packet, err := h.importer.Import(r.Context(), req.Path)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		case errors.Is(err, apperr.ErrAlreadyExists):
			writeJSON(w, http.StatusConflict, errorBody("document already imported"))
		case errors.Is(err, apperr.ErrExtractionFailed):
			writeJSON(w, http.StatusUnprocessableEntity, errorBody("no readable text in document"))
		case errors.Is(err, apperr.ErrServiceUnavailable):
			writeJSON(w, http.StatusServiceUnavailable, errorBody("no analysis backend available"))
		default:
			slog.Error("import failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, h.detail(packet.ID))
}

// detail reloads a packet into its full response shape.
func (h *Handler) detail(id uuid.UUID) *PacketDetail {
	p, err := h.store.GetPacket(id)
	if err != nil {
		return nil
	}
	links, _ := h.store.CaptureLinks(id)
	if links == nil {
		links = []store.CaptureLink{}
	}
	return &PacketDetail{Packet: p, Progress: p.Progress(), CaptureLinks: links}
}

// ListPackets handles GET /api/packets.
//
//	@Summary		List packets with checklist progress
//	@Tags			packets
//	@Produce		json
//	@Param			archived	query		bool	false	"Include archived packets"
//	@Success		200			{object}	PacketListResponse
//	@Security		BearerAuth
//	@Router			/packets [get]
func (h *Handler) ListPackets(w http.ResponseWriter, r *http.Request) {
	includeArchived, _ := strconv.ParseBool(r.URL.Query().Get("archived"))

	packets, err := h.store.ListPackets(includeArchived)
	if err != nil {
		slog.Error("list packets failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if packets == nil {
		packets = []store.PacketSummary{}
	}
	writeJSON(w, http.StatusOK, PacketListResponse{Packets: packets, Total: len(packets)})
}

// GetPacket handles GET /api/packets/{id}.
//
//	@Summary		Get a packet with sections, checklist, and captures
//	@Tags			packets
//	@Produce		json
//	@Param			id	path		string	true	"Packet ID"
//	@Success		200	{object}	PacketDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/packets/{id} [get]
func (h *Handler) GetPacket(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid packet id"))
		return
	}
	p, err := h.store.GetPacket(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get packet failed", slog.String("id", id.String()), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	links, _ := h.store.CaptureLinks(id)
	if links == nil {
		links = []store.CaptureLink{}
	}
	writeJSON(w, http.StatusOK, PacketDetail{Packet: p, Progress: p.Progress(), CaptureLinks: links})
}

// DeletePacket handles DELETE /api/packets/{id}.
//
//	@Summary		Delete a packet and its library files
//	@Tags			packets
//	@Param			id	path	string	true	"Packet ID"
//	@Success		204	"Packet deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/packets/{id} [delete]
func (h *Handler) DeletePacket(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid packet id"))
		return
	}
	if err := h.store.DeletePacket(id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("delete packet failed", slog.String("id", id.String()), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	if h.library != nil {
		if err := h.library.RemovePacket(id); err != nil {
			slog.Warn("library cleanup failed", slog.String("id", id.String()), slog.String("error", err.Error()))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetArchived handles POST /api/packets/{id}/archive and /unarchive.
func (h *Handler) SetArchived(archived bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlID(r, "id")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid packet id"))
			return
		}
		if err := h.store.SetArchived(id, archived, time.Now()); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, errorBody("not found"))
			} else {
				slog.Error("archive packet failed", slog.String("id", id.String()), slog.String("error", err.Error()))
				writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
			}
			return
		}
		if archived {
			h.publishPacket("packet.archived", id)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across sections and captures
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.store.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []store.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
