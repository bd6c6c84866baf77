package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/store"
)

// AddCapture handles POST /api/packets/{id}/captures.
//
//	@Summary		Record a capture under a packet
//	@Tags			captures
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Packet ID"
//	@Param			body	body		AddCaptureRequest	true	"Capture to record"
//	@Success		201		{object}	models.Capture
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/packets/{id}/captures [post]
func (h *Handler) AddCapture(w http.ResponseWriter, r *http.Request) {
	packetID, err := urlID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid packet id"))
		return
	}
	var req AddCaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	capture := models.NewCapture(req.Type, req.Title, req.Content)
	if err := h.store.AddCapture(packetID, &capture); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("add capture failed", slog.String("packet", packetID.String()), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.publishPacket("capture.created", packetID)
	writeJSON(w, http.StatusCreated, capture)
}

// linkChange applies LinkCapture or UnlinkCapture from the route ids.
func (h *Handler) linkChange(w http.ResponseWriter, r *http.Request, link bool) {
	captureID, err := urlID(r, "captureID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid capture id"))
		return
	}
	itemID, err := urlID(r, "itemID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid item id"))
		return
	}

	if link {
		err = h.store.LinkCapture(captureID, itemID)
	} else {
		err = h.store.UnlinkCapture(captureID, itemID)
	}
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("capture link change failed", slog.String("capture", captureID.String()), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LinkCapture handles POST /api/captures/{captureID}/links/{itemID}.
//
//	@Summary		Link a capture to a checklist item (idempotent)
//	@Tags			captures
//	@Param			captureID	path	string	true	"Capture ID"
//	@Param			itemID		path	string	true	"Item ID"
//	@Success		204			"Linked"
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/captures/{captureID}/links/{itemID} [post]
func (h *Handler) LinkCapture(w http.ResponseWriter, r *http.Request) {
	h.linkChange(w, r, true)
}

// UnlinkCapture handles DELETE /api/captures/{captureID}/links/{itemID}.
//
//	@Summary		Remove a capture-item link (idempotent)
//	@Tags			captures
//	@Param			captureID	path	string	true	"Capture ID"
//	@Param			itemID		path	string	true	"Item ID"
//	@Success		204			"Unlinked"
//	@Security		BearerAuth
//	@Router			/captures/{captureID}/links/{itemID} [delete]
func (h *Handler) UnlinkCapture(w http.ResponseWriter, r *http.Request) {
	h.linkChange(w, r, false)
}

// AttachTranscript handles POST /api/captures/{captureID}/transcript.
//
//	@Summary		Attach a transcription result to a capture
//	@Tags			captures
//	@Accept			json
//	@Produce		json
//	@Param			captureID	path		string				true	"Capture ID"
//	@Param			body		body		TranscriptRequest	true	"Transcription result"
//	@Success		200			{object}	models.Capture
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/captures/{captureID}/transcript [post]
func (h *Handler) AttachTranscript(w http.ResponseWriter, r *http.Request) {
	captureID, err := urlID(r, "captureID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid capture id"))
		return
	}
	var req TranscriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	capture, packetID, err := h.store.AttachTranscript(captureID, req.Transcript, req.Confidence)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("attach transcript failed", slog.String("capture", captureID.String()), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.publishPacket("capture.updated", packetID)
	writeJSON(w, http.StatusOK, capture)
}

// RecentCaptures handles GET /api/captures/recent.
//
//	@Summary		List the newest captures across all packets
//	@Tags			captures
//	@Produce		json
//	@Param			limit	query		int	false	"Max results"
//	@Success		200		{object}	map[string][]store.CaptureRow
//	@Security		BearerAuth
//	@Router			/captures/recent [get]
func (h *Handler) RecentCaptures(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := h.store.RecentCaptures(limit)
	if err != nil {
		slog.Error("recent captures failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if rows == nil {
		rows = []store.CaptureRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"captures": rows})
}
