package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

const maxUploadBytes = 50 << 20 // 50 MB

// UploadAsset handles POST /api/packets/{id}/assets (multipart/form-data,
// field "file"). The uploaded file is stored in the packet's library asset
// directory and recorded as a capture; form fields "type" and "title"
// override the capture defaults.
//
//	@Summary		Upload a capture asset (screen clip, image, audio)
//	@Tags			captures
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		string	true	"Packet ID"
//	@Param			file	formData	file	true	"Asset file"
//	@Param			type	formData	string	false	"Capture type"	Enums(voice, screen_clip, image)
//	@Param			title	formData	string	false	"Capture title"
//	@Success		201		{object}	models.Capture
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/packets/{id}/assets [post]
func (h *Handler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	packetID, err := urlID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid packet id"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	typ := models.CaptureType(r.FormValue("type"))
	if typ == "" {
		typ = models.CaptureImage
	}
	if !models.ValidCaptureType(typ) {
		writeJSON(w, http.StatusBadRequest, errorBody("unknown capture type"))
		return
	}

	rel, err := h.library.StoreAsset(packetID, header.Filename, file)
	if err != nil {
		slog.Error("asset store failed", slog.String("packet", packetID.String()), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to store asset"))
		return
	}

	capture := models.NewCapture(typ, r.FormValue("title"), "")
	capture.AssetPath = rel
	if err := h.store.AddCapture(packetID, &capture); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("asset capture failed", slog.String("packet", packetID.String()), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.publishPacket("capture.created", packetID)
	writeJSON(w, http.StatusCreated, capture)
}
