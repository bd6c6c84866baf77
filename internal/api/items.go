package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

// AddItem handles POST /api/packets/{id}/items.
//
//	@Summary		Append a checklist item to a packet
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Packet ID"
//	@Param			body	body		AddItemRequest	true	"Item to append"
//	@Success		201		{object}	models.ChecklistItem
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/packets/{id}/items [post]
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	packetID, err := urlID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid packet id"))
		return
	}
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	item := models.NewChecklistItem(req.Title, req.PageReference, 0)
	if err := h.store.AddChecklistItem(packetID, &item); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("add item failed", slog.String("packet", packetID.String()), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.publishItem(packetID, item.ID)
	writeJSON(w, http.StatusCreated, item)
}

// itemUpdate runs one store mutation and writes the standard item response.
func (h *Handler) itemUpdate(w http.ResponseWriter, r *http.Request,
	update func(id uuid.UUID) (*models.ChecklistItem, uuid.UUID, error)) {
	id, err := urlID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid item id"))
		return
	}
	item, packetID, err := update(id)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		default:
			slog.Error("item update failed", slog.String("id", id.String()), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.publishItem(packetID, item.ID)
	writeJSON(w, http.StatusOK, item)
}

// SetItemStatus handles PATCH /api/items/{id}/status.
//
//	@Summary		Change a checklist item's status
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Item ID"
//	@Param			body	body		SetStatusRequest	true	"New status"
//	@Success		200		{object}	models.ChecklistItem
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{id}/status [patch]
func (h *Handler) SetItemStatus(w http.ResponseWriter, r *http.Request) {
	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	h.itemUpdate(w, r, func(id uuid.UUID) (*models.ChecklistItem, uuid.UUID, error) {
		return h.store.UpdateItemStatus(id, req.Status, time.Now())
	})
}

// SetItemNotes handles PUT /api/items/{id}/notes.
//
//	@Summary		Replace a checklist item's notes
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Item ID"
//	@Param			body	body		SetTextRequest	true	"Notes text"
//	@Success		200		{object}	models.ChecklistItem
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{id}/notes [put]
func (h *Handler) SetItemNotes(w http.ResponseWriter, r *http.Request) {
	var req SetTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	h.itemUpdate(w, r, func(id uuid.UUID) (*models.ChecklistItem, uuid.UUID, error) {
		return h.store.UpdateItemNotes(id, req.Text, time.Now())
	})
}

// SetItemReflection handles PUT /api/items/{id}/reflection.
//
//	@Summary		Replace a checklist item's reflection
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Item ID"
//	@Param			body	body		SetTextRequest	true	"Reflection text"
//	@Success		200		{object}	models.ChecklistItem
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{id}/reflection [put]
func (h *Handler) SetItemReflection(w http.ResponseWriter, r *http.Request) {
	var req SetTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	h.itemUpdate(w, r, func(id uuid.UUID) (*models.ChecklistItem, uuid.UUID, error) {
		return h.store.UpdateItemReflection(id, req.Text, time.Now())
	})
}
