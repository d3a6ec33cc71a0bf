package handler

import (
	"log/slog"
	"net/http"

	models "bucketlist/internal/domain/models/bucketlist"
	svc "bucketlist/internal/domain/services/bucketlist"
	"bucketlist/internal/httputil"
	"bucketlist/internal/service/bucketlist"
)

// SessionProvider hands out the session for the signed-in actor
type SessionProvider interface {
	Session(actor models.Actor) *bucketlist.Session
}

// listResponse is the projected list returned after every intent
type listResponse struct {
	Items []models.ItemView `json:"items"`
}

// ItemHandler handles bucket list item HTTP requests
type ItemHandler struct {
	sessions SessionProvider
	logger   *slog.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(sessions SessionProvider, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// List returns the projected list, refreshed from the store
// GET /api/items
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Session(httputil.GetActor(r))
	views, err := session.List(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, listResponse{Items: views})
}

// Create adds a new item authored by the signed-in actor
// POST /api/items
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req svc.CreateItemRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session := h.sessions.Session(httputil.GetActor(r))
	id, views, err := session.AddItem(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, struct {
		ID    string            `json:"id"`
		Items []models.ItemView `json:"items"`
	}{ID: id, Items: views})
}

// updateItemBody is a merge-patch: an absent field keeps the current value
type updateItemBody struct {
	Title       httputil.OptionalString `json:"title"`
	Description httputil.OptionalString `json:"description"`
}

// Update changes an item's title and description
// PATCH /api/items/{id}
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var body updateItemBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Title.IsNull() || body.Description.IsNull() {
		httputil.RespondError(w, http.StatusBadRequest, "title and description cannot be null")
		return
	}

	session := h.sessions.Session(httputil.GetActor(r))
	views, err := session.List(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	req := &svc.UpdateItemRequest{}
	for _, v := range views {
		if v.ID == id {
			req.Title = v.Title
			req.Description = v.Description
			break
		}
	}
	req.Title = body.Title.Or(req.Title)
	req.Description = body.Description.Or(req.Description)

	views, err = session.EditItem(r.Context(), id, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, listResponse{Items: views})
}

// Delete removes an item and its comments
// DELETE /api/items/{id}
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Session(httputil.GetActor(r))
	views, err := session.DeleteItem(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, listResponse{Items: views})
}

// Complete marks an item done
// POST /api/items/{id}/complete
func (h *ItemHandler) Complete(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Session(httputil.GetActor(r))
	views, err := session.CompleteItem(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, listResponse{Items: views})
}

// Reopen undoes completion and clears the item's photo
// DELETE /api/items/{id}/complete
func (h *ItemHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Session(httputil.GetActor(r))
	views, err := session.UndoComplete(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, listResponse{Items: views})
}

// AttachPhoto uploads a photo and sets it on the item, replacing any previous one
// POST /api/items/{id}/photo
func (h *ItemHandler) AttachPhoto(w http.ResponseWriter, r *http.Request) {
	upload, closeUpload, err := readUpload(w, r, true)
	if err != nil {
		respondUploadError(w, err)
		return
	}
	defer closeUpload()

	session := h.sessions.Session(httputil.GetActor(r))
	views, err := session.UploadItemPhoto(r.Context(), r.PathValue("id"), upload)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, listResponse{Items: views})
}

// SetPhoto attaches a photo the caller uploaded earlier via /api/uploads
// PUT /api/items/{id}/photo
func (h *ItemHandler) SetPhoto(w http.ResponseWriter, r *http.Request) {
	var photo models.Photo
	if err := httputil.ParseJSON(w, r, &photo); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	session := h.sessions.Session(httputil.GetActor(r))
	views, err := session.AttachItemPhoto(r.Context(), r.PathValue("id"), &photo)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, listResponse{Items: views})
}

// DetachPhoto removes the item's photo
// DELETE /api/items/{id}/photo
func (h *ItemHandler) DetachPhoto(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Session(httputil.GetActor(r))
	views, err := session.DetachItemPhoto(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, listResponse{Items: views})
}
