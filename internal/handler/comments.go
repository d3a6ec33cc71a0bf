package handler

import (
	"log/slog"
	"mime"
	"net/http"

	models "bucketlist/internal/domain/models/bucketlist"
	svc "bucketlist/internal/domain/services/bucketlist"
	"bucketlist/internal/httputil"
)

// CommentHandler handles comment HTTP requests
type CommentHandler struct {
	sessions SessionProvider
	logger   *slog.Logger
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(sessions SessionProvider, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// Add appends a comment to an item. The body is either JSON {text} or a
// multipart form with a text field and an optional photo file.
// POST /api/items/{id}/comments
func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("id")
	session := h.sessions.Session(httputil.GetActor(r))

	var req svc.AddCommentRequest
	if isMultipart(r) {
		upload, closeUpload, err := readUpload(w, r, false)
		if err != nil {
			respondUploadError(w, err)
			return
		}
		defer closeUpload()

		req.Text = r.FormValue("text")
		if upload != nil {
			photo, err := session.UploadPhoto(r.Context(), upload)
			if err != nil {
				handleError(w, err)
				return
			}
			req.Photo = photo
		}
	} else {
		var body svc.EditCommentRequest
		if err := httputil.ParseJSON(w, r, &body); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		req.Text = body.Text
	}

	comment, views, err := session.AddComment(r.Context(), itemID, &req)
	if err != nil {
		if req.Photo != nil {
			h.logger.Warn("comment not saved, uploaded photo is orphaned",
				"item_id", itemID,
				"file_ref", req.Photo.FileRef,
			)
		}
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, struct {
		Comment *models.Comment   `json:"comment"`
		Items   []models.ItemView `json:"items"`
	}{Comment: comment, Items: views})
}

// Edit changes a comment's text
// PATCH /api/items/{id}/comments/{cid}
func (h *CommentHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req svc.EditCommentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session := h.sessions.Session(httputil.GetActor(r))
	views, err := session.EditComment(r.Context(), r.PathValue("id"), r.PathValue("cid"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, listResponse{Items: views})
}

// Remove deletes a comment
// DELETE /api/items/{id}/comments/{cid}
func (h *CommentHandler) Remove(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Session(httputil.GetActor(r))
	views, err := session.RemoveComment(r.Context(), r.PathValue("id"), r.PathValue("cid"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, listResponse{Items: views})
}

// AttachPhoto uploads a photo and sets it on a comment
// POST /api/items/{id}/comments/{cid}/photo
func (h *CommentHandler) AttachPhoto(w http.ResponseWriter, r *http.Request) {
	upload, closeUpload, err := readUpload(w, r, true)
	if err != nil {
		respondUploadError(w, err)
		return
	}
	defer closeUpload()

	session := h.sessions.Session(httputil.GetActor(r))
	views, err := session.UploadCommentPhoto(r.Context(), r.PathValue("id"), r.PathValue("cid"), upload)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, listResponse{Items: views})
}

// DetachPhoto clears a comment's photo. The comment stays even if it is
// left with no text.
// DELETE /api/items/{id}/comments/{cid}/photo
func (h *CommentHandler) DetachPhoto(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Session(httputil.GetActor(r))
	views, err := session.DetachCommentPhoto(r.Context(), r.PathValue("id"), r.PathValue("cid"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, listResponse{Items: views})
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}
