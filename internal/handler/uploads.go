package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"bucketlist/internal/config"
	svc "bucketlist/internal/domain/services/bucketlist"
	"bucketlist/internal/httputil"
)

const (
	// photoField is the multipart field carrying the image
	photoField = "photo"

	// multipartOverhead covers boundaries and text fields around the file
	multipartOverhead = 1 << 20

	// multipartMemory is how much of a form is held in memory before
	// spilling to temporary files
	multipartMemory = 4 << 20
)

var (
	errNoPhoto      = errors.New("a photo file is required")
	errBadMultipart = errors.New("invalid multipart form")
)

// parseMultipart parses a multipart body capped slightly above the upload limit
func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return tooLarge
		}
		return fmt.Errorf("%w: %v", errBadMultipart, err)
	}
	return nil
}

// formUpload extracts the photo part of a parsed form. With required false
// a missing file yields a nil request.
func formUpload(r *http.Request, required bool) (*svc.UploadRequest, func(), error) {
	file, header, err := r.FormFile(photoField)
	if errors.Is(err, http.ErrMissingFile) {
		if required {
			return nil, func() {}, errNoPhoto
		}
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, fmt.Errorf("%w: %v", errBadMultipart, err)
	}

	upload := &svc.UploadRequest{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
	return upload, func() { file.Close() }, nil
}

// readUpload parses the form and returns its photo part
func readUpload(w http.ResponseWriter, r *http.Request, required bool) (*svc.UploadRequest, func(), error) {
	if err := parseMultipart(w, r); err != nil {
		return nil, func() {}, err
	}
	return formUpload(r, required)
}

// respondUploadError maps multipart parsing failures to HTTP responses
func respondUploadError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		httputil.RespondError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("photo exceeds %d MB", config.MaxUploadBytes>>20))
	case errors.Is(err, errNoPhoto):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errBadMultipart):
		httputil.RespondError(w, http.StatusBadRequest, "Invalid multipart form")
	default:
		handleError(w, err)
	}
}

// UploadHandler handles uploads of photos not yet attached to anything
type UploadHandler struct {
	sessions SessionProvider
	logger   *slog.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(sessions SessionProvider, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// Upload stores a photo and returns the pending reference. The client
// submits it with a new item.
// POST /api/uploads
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	upload, closeUpload, err := readUpload(w, r, true)
	if err != nil {
		respondUploadError(w, err)
		return
	}
	defer closeUpload()

	session := h.sessions.Session(httputil.GetActor(r))
	photo, err := session.UploadPhoto(r.Context(), upload)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Debug("pending photo uploaded",
		"file_ref", photo.FileRef,
		"uploaded_by", photo.UploadedBy,
	)
	httputil.RespondJSON(w, http.StatusCreated, photo)
}
