package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates the target document vanished or never existed
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input caught before any remote call
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates the actor does not own the resource
	ForbiddenError struct {
		Message string
	}

	// UploadError indicates a size, type or service failure while uploading an image
	UploadError struct {
		Message string
	}

	// RemoteError indicates a collaborator (store, image host) failed or timed out
	RemoteError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }
func (e *UploadError) Error() string       { return e.Message }
func (e *RemoteError) Error() string       { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }
func (e *UploadError) StatusCode() int       { return http.StatusBadRequest }
func (e *RemoteError) StatusCode() int       { return http.StatusServiceUnavailable }

// Is lets errors.Is match typed errors against their sentinels
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }
func (e *UploadError) Is(target error) bool       { return target == ErrUpload }
func (e *RemoteError) Is(target error) bool       { return target == ErrRemote }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrUpload       = errors.New("upload failed")
	ErrRemote       = errors.New("remote service failure")

	// ErrRevisionConflict is returned by a revision-checked write when the
	// document changed after it was read.
	ErrRevisionConflict = errors.New("document changed since it was read")
)

// ConflictError represents a write rejected because the stored document
// moved on. Implements HTTPError interface.
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (item, comment)
	ResourceID   string // ID of the conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict and ErrRevisionConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict || target == ErrRevisionConflict
}
