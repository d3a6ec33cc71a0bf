package handler

import (
	"log/slog"
	"net/http"

	models "bucketlist/internal/domain/models/bucketlist"
	"bucketlist/internal/httputil"
)

// SessionDropper forgets the cached session for an email
type SessionDropper interface {
	Drop(email string) bool
}

// SessionHandler exposes the signed-in identity and sign-out
type SessionHandler struct {
	sessions SessionDropper
	logger   *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions SessionDropper, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// Get returns the actor the request is authenticated as
// GET /api/session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor := httputil.GetActor(r)
	if !actor.Authenticated() {
		httputil.RespondError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, struct {
		UserID string       `json:"user_id"`
		Actor  models.Actor `json:"actor"`
	}{UserID: httputil.GetUserID(r), Actor: actor})
}

// Delete drops the server-side session so the next request starts from
// an empty cache
// DELETE /api/session
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := httputil.GetActor(r)
	if !actor.Authenticated() {
		httputil.RespondError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	if h.sessions.Drop(actor.Email) {
		h.logger.Info("session dropped", "actor", actor.Email)
	}
	w.WriteHeader(http.StatusNoContent)
}
