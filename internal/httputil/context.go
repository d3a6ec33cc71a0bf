package httputil

import (
	"context"
	"net/http"

	models "bucketlist/internal/domain/models/bucketlist"
)

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey contextKey = "userID"
	actorKey  contextKey = "actor"
)

// WithIdentity adds the verified user ID and actor to the request context
func WithIdentity(r *http.Request, userID string, actor models.Actor) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	ctx = context.WithValue(ctx, actorKey, actor)
	return r.WithContext(ctx)
}

// GetUserID retrieves userID from context, returns empty string if not found
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// GetActor retrieves the current user, or the zero Actor when signed out
func GetActor(r *http.Request) models.Actor {
	actor, _ := r.Context().Value(actorKey).(models.Actor)
	return actor
}
