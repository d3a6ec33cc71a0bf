package handler

import (
	"net/http"

	"bucketlist/internal/httputil"
)

// SubscriberCounter reports how many clients are listening for changes
type SubscriberCounter interface {
	Subscribers() int
}

// Health reports liveness and the number of open change streams
// GET /health
func Health(feed SubscriberCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"subscribers": feed.Subscribers(),
		})
	}
}
