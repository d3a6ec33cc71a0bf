package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"bucketlist/internal/httputil"
)

// Recovery turns a panic in a handler into a 500 problem response. The log
// entry names the actor and the item being touched so the failing intent
// can be replayed.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("handler panicked",
					"panic", rec,
					"method", r.Method,
					"route", r.Pattern,
					"item_id", r.PathValue("id"),
					"comment_id", r.PathValue("cid"),
					"actor", httputil.GetActor(r).Email,
					"stack", string(debug.Stack()),
				)
				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
