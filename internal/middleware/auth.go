package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"bucketlist/internal/auth"
	"bucketlist/internal/httputil"
)

// tokenQueryParam carries the token for clients that cannot set headers (EventSource)
const tokenQueryParam = "access_token"

// AuthMiddleware verifies the bearer token and stores the identity in the
// request context. A request without a token proceeds signed out, so the
// list stays readable; an invalid token is rejected.
func AuthMiddleware(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("rejected token",
					"path", r.URL.Path,
					"error", err,
				)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, httputil.WithIdentity(r, claims.GetUserID(), claims.Actor()))
		})
	}
}

// bearerToken reads the Authorization header, falling back to the query
// parameter on GET requests only
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if r.Method == http.MethodGet {
		return r.URL.Query().Get(tokenQueryParam)
	}
	return ""
}
