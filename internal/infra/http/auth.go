package http

import (
	"context"
	"net/http"
	"strings"
)

// UserIDHeader is set by the platform gateway after it authenticates the
// session. This service trusts the gateway and only checks presence.
const UserIDHeader = "X-User-ID"

type ctxKey int

const userIDKey ctxKey = iota

// UserAuthMiddleware extracts the user ID header and stores it in the
// request context. Requests without it are rejected.
func UserAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
			if userID == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"missing user identity"}`))
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the authenticated user ID, or "" when the
// middleware did not run.
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}
