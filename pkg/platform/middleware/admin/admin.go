// Package admin guards the /admin surface with a shared static token.
package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	request "refurb/pkg/platform/middleware/request"
	"refurb/pkg/requestcontext"
)

const (
	// HeaderAdminToken carries the shared admin token.
	HeaderAdminToken = "X-Admin-Token"
	// HeaderAdminName optionally carries the acting admin's display name. It
	// is recorded on negotiations, staff accounts and audit events.
	HeaderAdminName = "X-Admin-Name"

	maxAdminNameLen = 100
)

var unauthorizedBody = []byte(`{"error":"unauthorized","error_description":"admin token required"}`)

// RequireAdminToken rejects requests whose token does not match expected.
// An empty expected token rejects everything.
func RequireAdminToken(expected string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !tokenMatches(r.Header.Get(HeaderAdminToken), expected) {
				logger.WarnContext(ctx, "rejected admin request",
					"request_id", request.GetRequestID(ctx),
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write(unauthorizedBody)
				return
			}
			name := strings.TrimSpace(r.Header.Get(HeaderAdminName))
			if name != "" && len(name) <= maxAdminNameLen {
				ctx = requestcontext.WithActorName(ctx, name)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenMatches(got, expected string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}
