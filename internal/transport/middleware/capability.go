package middleware

import (
	"log/slog"
	"net/http"

	"github.com/peoplekit/hrcore/internal/authz"
)

// RequireCapability guards a route group behind one capability. Handlers
// still run their own per-record gate checks; this only keeps plainly
// unqualified callers out of role-scoped surfaces like the audit listing.
func RequireCapability(capability authz.Capability, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := authz.ActorFromContext(r.Context())
			if !ok {
				writeUnauthorized(w, "unauthorized")
				return
			}

			if !actor.Has(capability) {
				log.Warn("capability check failed",
					"user_id", actor.UserID,
					"capability", capability,
					"path", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"insufficient role"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
