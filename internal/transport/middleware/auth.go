package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/auth"
	"github.com/peoplekit/hrcore/internal/authz"
	"github.com/peoplekit/hrcore/pkg/logger"
)

// TokenValidator is the slice of the auth service the middleware needs.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*auth.Claims, error)
}

// ActorResolver turns an authenticated user into a capability-bearing actor.
type ActorResolver interface {
	ActorFor(userID int64) (*authz.Actor, error)
}

// Authenticate validates the bearer token and resolves the caller's profile
// and roles once, so downstream handlers read a ready-made actor from the
// request context.
func Authenticate(tokens TokenValidator, resolver ActorResolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeUnauthorized(w, "missing authorization token")
				return
			}

			claims, err := tokens.ValidateAccessToken(token)
			if err != nil {
				log.Warn("token validation failed", "error", err)
				writeUnauthorized(w, "invalid token")
				return
			}

			actor, err := resolver.ActorFor(claims.UserID)
			if err != nil {
				log.Warn("actor resolution failed", "user_id", claims.UserID, "error", err)
				writeUnauthorized(w, "no active profile for user")
				return
			}

			ctx := authz.ContextWithActor(r.Context(), actor)
			ctx = internal.ContextWithUserID(ctx, claims.UserID)
			ctx = logger.With(ctx, "userID", claims.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
