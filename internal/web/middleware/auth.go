package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jarvislab/jarvis/internal/registry"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Identity is the authenticated user attached to the request context.
type Identity struct {
	UserID string
	Name   string
	Token  string
}

func tokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	return strings.TrimSpace(r.Header.Get("X-User-Token"))
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": "` + message + `"}`))
}

// RequireAuth is middleware that validates the bearer token against the
// user registry. The token is the user_id issued at registration; pending
// users are rejected until they complete registration.
func RequireAuth(reg *registry.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				unauthorized(w, "Authentication required. Provide Authorization: Bearer <token> or X-User-Token header.")
				return
			}

			user, err := reg.Get(token)
			if err != nil {
				if errors.Is(err, registry.ErrNotFound) {
					unauthorized(w, "Invalid or expired token.")
					return
				}
				http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
				return
			}
			if !user.Confirmed {
				unauthorized(w, "Registration incomplete. Complete registration first.")
				return
			}

			identity := &Identity{UserID: user.UserID, Name: user.Name, Token: token}
			ctx := context.WithValue(r.Context(), identityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentityFromContext retrieves the authenticated user from the request context
func GetIdentityFromContext(ctx context.Context) *Identity {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok {
		return nil
	}
	return identity
}

// SetIdentityInContext adds an identity to the context.
// This is primarily for testing - use RequireAuth middleware in production.
func SetIdentityInContext(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}
