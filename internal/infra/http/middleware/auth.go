package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/overseaspath/crm-backend/internal/entity"
)

type contextKey string

const userContextKey contextKey = "requester"

// SessionResolver is what the auth collaborator provides: token in,
// authenticated user out.
type SessionResolver interface {
	Find(ctx context.Context, token string) (*entity.User, error)
}

// Authenticator turns "Authorization: Bearer <token>" into an entity.User in
// the request context. Every core operation downstream receives the
// requester from here, already authenticated.
func Authenticator(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			user, err := sessions.Find(r.Context(), token)
			if err != nil {
				unauthorized(w, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, *user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom returns the authenticated requester set by Authenticator.
func UserFrom(ctx context.Context) (entity.User, bool) {
	user, ok := ctx.Value(userContextKey).(entity.User)
	return user, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
