package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/docswallet/service/internal/response"
	"github.com/docswallet/service/internal/token"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

// UserEmailKey is the context key for the authenticated caller's email.
const UserEmailKey contextKey = "userEmail"

// RequireAuth returns middleware that validates a Bearer credential and
// injects the caller's email into the request context. Requests with a
// missing, malformed, or invalid credential are rejected before any
// handler logic runs.
func RequireAuth(tokens *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Unauthorized access")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(w, "Unauthorized access")
				return
			}

			claims, err := tokens.Verify(parts[1])
			if err != nil {
				response.Unauthorized(w, "Unauthorized access")
				return
			}

			ctx := context.WithValue(r.Context(), UserEmailKey, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EmailFromContext returns the authenticated caller's email, or "" when
// the request did not pass through RequireAuth.
func EmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(UserEmailKey).(string)
	return email
}
