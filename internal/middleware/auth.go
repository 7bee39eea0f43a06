// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/amoraitis/todolist/internal/auth"
	"github.com/amoraitis/todolist/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// WithAuth returns a middleware that enforces bearer-token authentication.
//
// It expects an "Authorization: Bearer <token>" header carrying a token
// signed with secretKey. On success the user ID from the token claims is
// stored in the request context, so it can be used downstream as the
// authenticated user.
func WithAuth(secretKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "authorization required", http.StatusUnauthorized)
				return
			}

			userID, err := auth.GetUserIDFromToken(token, secretKey)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext extracts the authenticated user from the request
// context. The second return is false when no user was stored.
func GetUserFromContext(ctx context.Context) (models.AuthenticatedUser, bool) {
	val := ctx.Value(userKey)
	if s, ok := val.(string); ok && s != "" {
		return models.AuthenticatedUser{ID: s}, true
	}
	return models.AuthenticatedUser{}, false
}

// WithUser stores the user ID in the context. Exported for handler tests.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}
