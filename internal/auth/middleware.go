package auth

import (
	"context"
	"net/http"
	"strings"

	"linkup/internal/api/respond"
	"linkup/pkg/jwt"
)

type contextKey string

const userIDKey contextKey = "user_id"

type Middleware struct {
	tokens *jwt.JWT
}

func NewMiddleware(tokens *jwt.JWT) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handler validates the Bearer token and places the acting user id in the
// request context. WebSocket upgrades cannot carry headers from browsers, so
// a "token" query parameter is accepted as well.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			respond.JSON(w, http.StatusUnauthorized, respond.Envelope{Msg: "authorization token is not provided"})
			return
		}

		claims, err := m.tokens.ValidateToken(token)
		if err != nil {
			respond.JSON(w, http.StatusUnauthorized, respond.Envelope{Msg: "invalid token"})
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// UserID returns the authenticated user id stored by Handler, or "" when the
// request did not pass through it.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// WithUserID is a test helper for building authenticated contexts.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}
