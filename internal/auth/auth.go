// Package auth attaches an opaque user identity to every request. Session
// issuance lives outside this service; this package only verifies the
// token it is handed and exposes the resulting user id on the request
// context.
package auth

import (
	"context"
	"net/http"
	"strings"
)

// Verifier turns an opaque session token into a user identifier.
type Verifier interface {
	Verify(token string) (userID string, err error)
}

type contextKey struct{}

// UserID returns the authenticated user id stored on ctx, or "" when the
// request did not pass through Middleware.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// WithUserID returns a context carrying the given user id. Exposed for
// handler tests.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// Middleware rejects requests without a valid session token. The token is
// read from the "token" cookie first, then from the Authorization bearer
// header, then from "x-auth-token".
func Middleware(v Verifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			unauthorized(w, "No token, authorization denied")
			return
		}
		userID, err := v.Verify(token)
		if err != nil || userID == "" {
			unauthorized(w, "Token is not valid")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie("token"); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.Header.Get("x-auth-token")
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"message":"` + msg + `"}`))
}
