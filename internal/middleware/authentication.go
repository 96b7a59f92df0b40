// Package middleware provides the HTTP middleware chain.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/dda/internal/model"
	"github.com/hitoshi/dda/internal/reqctx"
)

// SessionResolver resolves a bearer token to its user.
// A subset of session.Store.
type SessionResolver interface {
	GetCurrentSessionUser(ctx context.Context, token string) (*model.User, error)
}

// NewAuthenticationMiddleware resolves "Authorization: Bearer <token>" to a user
// and stores it with reqctx.WithUser. It never rejects a request: a missing or
// malformed header, an unknown or expired token and a lookup failure all leave
// the request unauthenticated, and handlers that need a user respond 401.
func NewAuthenticationMiddleware(resolver SessionResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(header)
			if !ok {
				slog.WarnContext(ctx, "authorization header malformed, treating request as unauthenticated")
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.GetCurrentSessionUser(ctx, token)
			if err != nil {
				slog.ErrorContext(ctx, "session lookup failed, treating request as unauthenticated",
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}
			if user == nil {
				slog.WarnContext(ctx, "no valid session for token, treating request as unauthenticated")
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(reqctx.WithUser(ctx, user)))
		})
	}
}

// bearerToken accepts exactly two whitespace-separated parts, the first being "Bearer".
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}
