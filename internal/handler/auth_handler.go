// Package handler provides the HTTP handlers and the router.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/dda/internal/auth"
	"github.com/hitoshi/dda/internal/middleware"
	"github.com/hitoshi/dda/internal/model"
	"github.com/hitoshi/dda/internal/reqctx"
	"github.com/hitoshi/dda/internal/validation"
)

// LoginServiceInterface is what AuthHandler needs to log a user in.
type LoginServiceInterface interface {
	LoginWithGoogle(ctx context.Context, req auth.GoogleLogin) (*auth.LoginResult, error)
}

// SessionServiceInterface is what AuthHandler needs to log a user out.
type SessionServiceInterface interface {
	DestroyCurrentSession(ctx context.Context, user *model.User) (*model.Session, error)
}

// AuthHandler serves /v1/glb/auth.
type AuthHandler struct {
	login    LoginServiceInterface
	sessions SessionServiceInterface
	validate *validation.Validator
}

// NewAuthHandler returns an AuthHandler.
func NewAuthHandler(login LoginServiceInterface, sessions SessionServiceInterface, validate *validation.Validator) *AuthHandler {
	return &AuthHandler{
		login:    login,
		sessions: sessions,
		validate: validate,
	}
}

// Login creates or refreshes the session of a Google user.
// POST /v1/glb/auth/google
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	req.normalize()
	if err := h.validate.Struct(req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	result, err := h.login.LoginWithGoogle(r.Context(), req.toGoogleLogin())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, userSessionDto{
		Token:     result.Session.Token,
		ExpiresAt: result.Session.ExpiresAt,
		User:      toUserDto(result.User),
	})
}

// Me returns the authenticated user.
// GET /v1/glb/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := reqctx.User(r.Context())
	if user == nil {
		handleServiceError(w, r, model.ErrUnauthenticated)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toUserDto(user))
}

// Logout deletes the authenticated user's session.
// DELETE /v1/glb/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := reqctx.User(ctx)
	if user == nil {
		handleServiceError(w, r, model.ErrUnauthenticated)
		return
	}

	deleted, err := h.sessions.DestroyCurrentSession(ctx, user)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if deleted == nil {
		// The request authenticated, so a session existed a moment ago.
		slog.WarnContext(ctx, "logout found no session to remove")
	}

	middleware.WriteJSON(w, http.StatusAccepted, nil)
}
