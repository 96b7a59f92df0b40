package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hitoshi/dda/internal/authz"
	"github.com/hitoshi/dda/internal/middleware"
	"github.com/hitoshi/dda/internal/model"
	"github.com/hitoshi/dda/internal/reqctx"
	"github.com/hitoshi/dda/internal/validation"
)

// UserServiceInterface is what UserHandler needs from the user directory.
type UserServiceInterface interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	CheckUniqueness(ctx context.Context, patch *model.UserPatch, u *model.User) error
	UpdateUserProfile(ctx context.Context, patch *model.UserPatch, u *model.User) (*model.User, error)
}

// UserHandler serves /v1/user.
type UserHandler struct {
	service  UserServiceInterface
	validate *validation.Validator
}

// NewUserHandler returns a UserHandler.
func NewUserHandler(service UserServiceInterface, validate *validation.Validator) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: validate,
	}
}

// GetUserProfile returns a user's profile. Callers may only read their own.
// GET /v1/user/{user_id}
func (h *UserHandler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadSelf(w, r)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toUserDto(user))
}

// UpdateUserProfile applies a partial profile update.
// PATCH /v1/user/{user_id}
func (h *UserHandler) UpdateUserProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadSelf(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	req.normalize()
	if err := h.validate.Struct(req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	ctx := r.Context()
	patch := req.toPatch()
	if err := h.service.CheckUniqueness(ctx, patch, user); err != nil {
		handleServiceError(w, r, err)
		return
	}

	updated, err := h.service.UpdateUserProfile(ctx, patch, user)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toUserDto(updated))
}

// loadSelf parses {user_id}, authorizes the caller against it and loads the
// user. On failure it has already written the response.
func (h *UserHandler) loadSelf(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "user_id"))
	if err != nil {
		handleServiceError(w, r, &model.ValidationError{Field: "user_id"})
		return nil, false
	}
	targetID := id.String()

	if err := authz.AuthorizeUserIsMe(targetID, reqctx.User(r.Context())); err != nil {
		handleServiceError(w, r, err)
		return nil, false
	}

	user, err := h.service.GetUserByID(r.Context(), targetID)
	if err != nil {
		handleServiceError(w, r, err)
		return nil, false
	}
	return user, true
}
