package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/dda/internal/middleware"
	"github.com/hitoshi/dda/internal/model"
)

// handleServiceError writes the envelope for err. Errors without a mapping are
// logged and answered with UnknownError.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.Code == model.ErrCodeUnknown {
		slog.ErrorContext(r.Context(), "internal server error", slog.String("error", err.Error()))
	}
	middleware.WriteErrorResponse(w, apiErr)
}

// toAPIError maps a domain error to its status, error code and message.
func toAPIError(err error) *model.APIError {
	var (
		apiErr          *model.APIError
		validationErr   *model.ValidationError
		unauthorizedErr *model.UnauthorizedError
		notFoundErr     *model.NotFoundError
		conflictErr     *model.ConflictError
	)

	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &validationErr):
		return &model.APIError{
			Status:  http.StatusBadRequest,
			Code:    model.ErrCodeValidation,
			Message: "Validation failed at field " + validationErr.Field,
		}
	case errors.Is(err, model.ErrTokenValidation):
		return &model.APIError{
			Status:  http.StatusBadRequest,
			Code:    model.ErrCodeInvalidToken,
			Message: "Input token could not be validated",
		}
	case errors.Is(err, model.ErrTokenExchange):
		return &model.APIError{
			Status:  http.StatusBadRequest,
			Code:    model.ErrCodeTokenExchangeFailed,
			Message: "Could not exchange authorization code for ID token",
		}
	case errors.Is(err, model.ErrUnauthenticated):
		return model.NewUnauthenticatedAPIError()
	case errors.As(err, &unauthorizedErr):
		return &model.APIError{
			Status:  http.StatusForbidden,
			Code:    model.ErrCodeUnauthorized,
			Message: "User is not authorized to access " + unauthorizedErr.Resource + " " + unauthorizedErr.ID,
		}
	case errors.As(err, &notFoundErr):
		return &model.APIError{
			Status:  http.StatusNotFound,
			Code:    model.ErrCodeNotFound,
			Message: notFoundErr.Resource + " " + notFoundErr.ID + " was not found",
		}
	case errors.As(err, &conflictErr):
		return &model.APIError{
			Status:  http.StatusConflict,
			Code:    model.ErrCodeConflict,
			Message: conflictErr.Resource + " with this " + conflictErr.Field + " already exists",
		}
	default:
		return model.NewUnknownAPIError()
	}
}
