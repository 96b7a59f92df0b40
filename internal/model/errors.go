package model

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenValidation is returned when an identity token cannot be verified.
	// The underlying cause is logged, never exposed.
	ErrTokenValidation = errors.New("identity token could not be validated")

	// ErrTokenExchange is returned when an authorization code cannot be exchanged for an ID token.
	ErrTokenExchange = errors.New("authorization code could not be exchanged")

	// ErrUnauthenticated is returned when an endpoint requires a session and none was resolved.
	ErrUnauthenticated = errors.New("user is unauthenticated")
)

// UnauthorizedError means the caller is authenticated but may not access the resource.
type UnauthorizedError struct {
	Resource string
	ID       string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("not authorized to access %s %s", e.Resource, e.ID)
}

// NotFoundError means the addressed resource does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s was not found", e.Resource, e.ID)
}

// ConflictError means a mutation collides with a unique constraint.
type ConflictError struct {
	Resource string
	Field    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with this %s already exists", e.Resource, e.Field)
}

// ValidationError reports the first input field that failed validation.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed at field %s", e.Field)
}

// APIError is the machine-readable error carried in a response envelope.
type APIError struct {
	Status  int // HTTP status code
	Code    string
	Message string
}

// Error implements error.
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Error codes returned in the errorCode field.
const (
	ErrCodeValidation          = "ValidationError"
	ErrCodeInvalidToken        = "InvalidToken"
	ErrCodeTokenExchangeFailed = "TokenExchangeFailed"
	ErrCodeUnauthenticated     = "UserUnauthenticated"
	ErrCodeUnauthorized        = "UserUnauthorized"
	ErrCodeNotFound            = "NotFound"
	ErrCodeConflict            = "Conflict"
	ErrCodeTooManyRequests     = "TooManyRequests"
	ErrCodeUnknown             = "UnknownError"
)

// NewUnauthenticatedAPIError is the 401 body shared by handlers and middleware.
func NewUnauthenticatedAPIError() *APIError {
	return &APIError{
		Status:  401,
		Code:    ErrCodeUnauthenticated,
		Message: "Unauthenticated users cannot make this request.",
	}
}

// NewUnknownAPIError is the generic 500 body. Details stay in the logs.
func NewUnknownAPIError() *APIError {
	return &APIError{
		Status:  500,
		Code:    ErrCodeUnknown,
		Message: "An unknown error has occurred",
	}
}

// NewTooManyRequestsAPIError is returned by the rate limiter.
func NewTooManyRequestsAPIError() *APIError {
	return &APIError{
		Status:  429,
		Code:    ErrCodeTooManyRequests,
		Message: "Too many requests, retry later",
	}
}
