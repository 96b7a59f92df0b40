// Package repository defines persistence interfaces and their PostgreSQL implementations.
package repository

import (
	"context"

	"github.com/hitoshi/dda/internal/model"
)

// UserRepository persists users.
// Finders return nil, nil when nothing matches.
type UserRepository interface {
	// FindByID returns the user with the given id.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail matches the stored email exactly (case-sensitive).
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByPhoneNumber matches the stored phone number exactly.
	FindByPhoneNumber(ctx context.Context, phoneNumber string) (*model.User, error)

	// Create inserts a new user. A unique violation yields *model.ConflictError.
	Create(ctx context.Context, user *model.User) error

	// Update writes every mutable column of user. A unique violation yields *model.ConflictError.
	Update(ctx context.Context, user *model.User) error
}

// SessionRepository persists session tokens. A user has at most one row.
type SessionRepository interface {
	// FindByToken returns the session for token, expired or not. nil when absent.
	FindByToken(ctx context.Context, token string) (*model.Session, error)

	// Replace deletes the owner's current session and stores session in one transaction.
	Replace(ctx context.Context, session *model.Session) error

	// DeleteByToken removes the session with the given token. Missing rows are not an error.
	DeleteByToken(ctx context.Context, token string) error

	// DeleteByUserID removes the user's session and returns it, or nil if there was none.
	DeleteByUserID(ctx context.Context, userID string) (*model.Session, error)
}
