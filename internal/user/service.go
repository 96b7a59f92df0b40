// Package user maps identity-provider profiles to DDA users and applies profile updates.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/dda/internal/model"
	"github.com/hitoshi/dda/internal/repository"
	"github.com/hitoshi/dda/internal/security"
)

// Service is the user directory.
type Service struct {
	users     repository.UserRepository
	sanitizer security.TextSanitizer
	now       func() time.Time
	newID     func() string
}

// NewService returns a Service backed by users.
func NewService(users repository.UserRepository, sanitizer security.TextSanitizer) *Service {
	return &Service{
		users:     users,
		sanitizer: sanitizer,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// GetUserByID returns the user or *model.NotFoundError.
func (s *Service) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, &model.NotFoundError{Resource: "User", ID: id}
	}
	return u, nil
}

// GetOrCreateUser returns the user whose email matches profile.Email exactly,
// creating one when none exists. An existing user is returned unchanged:
// the profile of a later login never overwrites stored fields. A new user
// whose names are empty once sanitized is refused with model.ErrTokenValidation.
func (s *Service) GetOrCreateUser(ctx context.Context, profile *model.Profile, source model.UserSource) (*model.User, error) {
	existing, err := s.users.FindByEmail(ctx, profile.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	givenName := s.sanitizer.Sanitize(profile.GivenName)
	familyName := s.sanitizer.Sanitize(profile.FamilyName)
	if givenName == "" || familyName == "" {
		return nil, model.ErrTokenValidation
	}

	now := s.now()
	u := &model.User{
		ID:              s.newID(),
		Email:           profile.Email,
		GivenName:       givenName,
		FamilyName:      familyName,
		PhoneNumber:     profile.PhoneNumber,
		ProfilePicture:  profile.ProfilePicture,
		IsEmailVerified: profile.IsEmailVerified,
		IsPhoneVerified: profile.IsPhoneVerified,
		Source:          source,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.users.Create(ctx, u); err != nil {
		// A concurrent first login with the same email won the insert.
		var conflict *model.ConflictError
		if errors.As(err, &conflict) && conflict.Field == "email" {
			return s.refetchByEmail(ctx, profile.Email, err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.InfoContext(ctx, "user created",
		slog.String("created_user_id", u.ID),
		slog.String("source", string(source)),
	)
	return u, nil
}

func (s *Service) refetchByEmail(ctx context.Context, email string, createErr error) (*model.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user after conflict: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("failed to create user: %w", createErr)
	}
	return u, nil
}

// CheckUniqueness reports *model.ConflictError when patch would give user an
// email or phone number already owned by another user.
func (s *Service) CheckUniqueness(ctx context.Context, patch *model.UserPatch, u *model.User) error {
	if patch.Email != nil && *patch.Email != u.Email {
		owner, err := s.users.FindByEmail(ctx, *patch.Email)
		if err != nil {
			return fmt.Errorf("failed to check email uniqueness: %w", err)
		}
		if owner != nil && owner.ID != u.ID {
			return &model.ConflictError{Resource: "User", Field: "email"}
		}
	}

	if patch.PhoneNumber != nil && !equalPtr(patch.PhoneNumber, u.PhoneNumber) {
		owner, err := s.users.FindByPhoneNumber(ctx, *patch.PhoneNumber)
		if err != nil {
			return fmt.Errorf("failed to check phone number uniqueness: %w", err)
		}
		if owner != nil && owner.ID != u.ID {
			return &model.ConflictError{Resource: "User", Field: "phoneNumber"}
		}
	}
	return nil
}

// UpdateUserProfile applies the non-nil fields of patch to u and persists the result.
// A name that sanitizes to "" is a *model.ValidationError and nothing is written.
// A changed email clears IsEmailVerified and a changed phone number clears
// IsPhoneVerified. Uniqueness is the caller's concern (see CheckUniqueness);
// the storage constraint still reports a lost race as *model.ConflictError.
func (s *Service) UpdateUserProfile(ctx context.Context, patch *model.UserPatch, u *model.User) (*model.User, error) {
	updated := *u

	if patch.Email != nil {
		if *patch.Email != u.Email {
			updated.IsEmailVerified = false
		}
		updated.Email = *patch.Email
	}
	if patch.GivenName != nil {
		updated.GivenName = s.sanitizer.Sanitize(*patch.GivenName)
		if updated.GivenName == "" {
			return nil, &model.ValidationError{Field: "givenName"}
		}
	}
	if patch.FamilyName != nil {
		updated.FamilyName = s.sanitizer.Sanitize(*patch.FamilyName)
		if updated.FamilyName == "" {
			return nil, &model.ValidationError{Field: "familyName"}
		}
	}
	if patch.PhoneNumber != nil {
		if !equalPtr(patch.PhoneNumber, u.PhoneNumber) {
			updated.IsPhoneVerified = false
		}
		phone := *patch.PhoneNumber
		updated.PhoneNumber = &phone
	}
	if patch.ProfilePicture != nil {
		picture := *patch.ProfilePicture
		updated.ProfilePicture = &picture
	}
	updated.UpdatedAt = s.now()

	if err := s.users.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}

	slog.InfoContext(ctx, "user profile updated",
		slog.Bool("email_changed", updated.Email != u.Email),
		slog.Bool("phone_changed", !equalPtr(updated.PhoneNumber, u.PhoneNumber)),
	)
	return &updated, nil
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
