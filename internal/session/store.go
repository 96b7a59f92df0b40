// Package session issues, resolves and destroys session tokens.
//
// A user owns at most one session. RefreshSessionToken is the only way a token
// is issued and it always replaces the previous one, so a new login logs out
// every earlier client. Expired tokens are deleted by the read that finds them.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/dda/internal/metrics"
	"github.com/hitoshi/dda/internal/model"
	"github.com/hitoshi/dda/internal/repository"
)

// TokenPrefix starts every session token.
const TokenPrefix = "tk-"

// StoreConfig configures a Store.
type StoreConfig struct {
	SessionLength time.Duration
	// Metrics is optional.
	Metrics metrics.MetricsCollector
}

// Store is the session store.
type Store struct {
	sessions repository.SessionRepository
	users    repository.UserRepository
	config   StoreConfig
	now      func() time.Time
	newToken func() string
}

// NewStore returns a Store.
func NewStore(sessions repository.SessionRepository, users repository.UserRepository, config StoreConfig) *Store {
	return &Store{
		sessions: sessions,
		users:    users,
		config:   config,
		now:      time.Now,
		newToken: NewToken,
	}
}

// NewToken returns a fresh token: TokenPrefix followed by the 32 hex digits of a random UUID.
func NewToken() string {
	return TokenPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// RefreshSessionToken replaces the user's session with a new token expiring
// SessionLength from now.
func (s *Store) RefreshSessionToken(ctx context.Context, user *model.User) (*model.Session, error) {
	session := &model.Session{
		Token:     s.newToken(),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.config.SessionLength),
	}

	if err := s.sessions.Replace(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}

	if s.config.Metrics != nil {
		s.config.Metrics.RecordSessionIssued()
	}
	slog.InfoContext(ctx, "session issued",
		slog.String("session_user_id", user.ID),
		slog.Time("expires_at", session.ExpiresAt),
	)
	return session, nil
}

// GetCurrentSessionUser resolves token to its user. It returns nil, nil when
// the token is unknown, expired or owned by a user that no longer exists.
// An expired token is deleted before returning.
func (s *Store) GetCurrentSessionUser(ctx context.Context, token string) (*model.User, error) {
	session, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	if session.IsExpired(s.now()) {
		if err := s.sessions.DeleteByToken(ctx, token); err != nil {
			return nil, fmt.Errorf("failed to delete expired session: %w", err)
		}
		if s.config.Metrics != nil {
			s.config.Metrics.RecordSessionExpired()
		}
		slog.DebugContext(ctx, "expired session deleted",
			slog.String("session_user_id", session.UserID),
		)
		return nil, nil
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	return user, nil
}

// DestroyCurrentSession deletes the user's session and returns it, or nil
// when there was none. Calling it twice is not an error.
func (s *Store) DestroyCurrentSession(ctx context.Context, user *model.User) (*model.Session, error) {
	session, err := s.sessions.DeleteByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to destroy session: %w", err)
	}
	if session != nil {
		slog.InfoContext(ctx, "session destroyed")
	}
	return session, nil
}
