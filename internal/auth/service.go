package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/dda/internal/metrics"
	"github.com/hitoshi/dda/internal/model"
)

// UserDirectory resolves a verified profile to a user.
type UserDirectory interface {
	GetOrCreateUser(ctx context.Context, profile *model.Profile, source model.UserSource) (*model.User, error)
}

// SessionIssuer issues the user's single session token.
type SessionIssuer interface {
	RefreshSessionToken(ctx context.Context, user *model.User) (*model.Session, error)
}

// GoogleLogin is a login request. IDToken takes precedence; otherwise the
// authorization code is exchanged first.
type GoogleLogin struct {
	IDToken           string
	AuthorizationCode string
	CodeVerifier      string
	RedirectURI       string
}

// LoginResult is a freshly issued session and its owner.
type LoginResult struct {
	Session *model.Session
	User    *model.User
}

// Service runs the login flow: verify, get or create the user, refresh the session.
type Service struct {
	verifier CredentialVerifier
	users    UserDirectory
	sessions SessionIssuer
	metrics  metrics.MetricsCollector
}

// NewService returns a Service. collector may be nil.
func NewService(verifier CredentialVerifier, users UserDirectory, sessions SessionIssuer, collector metrics.MetricsCollector) *Service {
	return &Service{
		verifier: verifier,
		users:    users,
		sessions: sessions,
		metrics:  collector,
	}
}

// LoginWithGoogle logs a Google user in. Every successful login replaces the
// user's previous session.
func (s *Service) LoginWithGoogle(ctx context.Context, req GoogleLogin) (*LoginResult, error) {
	result, err := s.login(ctx, req)
	s.recordLogin(err)
	return result, err
}

func (s *Service) login(ctx context.Context, req GoogleLogin) (*LoginResult, error) {
	idToken := req.IDToken
	if idToken == "" {
		var err error
		idToken, err = s.verifier.ExchangeAuthCodeForIDToken(ctx, req.AuthorizationCode, req.CodeVerifier, req.RedirectURI)
		if err != nil {
			return nil, err
		}
	}

	profile, err := s.verifier.GetUserProfile(ctx, idToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetOrCreateUser(ctx, profile, model.UserSourceGoogle)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	session, err := s.sessions.RefreshSessionToken(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	slog.InfoContext(ctx, "user logged in",
		slog.String("login_user_id", user.ID),
		slog.String("source", string(model.UserSourceGoogle)),
	)
	return &LoginResult{Session: session, User: user}, nil
}

func (s *Service) recordLogin(err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case err == nil:
		s.metrics.RecordLogin(metrics.LoginSucceeded)
	case errors.Is(err, model.ErrTokenValidation):
		s.metrics.RecordLogin(metrics.LoginInvalidToken)
	case errors.Is(err, model.ErrTokenExchange):
		s.metrics.RecordLogin(metrics.LoginExchangeError)
	default:
		s.metrics.RecordLogin(metrics.LoginError)
	}
}
