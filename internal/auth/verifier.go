// Package auth verifies identity-provider credentials and turns them into DDA sessions.
package auth

import (
	"context"

	"github.com/hitoshi/dda/internal/model"
)

// CredentialVerifier is an external identity provider.
type CredentialVerifier interface {
	// GetUserProfile verifies idToken and returns the normalized profile.
	// Every failure is reported as model.ErrTokenValidation.
	GetUserProfile(ctx context.Context, idToken string) (*model.Profile, error)

	// ExchangeAuthCodeForIDToken redeems an authorization code (PKCE) for an ID token.
	// Every failure is reported as model.ErrTokenExchange.
	ExchangeAuthCodeForIDToken(ctx context.Context, code, codeVerifier, redirectURI string) (string, error)
}

// StaticVerifier returns a fixed profile without contacting any provider.
// It backs tests and local runs without Google credentials.
type StaticVerifier struct {
	Profile model.Profile
	// IDToken is returned by a successful exchange.
	IDToken string
	// ExchangeErr and ValidationErr, when set, are returned instead.
	ExchangeErr   error
	ValidationErr error
}

// GetUserProfile returns a copy of v.Profile.
func (v *StaticVerifier) GetUserProfile(ctx context.Context, idToken string) (*model.Profile, error) {
	if v.ValidationErr != nil {
		return nil, v.ValidationErr
	}
	p := v.Profile
	return &p, nil
}

// ExchangeAuthCodeForIDToken returns v.IDToken.
func (v *StaticVerifier) ExchangeAuthCodeForIDToken(ctx context.Context, code, codeVerifier, redirectURI string) (string, error) {
	if v.ExchangeErr != nil {
		return "", v.ExchangeErr
	}
	return v.IDToken, nil
}

// compile-time interface checks
var (
	_ CredentialVerifier = (*StaticVerifier)(nil)
	_ CredentialVerifier = (*GoogleVerifier)(nil)
)
