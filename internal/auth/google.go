package auth

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/hitoshi/dda/internal/model"
	"github.com/hitoshi/dda/internal/validation"
)

const (
	defaultGoogleIssuer   = "https://accounts.google.com"
	defaultGoogleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"
	defaultHTTPTimeout    = 10 * time.Second
)

// GoogleConfig configures GoogleVerifier.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string

	// Overridable for tests.
	Issuer     string
	KeySet     oidc.KeySet
	TokenURL   string
	HTTPClient *http.Client
}

// GoogleVerifier verifies Google ID tokens and redeems Google authorization codes.
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
	oauth    oauth2.Config
	client   *http.Client
	validate *validation.Validator
}

// googleClaims are the ID token claims DDA needs. Google omits given_name or
// family_name for some accounts; those tokens are rejected, as are names that
// are nothing but markup.
type googleClaims struct {
	Email         string `json:"email" validate:"required,dda_email"`
	EmailVerified *bool  `json:"email_verified" validate:"required"`
	GivenName     string `json:"given_name" validate:"dda_name"`
	FamilyName    string `json:"family_name" validate:"dda_name"`
	Picture       string `json:"picture" validate:"omitempty,dda_picture"`
}

// NewGoogleVerifier builds a GoogleVerifier. ctx scopes background fetches of
// Google's signing keys and should live as long as the verifier.
func NewGoogleVerifier(ctx context.Context, cfg GoogleConfig) *GoogleVerifier {
	if cfg.Issuer == "" {
		cfg.Issuer = defaultGoogleIssuer
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if cfg.KeySet == nil {
		cfg.KeySet = oidc.NewRemoteKeySet(oidc.ClientContext(ctx, cfg.HTTPClient), defaultGoogleCertsURL)
	}

	endpoint := endpoints.Google
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	return &GoogleVerifier{
		verifier: oidc.NewVerifier(cfg.Issuer, cfg.KeySet, &oidc.Config{ClientID: cfg.ClientID}),
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		client:   cfg.HTTPClient,
		validate: validation.New(),
	}
}

// GetUserProfile checks signature, issuer, audience and expiry of idToken and
// extracts the profile claims.
func (g *GoogleVerifier) GetUserProfile(ctx context.Context, idToken string) (*model.Profile, error) {
	tok, err := g.verifier.Verify(ctx, idToken)
	if err != nil {
		slog.DebugContext(ctx, "google id token rejected", slog.String("error", err.Error()))
		return nil, model.ErrTokenValidation
	}

	var claims googleClaims
	if err := tok.Claims(&claims); err != nil {
		slog.DebugContext(ctx, "google id token claims unreadable", slog.String("error", err.Error()))
		return nil, model.ErrTokenValidation
	}
	if err := g.validate.Struct(claims); err != nil {
		slog.DebugContext(ctx, "google id token claims invalid", slog.String("error", err.Error()))
		return nil, model.ErrTokenValidation
	}

	profile := &model.Profile{
		Email:           claims.Email,
		GivenName:       claims.GivenName,
		FamilyName:      claims.FamilyName,
		IsEmailVerified: *claims.EmailVerified,
	}
	if claims.Picture != "" {
		picture := claims.Picture
		profile.ProfilePicture = &picture
	}
	return profile, nil
}

// ExchangeAuthCodeForIDToken posts code to Google's token endpoint and returns
// the id_token of the response.
func (g *GoogleVerifier) ExchangeAuthCodeForIDToken(ctx context.Context, code, codeVerifier, redirectURI string) (string, error) {
	cfg := g.oauth
	cfg.RedirectURL = redirectURI

	var opts []oauth2.AuthCodeOption
	if codeVerifier != "" {
		opts = append(opts, oauth2.VerifierOption(codeVerifier))
	}

	tok, err := cfg.Exchange(context.WithValue(ctx, oauth2.HTTPClient, g.client), code, opts...)
	if err != nil {
		slog.DebugContext(ctx, "google code exchange failed", slog.String("error", err.Error()))
		return "", model.ErrTokenExchange
	}

	idToken, ok := tok.Extra("id_token").(string)
	if !ok || idToken == "" {
		slog.DebugContext(ctx, "google token response has no id_token")
		return "", model.ErrTokenExchange
	}
	return idToken, nil
}
