package oauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/userhub/user-service/internal/core/domain"
)

const googleIssuer = "https://accounts.google.com"

// GoogleConfig holds the registered client settings.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Configured reports whether every required field is set.
func (c GoogleConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.CallbackURL != ""
}

// Google authenticates users against Google via OAuth2 code flow and reads
// the profile from the verified id_token.
type Google struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
}

// NewGoogle discovers the Google OIDC endpoints and builds the provider.
func NewGoogle(ctx context.Context, cfg GoogleConfig) (*Google, error) {
	if !cfg.Configured() {
		return nil, errors.New("google oauth config missing required fields")
	}

	p, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("init google oidc provider: %w", err)
	}

	return &Google{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Endpoint:     p.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: p.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

func (g *Google) Name() string { return domain.ProviderGoogle }

func (g *Google) AuthCodeURL(state, codeVerifier string) string {
	return g.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(codeVerifier))
}

type googleClaims struct {
	Subject    string `json:"sub"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

func (g *Google) Exchange(ctx context.Context, code, codeVerifier string) (domain.ExternalProfile, string, error) {
	token, err := g.oauthConfig.Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return domain.ExternalProfile{}, "", fmt.Errorf("google token exchange: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return domain.ExternalProfile{}, "", errors.New("google did not return id_token")
	}

	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return domain.ExternalProfile{}, "", fmt.Errorf("google id_token verification: %w", err)
	}

	var claims googleClaims
	if err := idToken.Claims(&claims); err != nil {
		return domain.ExternalProfile{}, "", fmt.Errorf("google id_token claims: %w", err)
	}

	return claims.profile(), token.AccessToken, nil
}

func (c googleClaims) profile() domain.ExternalProfile {
	return domain.ExternalProfile{
		Provider:   domain.ProviderGoogle,
		ID:         c.Subject,
		Email:      c.Email,
		GivenName:  c.GivenName,
		FamilyName: c.FamilyName,
	}
}
