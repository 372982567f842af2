package oauth

import (
	"context"

	"github.com/userhub/user-service/internal/core/domain"
)

// Provider is an external identity provider. Implementations return
// identity facts only; user lookup, provisioning and sessions happen in the
// auth service.
type Provider interface {
	Name() string

	// AuthCodeURL returns the authorization URL for the given state. Only
	// the S256 challenge of codeVerifier is sent.
	AuthCodeURL(state, codeVerifier string) string

	// Exchange trades the authorization code for a verified profile and the
	// provider access token.
	Exchange(ctx context.Context, code, codeVerifier string) (domain.ExternalProfile, string, error)
}
