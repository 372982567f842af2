package ports

import (
	"context"

	"github.com/userhub/user-service/internal/core/domain"
)

// UserRepository is the single-collection user store. Every method is one
// round trip to the store; there are no transactions or retries.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByID returns domain.ErrInvalidUserID for a malformed id and
	// domain.ErrUserNotFound when no document matches.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindAll returns every user in insertion order.
	FindAll(ctx context.Context) ([]*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByCredentials returns the user with the given username whose stored
	// password is accepted by the configured CredentialVerifier.
	FindByCredentials(ctx context.Context, username, password string) (*domain.User, error)
	FindByExternalID(ctx context.Context, provider, externalID string) (*domain.User, error)
	// Update merges changes into the stored document. The Password field of
	// changes is always dropped.
	Update(ctx context.Context, id string, changes domain.UserChanges) (domain.WriteResult, error)
	// Delete returns domain.ErrUserNotFound when nothing was removed.
	Delete(ctx context.Context, id string) (domain.WriteResult, error)
}

// CredentialVerifier abstracts how passwords are stored and compared so the
// storage format can change without touching call sites.
type CredentialVerifier interface {
	Scheme() string
	Hash(plain string) (string, error)
	Verify(stored, presented string) bool
}
