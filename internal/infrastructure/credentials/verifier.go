// Package credentials provides the password verifiers the user store can be
// configured with.
package credentials

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/userhub/user-service/internal/core/domain"
	"github.com/userhub/user-service/internal/core/ports"
)

const (
	SchemePlaintext = "plaintext"
	SchemeBcrypt    = "bcrypt"

	// MaxBcryptPassword is the longest input bcrypt accepts, in bytes.
	MaxBcryptPassword = 72
)

// Plaintext stores passwords as given and compares them verbatim.
type Plaintext struct{}

func (Plaintext) Scheme() string { return SchemePlaintext }

func (Plaintext) Hash(plain string) (string, error) { return plain, nil }

func (Plaintext) Verify(stored, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}

// Bcrypt stores bcrypt hashes.
type Bcrypt struct {
	Cost int
}

func (Bcrypt) Scheme() string { return SchemeBcrypt }

func (b Bcrypt) Hash(plain string) (string, error) {
	if len(plain) > MaxBcryptPassword {
		return "", domain.ErrPasswordTooLong
	}
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

func (Bcrypt) Verify(stored, presented string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(presented)) == nil
}

// New returns the verifier for scheme.
func New(scheme string, bcryptCost int) (ports.CredentialVerifier, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", SchemePlaintext:
		return Plaintext{}, nil
	case SchemeBcrypt:
		if bcryptCost != 0 && (bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost) {
			return nil, fmt.Errorf("credentials: bcrypt cost %d out of range", bcryptCost)
		}
		return Bcrypt{Cost: bcryptCost}, nil
	default:
		return nil, fmt.Errorf("credentials: unknown password scheme %q", scheme)
	}
}
