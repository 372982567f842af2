package domain

import (
	"errors"
	"strings"
	"time"
)

// RoleAdmin is the role tag that unlocks the admin routes.
const RoleAdmin = "ADMIN"

// ProviderGoogle names the only external identity provider bound on users.
const ProviderGoogle = "google"

// StrategyLocal names username/password authentication.
const StrategyLocal = "local"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidUserID      = errors.New("invalid user id")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionInvalid     = errors.New("session invalid")
	ErrInvalidProfile     = errors.New("invalid external profile")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)

// ConstraintError is returned when the store rejects a write, e.g. on a
// duplicate unique field. Detail carries the store's message verbatim.
type ConstraintError struct {
	Detail string
}

func (e *ConstraintError) Error() string {
	return "constraint violation: " + e.Detail
}

// Unwrap lets callers match the error with errors.Is(err, ErrUserExists).
func (e *ConstraintError) Unwrap() error {
	return ErrUserExists
}

// ExternalIdentity binds a user to an account at an external provider.
type ExternalIdentity struct {
	ID    string `json:"id"`
	Token string `json:"-"`
}

// User is the single document type held by the store.
type User struct {
	ID        string            `json:"_id"`
	Username  string            `json:"username"`
	Password  string            `json:"-"`
	Email     string            `json:"email,omitempty"`
	FirstName string            `json:"firstName,omitempty"`
	LastName  string            `json:"lastName,omitempty"`
	Roles     []string          `json:"roles"`
	Google    *ExternalIdentity `json:"google,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// HasRole reports whether role is one of the user's role tags.
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user carries the ADMIN role tag.
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// UserChanges is a partial user record. Nil fields are left untouched.
// Password is accepted so callers can pass raw payloads through, but the
// store always drops it before applying the merge.
type UserChanges struct {
	Username  *string
	Password  *string
	Email     *string
	FirstName *string
	LastName  *string
	Roles     []string
}

// IsEmpty reports whether no updatable field is set. Password does not count.
func (c UserChanges) IsEmpty() bool {
	return c.Username == nil && c.Email == nil && c.FirstName == nil &&
		c.LastName == nil && c.Roles == nil
}

// WriteResult acknowledges a write without returning the document.
type WriteResult struct {
	Matched  int64 `json:"n"`
	Modified int64 `json:"nModified"`
	OK       int   `json:"ok"`
}

// ExternalProfile is the identity facts returned by an OAuth provider.
type ExternalProfile struct {
	Provider   string
	ID         string
	Email      string
	GivenName  string
	FamilyName string
}

// UsernameFromEmail returns the local part of an email address, the text
// before the first "@".
func UsernameFromEmail(email string) (string, error) {
	local, _, found := strings.Cut(strings.TrimSpace(email), "@")
	if !found || local == "" {
		return "", ErrInvalidProfile
	}
	return local, nil
}
