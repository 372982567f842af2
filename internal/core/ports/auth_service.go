package ports

import (
	"context"

	"github.com/userhub/user-service/internal/core/domain"
)

// SessionStore maps opaque session handles to user identifiers.
type SessionStore interface {
	Issue(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, handle string) (string, error)
	Revoke(ctx context.Context, handle string) error
}

// AuthService bridges store lookups and session handles.
type AuthService interface {
	Serialize(user *domain.User) string
	Deserialize(ctx context.Context, userID string) (*domain.User, error)
	AuthenticateLocal(ctx context.Context, username, password string) (*domain.User, error)
	AuthenticateExternal(ctx context.Context, profile domain.ExternalProfile, token string) (*domain.User, error)
	Login(ctx context.Context, user *domain.User, strategy string) (string, error)
	Resolve(ctx context.Context, handle string) (*domain.User, error)
	Logout(ctx context.Context, handle string, user *domain.User) error
}

// RegisterInput carries a validated registration request.
type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
	Roles     []string
}

// UserService exposes the user CRUD use cases to the transport layer.
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	FindByCredentials(ctx context.Context, username, password string) (*domain.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, id string, changes domain.UserChanges) (domain.WriteResult, error)
	Delete(ctx context.Context, id string) (domain.WriteResult, error)
}
