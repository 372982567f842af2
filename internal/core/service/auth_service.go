package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/userhub/user-service/internal/api/metrics"
	"github.com/userhub/user-service/internal/core/domain"
	"github.com/userhub/user-service/internal/core/ports"
)

const (
	StrategyLocal  = domain.StrategyLocal
	StrategyGoogle = domain.ProviderGoogle
)

// AuthService is the session manager: it turns credentials or an external
// profile into a user, and users into session handles and back.
type AuthService struct {
	repo     ports.UserRepository
	sessions ports.SessionStore
	audit    ports.AuditRecorder
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(repo ports.UserRepository, sessions ports.SessionStore, audit ports.AuditRecorder, log zerolog.Logger) *AuthService {
	return &AuthService{
		repo:     repo,
		sessions: sessions,
		audit:    audit,
		log:      log,
		now:      time.Now,
	}
}

// Serialize reduces a user to the identifier kept in the session.
func (s *AuthService) Serialize(user *domain.User) string {
	return user.ID
}

// Deserialize re-fetches the user behind a session identifier. Any failure
// invalidates the session.
func (s *AuthService) Deserialize(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSessionInvalid, err)
	}
	return user, nil
}

// AuthenticateLocal checks a username/password pair. A miss yields
// domain.ErrInvalidCredentials; store faults are returned as-is.
func (s *AuthService) AuthenticateLocal(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		s.recordFailure(username, StrategyLocal)
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByCredentials(ctx, username, password)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(username, StrategyLocal)
			return nil, domain.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues(StrategyLocal, "error").Inc()
		return nil, fmt.Errorf("authenticate local: %w", err)
	}
	return user, nil
}

// AuthenticateExternal logs in the user bound to the provider identity,
// provisioning one on first sight. The new username is the local part of
// the profile email.
func (s *AuthService) AuthenticateExternal(ctx context.Context, profile domain.ExternalProfile, token string) (*domain.User, error) {
	if profile.ID == "" {
		return nil, domain.ErrInvalidProfile
	}
	provider := profile.Provider
	if provider == "" {
		provider = domain.ProviderGoogle
	}

	user, err := s.repo.FindByExternalID(ctx, provider, profile.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		metrics.LoginsTotal.WithLabelValues(provider, "error").Inc()
		return nil, fmt.Errorf("authenticate external: %w", err)
	}

	username, err := domain.UsernameFromEmail(profile.Email)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:  username,
		Email:     profile.Email,
		FirstName: profile.GivenName,
		LastName:  profile.FamilyName,
		Roles:     []string{},
		Google:    &domain.ExternalIdentity{ID: profile.ID, Token: token},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(provider, "error").Inc()
		return nil, fmt.Errorf("provision external user: %w", err)
	}

	metrics.UsersRegisteredTotal.WithLabelValues(provider).Inc()
	s.audit.Record(domain.AuthEvent{
		Type:     domain.EventProvisioned,
		UserID:   created.ID,
		Username: created.Username,
		Strategy: provider,
	})
	s.log.Info().Str("user_id", created.ID).Str("provider", provider).Msg("external user provisioned")
	return created, nil
}

// Login issues a session handle for user.
func (s *AuthService) Login(ctx context.Context, user *domain.User, strategy string) (string, error) {
	handle, err := s.sessions.Issue(ctx, s.Serialize(user))
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(strategy, "error").Inc()
		return "", fmt.Errorf("issue session: %w", err)
	}
	metrics.LoginsTotal.WithLabelValues(strategy, "success").Inc()
	s.audit.Record(domain.AuthEvent{
		Type:     domain.EventLogin,
		UserID:   user.ID,
		Username: user.Username,
		Strategy: strategy,
	})
	return handle, nil
}

// Resolve maps a session handle back to its user.
func (s *AuthService) Resolve(ctx context.Context, handle string) (*domain.User, error) {
	if handle == "" {
		return nil, domain.ErrSessionInvalid
	}
	userID, err := s.sessions.Resolve(ctx, handle)
	if err != nil {
		s.recordInvalidated("")
		return nil, fmt.Errorf("%w: %w", domain.ErrSessionInvalid, err)
	}
	user, err := s.Deserialize(ctx, userID)
	if err != nil {
		s.recordInvalidated(userID)
		return nil, err
	}
	return user, nil
}

// Logout revokes the handle. Revoking an unknown handle is not an error.
func (s *AuthService) Logout(ctx context.Context, handle string, user *domain.User) error {
	if handle != "" {
		if err := s.sessions.Revoke(ctx, handle); err != nil {
			return fmt.Errorf("revoke session: %w", err)
		}
		metrics.SessionsInvalidatedTotal.WithLabelValues("logout").Inc()
	}
	if user != nil {
		s.audit.Record(domain.AuthEvent{Type: domain.EventLogout, UserID: user.ID, Username: user.Username})
	}
	return nil
}

func (s *AuthService) recordFailure(username, strategy string) {
	metrics.LoginsTotal.WithLabelValues(strategy, "failure").Inc()
	s.audit.Record(domain.AuthEvent{
		Type:     domain.EventLoginFailed,
		Username: username,
		Strategy: strategy,
	})
}

func (s *AuthService) recordInvalidated(userID string) {
	metrics.SessionsInvalidatedTotal.WithLabelValues("unresolvable").Inc()
	s.audit.Record(domain.AuthEvent{Type: domain.EventSessionEnded, UserID: userID})
}
