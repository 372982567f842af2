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

// UserService implements the user CRUD use cases on top of a UserRepository.
type UserService struct {
	repo     ports.UserRepository
	verifier ports.CredentialVerifier
	audit    ports.AuditRecorder
	log      zerolog.Logger
	now      func() time.Time
}

func NewUserService(repo ports.UserRepository, verifier ports.CredentialVerifier, audit ports.AuditRecorder, log zerolog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		verifier: verifier,
		audit:    audit,
		log:      log,
		now:      time.Now,
	}
}

// Register stores a new local user. The password is passed through the
// configured verifier's Hash before it reaches the store.
func (s *UserService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if in.Username == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	stored, err := s.verifier.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	roles := in.Roles
	if roles == nil {
		roles = []string{}
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:  in.Username,
		Password:  stored,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	metrics.UsersRegisteredTotal.WithLabelValues(StrategyLocal).Inc()
	s.audit.Record(domain.AuthEvent{
		Type:     domain.EventRegistered,
		UserID:   created.ID,
		Username: created.Username,
		Strategy: StrategyLocal,
	})
	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.FindAll(ctx)
}

func (s *UserService) FindByCredentials(ctx context.Context, username, password string) (*domain.User, error) {
	return s.repo.FindByCredentials(ctx, username, password)
}

// UsernameTaken reports whether any user already holds username.
func (s *UserService) UsernameTaken(ctx context.Context, username string) (bool, error) {
	_, err := s.repo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Update applies changes to the user. A password in changes never reaches
// the store's merge.
func (s *UserService) Update(ctx context.Context, id string, changes domain.UserChanges) (domain.WriteResult, error) {
	if changes.Password != nil {
		s.log.Debug().Str("user_id", id).Msg("password dropped from update payload")
		changes.Password = nil
	}
	return s.repo.Update(ctx, id, changes)
}

func (s *UserService) Delete(ctx context.Context, id string) (domain.WriteResult, error) {
	res, err := s.repo.Delete(ctx, id)
	if err != nil {
		return res, err
	}
	s.audit.Record(domain.AuthEvent{Type: domain.EventUserDeleted, UserID: id})
	return res, nil
}
