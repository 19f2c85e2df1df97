package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lumen-ngo/lumen/internal/auth"
	"github.com/lumen-ngo/lumen/internal/platform/httpx"
	"github.com/lumen-ngo/lumen/internal/roles"
)

// ErrRoleTooPrivileged rejects creating an account above the creator's role.
var ErrRoleTooPrivileged = fmt.Errorf("users: cannot grant a role above your own: %w", httpx.ErrForbidden)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context, filter ListFilter) ([]User, int, error)
	CreateUser(ctx context.Context, input NewUser, actorID string) (User, error)
}

// Service handles user business logic.
type Service struct {
	repo     RepositoryPort
	registry *roles.Registry
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, registry *roles.Registry) *Service {
	return &Service{repo: repo, registry: registry}
}

// ListUsers returns one page of users.
func (s *Service) ListUsers(ctx context.Context, filter ListFilter) ([]User, int, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, 0, fmt.Errorf("users: unknown role filter %q: %w", filter.Role, httpx.ErrValidation)
	}
	return s.repo.ListUsers(ctx, filter)
}

// CreateUser registers a new account with a temporary password that must be
// changed at first login. actor may only grant roles at or below its own.
func (s *Service) CreateUser(ctx context.Context, actor auth.Identity, input CreateInput) (User, error) {
	role, err := roles.Parse(input.Role)
	if err != nil {
		return User{}, fmt.Errorf("users: %w: %w", httpx.ErrValidation, err)
	}
	actorLevel, err := s.registry.LevelOf(actor.Role)
	if err != nil {
		if errors.Is(err, roles.ErrUnknownRole) {
			return User{}, ErrRoleTooPrivileged
		}
		return User{}, err
	}
	roleLevel, err := s.registry.LevelOf(role)
	if err != nil {
		return User{}, err
	}
	if actorLevel > roleLevel {
		return User{}, ErrRoleTooPrivileged
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return User{}, err
	}
	return s.repo.CreateUser(ctx, NewUser{
		Email:        strings.TrimSpace(input.Email),
		Name:         strings.TrimSpace(input.Name),
		Role:         role,
		PasswordHash: hash,
	}, actor.UserID)
}

// Bootstrap creates the first administrator. It is only reachable from the
// operator CLI, so there is no acting identity and the audit actor is empty.
func (s *Service) Bootstrap(ctx context.Context, email, name, password string) (User, error) {
	input := CreateInput{Email: email, Name: name, Role: string(roles.Administrator), Password: password}
	if err := httpx.NewValidator().Struct(input); err != nil {
		return User{}, fmt.Errorf("users: bootstrap: %w: %w", httpx.ErrValidation, err)
	}
	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return User{}, err
	}
	return s.repo.CreateUser(ctx, NewUser{
		Email:        strings.TrimSpace(input.Email),
		Name:         strings.TrimSpace(input.Name),
		Role:         roles.Administrator,
		PasswordHash: hash,
	}, "")
}
