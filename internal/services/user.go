package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/workspace-admin/apiserver/internal/auth"
	"github.com/workspace-admin/apiserver/internal/store"
	"github.com/workspace-admin/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	List(ctx context.Context) ([]types.User, error)
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateRole(ctx context.Context, id string, role types.Role) error
	Delete(ctx context.Context, id string) error
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo   UserRepository
	hasher auth.Hasher
}

func NewUserService(repo UserRepository, hasher auth.Hasher) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id string) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Authenticate resolves the admin account for a login attempt.
//
// The role is checked before the password so a non-admin account is refused
// with ErrNotAdmin whether or not the password matches.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return types.User{}, ErrMissingFields
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, fmt.Errorf("authenticate: %w", err)
	}

	if user.Role != types.RoleAdmin {
		return types.User{}, ErrNotAdmin
	}
	if !s.hasher.Compare(user.PasswordHash, password) {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Create hashes the password and inserts a new user.
func (s *UserService) Create(ctx context.Context, email, password string, role types.Role) (types.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" || role == "" {
		return types.User{}, ErrMissingFields
	}
	if !role.Valid() {
		return types.User{}, ErrInvalidRole
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return types.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("check existing user: %w", err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		Email:        email,
		Role:         role,
		PasswordHash: hashed,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, ErrEmailTaken
		}
		return types.User{}, err
	}
	return user, nil
}

func (s *UserService) UpdateRole(ctx context.Context, id string, role types.Role) error {
	if strings.TrimSpace(id) == "" || role == "" {
		return ErrMissingFields
	}
	if !role.Valid() {
		return ErrInvalidRole
	}
	return s.repo.UpdateRole(ctx, id, role)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrMissingFields
	}
	return s.repo.Delete(ctx, id)
}
