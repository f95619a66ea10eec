package service

import (
	"context"
	"fmt"

	"github.com/sorteos-app/sorteos-api/internal/domain"
	"github.com/sorteos-app/sorteos-api/internal/repository"
)

var ErrUserNotFound = repository.ErrUserNotFound

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	UpdateStatus(ctx context.Context, id uint, status domain.UserStatus) error
}

type UserService struct {
	repo  UserRepository
	authz Authorizer
}

func NewUserService(repo UserRepository, authz Authorizer) *UserService {
	return &UserService{
		repo:  repo,
		authz: authz,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

// UpdateStatus suspends or reactivates an account.
func (s *UserService) UpdateStatus(ctx context.Context, admin domain.User, userID uint, status domain.UserStatus) error {
	allowed, err := s.authz.Authorize(admin, "update_status", "users")
	if err != nil {
		return err
	}
	if !allowed {
		return ErrPermissionDenied
	}

	if err = s.repo.UpdateStatus(ctx, userID, status); err != nil {
		return fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	return nil
}
