package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/sorteos-app/sorteos-api/internal/domain"
	"github.com/sorteos-app/sorteos-api/internal/repository"
)

var ErrPasswordRequired = errors.New("a password is required to continue checkout")

// CheckoutBranch tells the client which credential the buyer must supply
// before an order can be created. The new/existing split is deliberate:
// guest checkout stays frictionless at the cost of disclosing whether an
// email is registered.
type CheckoutBranch string

const (
	BranchAuthenticated   CheckoutBranch = "authenticated"
	BranchNewAccount      CheckoutBranch = "new_account"
	BranchExistingAccount CheckoutBranch = "existing_account"
)

type CheckoutUserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
}

// CheckoutService resolves the buyer's identity at the start of checkout.
type CheckoutService struct {
	repo CheckoutUserRepository
}

func NewCheckoutService(repo CheckoutUserRepository) *CheckoutService {
	return &CheckoutService{
		repo: repo,
	}
}

// CustomerDetails is the buyer-entered contact block. It becomes both the
// guest account (when one is created) and the order's customer snapshot.
type CustomerDetails struct {
	Name       string
	Email      string
	Phone      string
	NationalID string
}

// ProbeEmail reports which branch a non-authenticated buyer falls into.
func (s *CheckoutService) ProbeEmail(ctx context.Context, email string) (CheckoutBranch, error) {
	_, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return BranchNewAccount, nil
		}

		return "", fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	return BranchExistingAccount, nil
}

// ResolveIdentity returns the user the new order will belong to.
// An authenticated caller (authenticatedID != 0) bypasses resolution
// entirely. Otherwise the email decides the branch: unknown emails get a
// customer account created from the details and password, known emails must
// present the matching password.
func (s *CheckoutService) ResolveIdentity(ctx context.Context, authenticatedID uint, details CustomerDetails, password string) (domain.User, error) {
	if authenticatedID != 0 {
		user, err := s.repo.FindByID(ctx, authenticatedID)
		if err != nil {
			return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
		}

		return user, nil
	}

	existing, err := s.repo.FindByEmail(ctx, details.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return s.createGuestAccount(ctx, details, password)
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if password == "" {
		return domain.User{}, ErrPasswordRequired
	}
	if err = bcrypt.CompareHashAndPassword([]byte(existing.Password), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	if existing.Status != domain.UserStatusActive {
		return domain.User{}, ErrUserNotActive
	}

	return existing, nil
}

func (s *CheckoutService) createGuestAccount(ctx context.Context, details CustomerDetails, password string) (domain.User, error) {
	if password == "" {
		return domain.User{}, ErrPasswordRequired
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	created, err := s.repo.Create(ctx, domain.User{
		Email:      details.Email,
		Password:   hashed,
		Name:       details.Name,
		Phone:      details.Phone,
		NationalID: details.NationalID,
		Role:       domain.RoleCustomer,
		Status:     domain.UserStatusActive,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}
