package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sorteos-app/sorteos-api/internal/domain"
	"github.com/sorteos-app/sorteos-api/internal/repository"
)

var (
	ErrRaffleNotDraft    = repository.ErrRaffleNotDraft
	ErrPackageInUse      = repository.ErrPackageInUse
	ErrInvalidRaffle     = errors.New("raffle configuration is invalid")
	ErrRaffleNotComplete = errors.New("raffle cannot be completed from its current status")
)

type RaffleRepository interface {
	Create(ctx context.Context, raffle domain.Raffle) (domain.Raffle, error)
	FindByID(ctx context.Context, id uint) (domain.Raffle, error)
	FindAll(ctx context.Context) ([]domain.Raffle, error)
	FindByStatus(ctx context.Context, status domain.RaffleStatus) ([]domain.Raffle, error)
	Activate(ctx context.Context, raffleID uint) error
	UpdateStatus(ctx context.Context, raffleID uint, from, to domain.RaffleStatus) error
	CreatePackage(ctx context.Context, pkg domain.PricingPackage) (domain.PricingPackage, error)
	FindPackageByID(ctx context.Context, id uint) (domain.PricingPackage, error)
	FindPackagesByRaffleID(ctx context.Context, raffleID uint, activeOnly bool) ([]domain.PricingPackage, error)
	DeactivatePackage(ctx context.Context, id uint) error
	DeletePackage(ctx context.Context, id uint) error
	SalesSummary(ctx context.Context) ([]domain.RaffleSales, error)
}

type RaffleOrderRepository interface {
	IsPackageReferenced(ctx context.Context, packageID uint) (bool, error)
}

type RaffleService struct {
	repo      RaffleRepository
	orderRepo RaffleOrderRepository
	authz     Authorizer
}

func NewRaffleService(repo RaffleRepository, orderRepo RaffleOrderRepository, authz Authorizer) *RaffleService {
	return &RaffleService{
		repo:      repo,
		orderRepo: orderRepo,
		authz:     authz,
	}
}

// CreateRaffle registers a new campaign in draft. The ticket pool is not
// generated until activation, so totals can still be corrected.
func (s *RaffleService) CreateRaffle(ctx context.Context, admin domain.User, raffle domain.Raffle) (domain.Raffle, error) {
	if err := s.authorize(admin, "create", "raffles"); err != nil {
		return domain.Raffle{}, err
	}

	if raffle.TotalTickets <= 0 || raffle.TicketPrice.IsNegative() || raffle.TaxRate.IsNegative() {
		return domain.Raffle{}, ErrInvalidRaffle
	}
	if raffle.MaxPurchase > 0 && raffle.MinPurchase > raffle.MaxPurchase {
		return domain.Raffle{}, ErrInvalidRaffle
	}

	raffle.Status = domain.RaffleStatusDraft
	raffle.TicketsSold = 0
	raffle.TicketsAvailable = raffle.TotalTickets

	created, err := s.repo.Create(ctx, raffle)
	if err != nil {
		return domain.Raffle{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

// ActivateRaffle opens sales. The dense ticket pool 1..totalTickets is
// generated in the same transaction that flips the status, fixing the pool
// size for good.
func (s *RaffleService) ActivateRaffle(ctx context.Context, admin domain.User, raffleID uint) (domain.Raffle, error) {
	if err := s.authorize(admin, "activate", "raffles"); err != nil {
		return domain.Raffle{}, err
	}

	if err := s.repo.Activate(ctx, raffleID); err != nil {
		return domain.Raffle{}, err
	}

	return s.repo.FindByID(ctx, raffleID)
}

// CompleteRaffle closes an active raffle after the draw.
func (s *RaffleService) CompleteRaffle(ctx context.Context, admin domain.User, raffleID uint) (domain.Raffle, error) {
	if err := s.authorize(admin, "update", "raffles"); err != nil {
		return domain.Raffle{}, err
	}

	if err := s.repo.UpdateStatus(ctx, raffleID, domain.RaffleStatusActive, domain.RaffleStatusCompleted); err != nil {
		if errors.Is(err, repository.ErrRaffleNotFound) {
			return domain.Raffle{}, err
		}

		return domain.Raffle{}, ErrRaffleNotComplete
	}

	return s.repo.FindByID(ctx, raffleID)
}

func (s *RaffleService) GetRaffle(ctx context.Context, id uint) (domain.Raffle, error) {
	raffle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Raffle{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return raffle, nil
}

func (s *RaffleService) ListRaffles(ctx context.Context, status domain.RaffleStatus) ([]domain.Raffle, error) {
	if status == "" {
		raffles, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
		}

		return raffles, nil
	}

	raffles, err := s.repo.FindByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByStatus -> %w", err)
	}

	return raffles, nil
}

func (s *RaffleService) CreatePackage(ctx context.Context, admin domain.User, pkg domain.PricingPackage) (domain.PricingPackage, error) {
	if err := s.authorize(admin, "create", "packages"); err != nil {
		return domain.PricingPackage{}, err
	}

	if pkg.Quantity <= 0 || pkg.Price.IsNegative() {
		return domain.PricingPackage{}, ErrInvalidRaffle
	}

	if _, err := s.repo.FindByID(ctx, pkg.RaffleID); err != nil {
		return domain.PricingPackage{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	pkg.IsActive = true

	created, err := s.repo.CreatePackage(ctx, pkg)
	if err != nil {
		return domain.PricingPackage{}, fmt.Errorf("s.repo.CreatePackage -> %w", err)
	}

	return created, nil
}

func (s *RaffleService) ListPackages(ctx context.Context, raffleID uint, activeOnly bool) ([]domain.PricingPackage, error) {
	packages, err := s.repo.FindPackagesByRaffleID(ctx, raffleID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindPackagesByRaffleID -> %w", err)
	}

	return packages, nil
}

// DeactivatePackage takes a package off sale without removing it.
func (s *RaffleService) DeactivatePackage(ctx context.Context, admin domain.User, packageID uint) error {
	if err := s.authorize(admin, "delete", "packages"); err != nil {
		return err
	}

	if err := s.repo.DeactivatePackage(ctx, packageID); err != nil {
		return fmt.Errorf("s.repo.DeactivatePackage -> %w", err)
	}

	return nil
}

// DeletePackage removes a package for good. A package referenced by an
// order line is never hard-deleted so historical orders keep resolving;
// such packages can only be deactivated.
func (s *RaffleService) DeletePackage(ctx context.Context, admin domain.User, packageID uint) error {
	if err := s.authorize(admin, "delete", "packages"); err != nil {
		return err
	}

	referenced, err := s.orderRepo.IsPackageReferenced(ctx, packageID)
	if err != nil {
		return fmt.Errorf("s.orderRepo.IsPackageReferenced -> %w", err)
	}
	if referenced {
		return ErrPackageInUse
	}

	if err = s.repo.DeletePackage(ctx, packageID); err != nil {
		return fmt.Errorf("s.repo.DeletePackage -> %w", err)
	}

	return nil
}

func (s *RaffleService) authorize(user domain.User, action, resource string) error {
	allowed, err := s.authz.Authorize(user, action, resource)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrPermissionDenied
	}

	return nil
}
