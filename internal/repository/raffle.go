package repository

import (
	"context"
	"fmt"

	"github.com/sorteos-app/sorteos-api/internal/domain"
	"github.com/sorteos-app/sorteos-api/internal/repository/dao"
)

var (
	ErrRaffleNotFound       = dao.ErrRaffleNotFound
	ErrRaffleNotDraft       = dao.ErrRaffleNotDraft
	ErrRaffleStatusConflict = dao.ErrRaffleStatusConflict
	ErrPackageNotFound      = dao.ErrPackageNotFound
	ErrPackageInUse         = dao.ErrPackageInUse
)

type RaffleDAO interface {
	Insert(ctx context.Context, raffle dao.Raffle) (dao.Raffle, error)
	FindByID(ctx context.Context, id uint) (dao.Raffle, error)
	FindAll(ctx context.Context) ([]dao.Raffle, error)
	FindByStatus(ctx context.Context, status string) ([]dao.Raffle, error)
	Activate(ctx context.Context, raffleID uint) error
	UpdateStatus(ctx context.Context, raffleID uint, from, to string) error
	InsertPackage(ctx context.Context, pkg dao.PricingPackage) (dao.PricingPackage, error)
	FindPackageByID(ctx context.Context, id uint) (dao.PricingPackage, error)
	FindPackagesByRaffleID(ctx context.Context, raffleID uint, activeOnly bool) ([]dao.PricingPackage, error)
	DeactivatePackage(ctx context.Context, id uint) error
	DeletePackage(ctx context.Context, id uint) error
	SalesSummary(ctx context.Context) ([]dao.RaffleSales, error)
}

type RaffleRepository struct {
	dao RaffleDAO
}

func NewRaffleRepository(dao RaffleDAO) *RaffleRepository {
	return &RaffleRepository{
		dao: dao,
	}
}

func (r *RaffleRepository) Create(ctx context.Context, raffle domain.Raffle) (domain.Raffle, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(raffle))
	if err != nil {
		return domain.Raffle{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *RaffleRepository) FindByID(ctx context.Context, id uint) (domain.Raffle, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Raffle{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *RaffleRepository) FindAll(ctx context.Context) ([]domain.Raffle, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	raffles := make([]domain.Raffle, len(found))
	for i, raffle := range found {
		raffles[i] = r.daoToDomain(raffle)
	}

	return raffles, nil
}

func (r *RaffleRepository) FindByStatus(ctx context.Context, status domain.RaffleStatus) ([]domain.Raffle, error) {
	found, err := r.dao.FindByStatus(ctx, string(status))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByStatus -> %w", err)
	}

	raffles := make([]domain.Raffle, len(found))
	for i, raffle := range found {
		raffles[i] = r.daoToDomain(raffle)
	}

	return raffles, nil
}

func (r *RaffleRepository) Activate(ctx context.Context, raffleID uint) error {
	if err := r.dao.Activate(ctx, raffleID); err != nil {
		return fmt.Errorf("r.dao.Activate -> %w", err)
	}

	return nil
}

func (r *RaffleRepository) UpdateStatus(ctx context.Context, raffleID uint, from, to domain.RaffleStatus) error {
	if err := r.dao.UpdateStatus(ctx, raffleID, string(from), string(to)); err != nil {
		return fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return nil
}

func (r *RaffleRepository) CreatePackage(ctx context.Context, pkg domain.PricingPackage) (domain.PricingPackage, error) {
	created, err := r.dao.InsertPackage(ctx, r.packageDomainToDao(pkg))
	if err != nil {
		return domain.PricingPackage{}, fmt.Errorf("r.dao.InsertPackage -> %w", err)
	}

	return r.packageDaoToDomain(created), nil
}

func (r *RaffleRepository) FindPackageByID(ctx context.Context, id uint) (domain.PricingPackage, error) {
	found, err := r.dao.FindPackageByID(ctx, id)
	if err != nil {
		return domain.PricingPackage{}, fmt.Errorf("r.dao.FindPackageByID -> %w", err)
	}

	return r.packageDaoToDomain(found), nil
}

func (r *RaffleRepository) FindPackagesByRaffleID(ctx context.Context, raffleID uint, activeOnly bool) ([]domain.PricingPackage, error) {
	found, err := r.dao.FindPackagesByRaffleID(ctx, raffleID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindPackagesByRaffleID -> %w", err)
	}

	pkgs := make([]domain.PricingPackage, len(found))
	for i, pkg := range found {
		pkgs[i] = r.packageDaoToDomain(pkg)
	}

	return pkgs, nil
}

func (r *RaffleRepository) DeactivatePackage(ctx context.Context, id uint) error {
	if err := r.dao.DeactivatePackage(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeactivatePackage -> %w", err)
	}

	return nil
}

func (r *RaffleRepository) DeletePackage(ctx context.Context, id uint) error {
	if err := r.dao.DeletePackage(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeletePackage -> %w", err)
	}

	return nil
}

func (r *RaffleRepository) SalesSummary(ctx context.Context) ([]domain.RaffleSales, error) {
	found, err := r.dao.SalesSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.SalesSummary -> %w", err)
	}

	sales := make([]domain.RaffleSales, len(found))
	for i, row := range found {
		sales[i] = domain.RaffleSales{
			RaffleID:         row.RaffleID,
			Name:             row.Name,
			Status:           domain.RaffleStatus(row.Status),
			TotalTickets:     row.TotalTickets,
			TicketsSold:      row.TicketsSold,
			TicketsAvailable: row.TicketsAvailable,
		}
	}

	return sales, nil
}

func (r *RaffleRepository) domainToDao(raffle domain.Raffle) dao.Raffle {
	return dao.Raffle{
		ID:               raffle.ID,
		Name:             raffle.Name,
		Description:      raffle.Description,
		TotalTickets:     raffle.TotalTickets,
		TicketPrice:      raffle.TicketPrice,
		TaxRate:          raffle.TaxRate,
		PriceIncludesTax: raffle.PriceIncludesTax,
		MinPurchase:      raffle.MinPurchase,
		MaxPurchase:      raffle.MaxPurchase,
		Status:           string(raffle.Status),
		TicketsSold:      raffle.TicketsSold,
		TicketsAvailable: raffle.TicketsAvailable,
		CreatedAt:        raffle.CreatedAt,
		UpdatedAt:        raffle.UpdatedAt,
	}
}

func (r *RaffleRepository) daoToDomain(raffle dao.Raffle) domain.Raffle {
	return domain.Raffle{
		ID:               raffle.ID,
		Name:             raffle.Name,
		Description:      raffle.Description,
		TotalTickets:     raffle.TotalTickets,
		TicketPrice:      raffle.TicketPrice,
		TaxRate:          raffle.TaxRate,
		PriceIncludesTax: raffle.PriceIncludesTax,
		MinPurchase:      raffle.MinPurchase,
		MaxPurchase:      raffle.MaxPurchase,
		Status:           domain.RaffleStatus(raffle.Status),
		TicketsSold:      raffle.TicketsSold,
		TicketsAvailable: raffle.TicketsAvailable,
		CreatedAt:        raffle.CreatedAt,
		UpdatedAt:        raffle.UpdatedAt,
	}
}

func (r *RaffleRepository) packageDomainToDao(pkg domain.PricingPackage) dao.PricingPackage {
	return dao.PricingPackage{
		ID:              pkg.ID,
		RaffleID:        pkg.RaffleID,
		Name:            pkg.Name,
		Quantity:        pkg.Quantity,
		Price:           pkg.Price,
		DiscountPercent: pkg.DiscountPercent,
		IsActive:        pkg.IsActive,
		CreatedAt:       pkg.CreatedAt,
		UpdatedAt:       pkg.UpdatedAt,
	}
}

func (r *RaffleRepository) packageDaoToDomain(pkg dao.PricingPackage) domain.PricingPackage {
	return domain.PricingPackage{
		ID:              pkg.ID,
		RaffleID:        pkg.RaffleID,
		Name:            pkg.Name,
		Quantity:        pkg.Quantity,
		Price:           pkg.Price,
		DiscountPercent: pkg.DiscountPercent,
		IsActive:        pkg.IsActive,
		CreatedAt:       pkg.CreatedAt,
		UpdatedAt:       pkg.UpdatedAt,
	}
}
