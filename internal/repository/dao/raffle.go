package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrRaffleNotFound       = errors.New("raffle not found")
	ErrRaffleNotDraft       = errors.New("raffle is not in draft status")
	ErrRaffleStatusConflict = errors.New("raffle is not in the expected status")
	ErrPackageNotFound      = errors.New("pricing package not found")
	ErrPackageInUse         = errors.New("pricing package is referenced by orders")
)

type Raffle struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description string

	TotalTickets     int             `gorm:"not null"`
	TicketPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxRate          decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	PriceIncludesTax bool            `gorm:"not null;default:false"`
	MinPurchase      int             `gorm:"not null;default:1"`
	MaxPurchase      int             `gorm:"not null"`

	Status           string `gorm:"not null;default:draft"`
	TicketsSold      int    `gorm:"not null;default:0"`
	TicketsAvailable int    `gorm:"not null;default:0"`

	Packages []PricingPackage `gorm:"foreignKey:RaffleID"`
	Prizes   []Prize          `gorm:"foreignKey:RaffleID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type PricingPackage struct {
	ID       uint `gorm:"primaryKey"`
	RaffleID uint `gorm:"not null;index"`

	Name            string          `gorm:"not null"`
	Quantity        int             `gorm:"not null"`
	Price           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	IsActive        bool            `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type RaffleSales struct {
	RaffleID         uint
	Name             string
	Status           string
	TotalTickets     int
	TicketsSold      int
	TicketsAvailable int
}

type RaffleDAO struct {
	db *gorm.DB
}

func NewRaffleDAO(db *gorm.DB) *RaffleDAO {
	return &RaffleDAO{
		db: db,
	}
}

func (d *RaffleDAO) Insert(ctx context.Context, raffle Raffle) (Raffle, error) {
	result := d.db.WithContext(ctx).Create(&raffle)
	if result.Error != nil {
		return Raffle{}, result.Error
	}

	return raffle, nil
}

func (d *RaffleDAO) FindByID(ctx context.Context, id uint) (Raffle, error) {
	var raffle Raffle

	result := d.db.WithContext(ctx).First(&raffle, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Raffle{}, ErrRaffleNotFound
		}

		return Raffle{}, result.Error
	}

	return raffle, nil
}

func (d *RaffleDAO) FindAll(ctx context.Context) ([]Raffle, error) {
	var raffles []Raffle

	result := d.db.WithContext(ctx).Order("created_at DESC").Find(&raffles)
	if result.Error != nil {
		return nil, result.Error
	}

	return raffles, nil
}

func (d *RaffleDAO) FindByStatus(ctx context.Context, status string) ([]Raffle, error) {
	var raffles []Raffle

	result := d.db.WithContext(ctx).Where("status = ?", status).Order("created_at DESC").Find(&raffles)
	if result.Error != nil {
		return nil, result.Error
	}

	return raffles, nil
}

// Activate moves a draft raffle to active and generates its dense ticket
// pool 1..total_tickets in one transaction. The pool is created exactly
// once; a raffle that is not draft is left untouched.
func (d *RaffleDAO) Activate(ctx context.Context, raffleID uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var raffle Raffle
		if err := tx.First(&raffle, raffleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRaffleNotFound
			}
			return err
		}

		result := tx.Model(&Raffle{}).
			Where("id = ? AND status = ?", raffleID, "draft").
			Updates(map[string]interface{}{
				"status":            "active",
				"tickets_sold":      0,
				"tickets_available": raffle.TotalTickets,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRaffleNotDraft
		}

		tickets := make([]Ticket, raffle.TotalTickets)
		for i := range tickets {
			tickets[i] = Ticket{
				RaffleID:     raffleID,
				TicketNumber: i + 1,
				Status:       "available",
			}
		}

		return tx.CreateInBatches(tickets, 500).Error
	})
}

func (d *RaffleDAO) UpdateStatus(ctx context.Context, raffleID uint, from, to string) error {
	result := d.db.WithContext(ctx).Model(&Raffle{}).
		Where("id = ? AND status = ?", raffleID, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Zero rows means the raffle is missing or in another status;
		// tell the two cases apart for the caller.
		var count int64
		if err := d.db.WithContext(ctx).Model(&Raffle{}).Where("id = ?", raffleID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrRaffleNotFound
		}

		return ErrRaffleStatusConflict
	}

	return nil
}

// applyTicketCounters moves qty tickets from available to sold, guarded so
// the conservation invariant cannot go negative under concurrency.
func applyTicketCounters(tx *gorm.DB, raffleID uint, qty int) error {
	result := tx.Model(&Raffle{}).
		Where("id = ? AND tickets_available >= ?", raffleID, qty).
		Updates(map[string]interface{}{
			"tickets_sold":      gorm.Expr("tickets_sold + ?", qty),
			"tickets_available": gorm.Expr("tickets_available - ?", qty),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientTickets
	}

	return nil
}

func (d *RaffleDAO) InsertPackage(ctx context.Context, pkg PricingPackage) (PricingPackage, error) {
	result := d.db.WithContext(ctx).Create(&pkg)
	if result.Error != nil {
		return PricingPackage{}, result.Error
	}

	return pkg, nil
}

func (d *RaffleDAO) FindPackageByID(ctx context.Context, id uint) (PricingPackage, error) {
	var pkg PricingPackage

	result := d.db.WithContext(ctx).First(&pkg, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return PricingPackage{}, ErrPackageNotFound
		}

		return PricingPackage{}, result.Error
	}

	return pkg, nil
}

func (d *RaffleDAO) FindPackagesByRaffleID(ctx context.Context, raffleID uint, activeOnly bool) ([]PricingPackage, error) {
	var pkgs []PricingPackage

	query := d.db.WithContext(ctx).Where("raffle_id = ?", raffleID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	result := query.Order("quantity ASC").Find(&pkgs)
	if result.Error != nil {
		return nil, result.Error
	}

	return pkgs, nil
}

// DeactivatePackage soft-deactivates a package. Packages referenced by
// order lines are never hard-deleted.
func (d *RaffleDAO) DeactivatePackage(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Model(&PricingPackage{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPackageNotFound
	}

	return nil
}

// DeletePackage hard-deletes a package. Callers must first check the
// package is not referenced by any order line.
func (d *RaffleDAO) DeletePackage(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&PricingPackage{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPackageNotFound
	}

	return nil
}

func (d *RaffleDAO) SalesSummary(ctx context.Context) ([]RaffleSales, error) {
	var sales []RaffleSales

	result := d.db.WithContext(ctx).Model(&Raffle{}).
		Select("id AS raffle_id, name, status, total_tickets, tickets_sold, tickets_available").
		Order("id ASC").
		Scan(&sales)
	if result.Error != nil {
		return nil, result.Error
	}

	return sales, nil
}
