package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrPrizeNotFound    = errors.New("prize not found")
	ErrPrizeNotUnlocked = errors.New("prize is not unlocked")
)

type Prize struct {
	ID       uint `gorm:"primaryKey"`
	RaffleID uint `gorm:"not null;index"`

	Name        string `gorm:"not null"`
	Description string

	UnlockMode      string `gorm:"not null"`
	UnlockThreshold int    `gorm:"not null"`

	RewardKind         string              `gorm:"not null"`
	CashValue          decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	ProductDescription string

	Status          string `gorm:"not null;default:locked"`
	UnlockedAt      *time.Time
	WinningTicketID *uint

	CreatedAt time.Time
	UpdatedAt time.Time
}

type PrizeDAO struct {
	db *gorm.DB
}

func NewPrizeDAO(db *gorm.DB) *PrizeDAO {
	return &PrizeDAO{
		db: db,
	}
}

// unlockEligiblePrizes flips every locked prize of the raffle whose
// condition is met at the raffle's current sold count. The WHERE clause
// mirrors UnlockCondition.MetBy in integer arithmetic; a prize already
// unlocked or claimed is never touched, so the transition stays monotonic.
func unlockEligiblePrizes(tx *gorm.DB, raffleID uint, now time.Time) error {
	var raffle Raffle
	if err := tx.Select("tickets_sold", "total_tickets").First(&raffle, raffleID).Error; err != nil {
		return err
	}

	return tx.Exec(`
		UPDATE prizes
		SET status = 'unlocked', unlocked_at = ?, updated_at = ?
		WHERE raffle_id = ? AND status = 'locked' AND (
			(unlock_mode = 'tickets_sold' AND unlock_threshold <= ?)
			OR (unlock_mode = 'percentage' AND unlock_threshold * ? <= ? * 100)
		)`, now, now, raffleID, raffle.TicketsSold, raffle.TotalTickets, raffle.TicketsSold).Error
}

func (d *PrizeDAO) Insert(ctx context.Context, prize Prize) (Prize, error) {
	result := d.db.WithContext(ctx).Create(&prize)
	if result.Error != nil {
		return Prize{}, result.Error
	}

	return prize, nil
}

func (d *PrizeDAO) FindByID(ctx context.Context, id uint) (Prize, error) {
	var prize Prize

	result := d.db.WithContext(ctx).First(&prize, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Prize{}, ErrPrizeNotFound
		}

		return Prize{}, result.Error
	}

	return prize, nil
}

func (d *PrizeDAO) FindByRaffleID(ctx context.Context, raffleID uint) ([]Prize, error) {
	var prizes []Prize

	result := d.db.WithContext(ctx).
		Where("raffle_id = ?", raffleID).
		Order("unlock_threshold ASC").
		Find(&prizes)
	if result.Error != nil {
		return nil, result.Error
	}

	return prizes, nil
}

func (d *PrizeDAO) FindLockedByRaffleID(ctx context.Context, raffleID uint) ([]Prize, error) {
	var prizes []Prize

	result := d.db.WithContext(ctx).
		Where("raffle_id = ? AND status = ?", raffleID, "locked").
		Order("unlock_threshold ASC").
		Find(&prizes)
	if result.Error != nil {
		return nil, result.Error
	}

	return prizes, nil
}

// Unlock is guarded on the locked status so it never regresses a prize.
func (d *PrizeDAO) Unlock(ctx context.Context, prizeID uint, now time.Time) (bool, error) {
	result := d.db.WithContext(ctx).Model(&Prize{}).
		Where("id = ? AND status = ?", prizeID, "locked").
		Updates(map[string]interface{}{
			"status":      "unlocked",
			"unlocked_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// Claim binds the winning ticket to an unlocked prize.
func (d *PrizeDAO) Claim(ctx context.Context, prizeID, winningTicketID uint) error {
	result := d.db.WithContext(ctx).Model(&Prize{}).
		Where("id = ? AND status = ?", prizeID, "unlocked").
		Updates(map[string]interface{}{
			"status":            "claimed",
			"winning_ticket_id": winningTicketID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPrizeNotUnlocked
	}

	return nil
}
