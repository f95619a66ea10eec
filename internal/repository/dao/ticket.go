package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrInsufficientTickets = errors.New("not enough available tickets")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrTicketNotSold       = errors.New("ticket has not been sold")
)

type Ticket struct {
	ID       uint `gorm:"primaryKey"`
	RaffleID uint `gorm:"not null;index;uniqueIndex:idx_tickets_raffle_number,priority:1"`

	TicketNumber int    `gorm:"not null;uniqueIndex:idx_tickets_raffle_number,priority:2"`
	Status       string `gorm:"not null;default:available;index"`

	UserID  *uint
	OrderID *uint `gorm:"index"`

	IsWinner bool `gorm:"not null;default:false"`
	SoldAt   *time.Time

	CreatedAt time.Time
}

type TicketDAO struct {
	db *gorm.DB
}

func NewTicketDAO(db *gorm.DB) *TicketDAO {
	return &TicketDAO{
		db: db,
	}
}

// claimTickets atomically binds the qty lowest-numbered available tickets
// of a raffle to an order. The subselect locks candidate rows with
// FOR UPDATE SKIP LOCKED so concurrent approvals for the same raffle never
// claim the same ticket; if fewer than qty rows were flipped the caller
// must roll back the surrounding transaction.
func claimTickets(tx *gorm.DB, raffleID, orderID, userID uint, qty int, now time.Time) error {
	result := tx.Exec(`
		UPDATE tickets
		SET status = 'sold', order_id = ?, user_id = ?, sold_at = ?
		WHERE id IN (
			SELECT id FROM tickets
			WHERE raffle_id = ? AND status = 'available'
			ORDER BY ticket_number ASC
			LIMIT ?
			FOR UPDATE SKIP LOCKED
		)`, orderID, userID, now, raffleID, qty)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != int64(qty) {
		return ErrInsufficientTickets
	}

	return nil
}

func (d *TicketDAO) FindByOrderID(ctx context.Context, orderID uint) ([]Ticket, error) {
	var tickets []Ticket

	result := d.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("ticket_number ASC").
		Find(&tickets)
	if result.Error != nil {
		return nil, result.Error
	}

	return tickets, nil
}

func (d *TicketDAO) FindByUserAndRaffle(ctx context.Context, userID, raffleID uint) ([]Ticket, error) {
	var tickets []Ticket

	result := d.db.WithContext(ctx).
		Where("user_id = ? AND raffle_id = ?", userID, raffleID).
		Order("ticket_number ASC").
		Find(&tickets)
	if result.Error != nil {
		return nil, result.Error
	}

	return tickets, nil
}

func (d *TicketDAO) FindByRaffleAndNumber(ctx context.Context, raffleID uint, number int) (Ticket, error) {
	var ticket Ticket

	result := d.db.WithContext(ctx).
		First(&ticket, "raffle_id = ? AND ticket_number = ?", raffleID, number)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrTicketNotFound
		}

		return Ticket{}, result.Error
	}

	return ticket, nil
}

func (d *TicketDAO) CountAvailable(ctx context.Context, raffleID uint) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Ticket{}).
		Where("raffle_id = ? AND status = ?", raffleID, "available").
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

// MarkWinner flags a sold ticket as a winner. Only sold tickets can win.
func (d *TicketDAO) MarkWinner(ctx context.Context, ticketID uint) error {
	result := d.db.WithContext(ctx).Model(&Ticket{}).
		Where("id = ? AND status = ?", ticketID, "sold").
		Update("is_winner", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTicketNotSold
	}

	return nil
}
