package repository

import (
	"context"
	"fmt"

	"github.com/sorteos-app/sorteos-api/internal/domain"
	"github.com/sorteos-app/sorteos-api/internal/repository/dao"
)

var (
	ErrTicketNotFound = dao.ErrTicketNotFound
	ErrTicketNotSold  = dao.ErrTicketNotSold
)

type TicketDAO interface {
	FindByOrderID(ctx context.Context, orderID uint) ([]dao.Ticket, error)
	FindByUserAndRaffle(ctx context.Context, userID, raffleID uint) ([]dao.Ticket, error)
	FindByRaffleAndNumber(ctx context.Context, raffleID uint, number int) (dao.Ticket, error)
	MarkWinner(ctx context.Context, ticketID uint) error
}

type TicketRepository struct {
	dao TicketDAO
}

func NewTicketRepository(dao TicketDAO) *TicketRepository {
	return &TicketRepository{
		dao: dao,
	}
}

func (r *TicketRepository) FindByOrderID(ctx context.Context, orderID uint) ([]domain.Ticket, error) {
	found, err := r.dao.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByOrderID -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *TicketRepository) FindByUserAndRaffle(ctx context.Context, userID, raffleID uint) ([]domain.Ticket, error) {
	found, err := r.dao.FindByUserAndRaffle(ctx, userID, raffleID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUserAndRaffle -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *TicketRepository) FindByRaffleAndNumber(ctx context.Context, raffleID uint, number int) (domain.Ticket, error) {
	found, err := r.dao.FindByRaffleAndNumber(ctx, raffleID, number)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.FindByRaffleAndNumber -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *TicketRepository) MarkWinner(ctx context.Context, ticketID uint) error {
	if err := r.dao.MarkWinner(ctx, ticketID); err != nil {
		return fmt.Errorf("r.dao.MarkWinner -> %w", err)
	}

	return nil
}

func (r *TicketRepository) daoToDomain(t dao.Ticket) domain.Ticket {
	return domain.Ticket{
		ID:           t.ID,
		RaffleID:     t.RaffleID,
		TicketNumber: t.TicketNumber,
		Status:       domain.TicketStatus(t.Status),
		UserID:       t.UserID,
		OrderID:      t.OrderID,
		IsWinner:     t.IsWinner,
		SoldAt:       t.SoldAt,
		CreatedAt:    t.CreatedAt,
	}
}

func (r *TicketRepository) daosToDomain(tickets []dao.Ticket) []domain.Ticket {
	result := make([]domain.Ticket, len(tickets))
	for i, ticket := range tickets {
		result[i] = r.daoToDomain(ticket)
	}

	return result
}
