package domain

import "time"

type TicketStatus string

const (
	TicketStatusAvailable TicketStatus = "available"
	TicketStatusSold      TicketStatus = "sold"
	TicketStatusReserved  TicketStatus = "reserved"
)

func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusAvailable, TicketStatusSold, TicketStatusReserved:
		return true
	default:
		return false
	}
}

// Ticket is one numbered unit of a raffle's fixed pool. Tickets are created
// in bulk when the raffle is activated and are never re-created; a ticket
// moves available -> sold exactly once, tied to the order that consumed it.
type Ticket struct {
	ID           uint         `json:"id"`
	RaffleID     uint         `json:"raffle_id"`
	TicketNumber int          `json:"ticket_number"`
	Status       TicketStatus `json:"status"`
	UserID       *uint        `json:"user_id,omitempty"`
	OrderID      *uint        `json:"order_id,omitempty"`
	IsWinner     bool         `json:"is_winner"`
	SoldAt       *time.Time   `json:"sold_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}
