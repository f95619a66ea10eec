package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RaffleStatus string

const (
	RaffleStatusDraft     RaffleStatus = "draft"
	RaffleStatusActive    RaffleStatus = "active"
	RaffleStatusCompleted RaffleStatus = "completed"
	RaffleStatusCancelled RaffleStatus = "cancelled"
)

func (s RaffleStatus) IsValid() bool {
	switch s {
	case RaffleStatusDraft, RaffleStatusActive, RaffleStatusCompleted, RaffleStatusCancelled:
		return true
	default:
		return false
	}
}

// Raffle is a sales campaign over a fixed pool of numbered tickets.
// TicketsSold + TicketsAvailable == TotalTickets holds at all times once
// the pool has been generated.
type Raffle struct {
	ID               uint            `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	TotalTickets     int             `json:"total_tickets"`
	TicketPrice      decimal.Decimal `json:"ticket_price"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	PriceIncludesTax bool            `json:"price_includes_tax"`
	MinPurchase      int             `json:"min_purchase"`
	MaxPurchase      int             `json:"max_purchase"`
	Status           RaffleStatus    `json:"status"`
	TicketsSold      int             `json:"tickets_sold"`
	TicketsAvailable int             `json:"tickets_available"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (r *Raffle) IsActive() bool {
	return r.Status == RaffleStatusActive
}

// RaffleSales is one dashboard aggregate row. These reads are informational
// and eventually consistent; they take no locks.
type RaffleSales struct {
	RaffleID         uint         `json:"raffle_id"`
	Name             string       `json:"name"`
	Status           RaffleStatus `json:"status"`
	TotalTickets     int          `json:"total_tickets"`
	TicketsSold      int          `json:"tickets_sold"`
	TicketsAvailable int          `json:"tickets_available"`
}

// PricingPackage is a pre-priced bundle of N tickets for one raffle.
// Packages referenced by an order line are never deleted, only deactivated.
type PricingPackage struct {
	ID              uint            `json:"id"`
	RaffleID        uint            `json:"raffle_id"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
