package notification

import (
	"context"

	"github.com/shopspring/decimal"
)

type EventKind string

const (
	EventOrderApproved EventKind = "order.approved"
	EventOrderRejected EventKind = "order.rejected"
)

// Event describes an order outcome to announce to the customer. Delivery is
// best-effort: a failed notification never fails the transition that
// produced it.
type Event struct {
	Kind           EventKind
	OrderNumber    string
	RecipientName  string
	RecipientEmail string
	Total          decimal.Decimal
	TicketNumbers  []int
	Reason         string
}

type Notifier interface {
	Notify(ctx context.Context, event Event) error
}
