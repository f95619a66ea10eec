package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTransition       = errors.New("invalid order status transition")
	ErrMissingPaymentReference = errors.New("payment reference is required to approve an order")
	ErrMissingRejectionReason  = errors.New("rejection reason is required to reject an order")
	ErrMissingReceiptURL       = errors.New("receipt URL is required")
)

type OrderStatus string

const (
	OrderStatusPendingPayment      OrderStatus = "pending_payment"
	OrderStatusPendingVerification OrderStatus = "pending_verification"
	OrderStatusApproved            OrderStatus = "approved"
	OrderStatusRejected            OrderStatus = "rejected"
	OrderStatusCompleted           OrderStatus = "completed"
	OrderStatusCancelled           OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPendingPayment, OrderStatusPendingVerification, OrderStatusApproved,
		OrderStatusRejected, OrderStatusCompleted, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed from s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusRejected || s == OrderStatusCancelled
}

// AwaitsPayment reports whether s is a pre-approval state: approval,
// rejection and cancellation are only allowed from these.
func (s OrderStatus) AwaitsPayment() bool {
	return s == OrderStatusPendingPayment || s == OrderStatusPendingVerification
}

// OrderItem is one raffle+package selection within an order. Immutable
// after order creation.
type OrderItem struct {
	ID        uint            `json:"id"`
	OrderID   uint            `json:"order_id"`
	RaffleID  uint            `json:"raffle_id"`
	PackageID *uint           `json:"package_id,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Order is one checkout transaction. The customer fields are a snapshot
// taken at creation time, not a live reference to the user record.
type Order struct {
	ID            uint   `json:"id"`
	OrderNumber   string `json:"order_number"`
	UserID        uint   `json:"user_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	CustomerDocID string `json:"customer_doc_id"`

	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`

	Status           OrderStatus `json:"status"`
	PaymentMethod    string      `json:"payment_method"`
	ReceiptURL       string      `json:"receipt_url,omitempty"`
	PaymentReference string      `json:"payment_reference,omitempty"`

	ApprovedBy      *uint      `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectedBy      *uint      `json:"rejected_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`

	Items     []OrderItem `json:"items,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// TotalQuantity is the number of tickets this order pays for across all items.
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// SubmitReceipt moves the order to pending_verification once the customer
// has uploaded a payment receipt.
func (o *Order) SubmitReceipt(receiptURL string) error {
	if receiptURL == "" {
		return ErrMissingReceiptURL
	}
	if o.Status != OrderStatusPendingPayment {
		return ErrInvalidTransition
	}

	o.Status = OrderStatusPendingVerification
	o.ReceiptURL = receiptURL

	return nil
}

// Approve marks the order approved. Ticket allocation is the caller's
// responsibility and must happen in the same storage transaction.
func (o *Order) Approve(adminID uint, paymentReference string, now time.Time) error {
	if paymentReference == "" {
		return ErrMissingPaymentReference
	}
	if !o.Status.AwaitsPayment() {
		return ErrInvalidTransition
	}

	o.Status = OrderStatusApproved
	o.PaymentReference = paymentReference
	o.ApprovedBy = &adminID
	o.ApprovedAt = &now

	return nil
}

func (o *Order) Reject(adminID uint, reason string, now time.Time) error {
	if reason == "" {
		return ErrMissingRejectionReason
	}
	if !o.Status.AwaitsPayment() {
		return ErrInvalidTransition
	}

	o.Status = OrderStatusRejected
	o.RejectedBy = &adminID
	o.RejectedAt = &now
	o.RejectionReason = reason

	return nil
}

// Complete is the administrative/reporting transition after approval.
// Tickets were already bound at approval; there is no further ticket effect.
func (o *Order) Complete() error {
	if o.Status != OrderStatusApproved {
		return ErrInvalidTransition
	}

	o.Status = OrderStatusCompleted

	return nil
}

// Cancel is reachable from any pre-approval state. No tickets are released
// because none were reserved before approval.
func (o *Order) Cancel() error {
	if !o.Status.AwaitsPayment() {
		return ErrInvalidTransition
	}

	o.Status = OrderStatusCancelled

	return nil
}
