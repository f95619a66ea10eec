package request

import (
	"errors"

	"github.com/shopspring/decimal"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	errNotPositiveAmount = errors.New("must be a positive amount")
	errNegativeAmount    = errors.New("must not be negative")
)

type CreateRaffleRequest struct {
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	TotalTickets     int             `json:"total_tickets"`
	TicketPrice      decimal.Decimal `json:"ticket_price"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	PriceIncludesTax bool            `json:"price_includes_tax"`
	MinPurchase      int             `json:"min_purchase"`
	MaxPurchase      int             `json:"max_purchase"`
}

func (req *CreateRaffleRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Description, validation.Length(0, 1000)),
		validation.Field(&req.TotalTickets, validation.Required, validation.Min(1)),
		validation.Field(&req.TicketPrice, validation.By(positiveDecimal)),
		validation.Field(&req.TaxRate, validation.By(nonNegativeDecimal)),
		validation.Field(&req.MinPurchase, validation.Min(0)),
		validation.Field(&req.MaxPurchase, validation.Min(0)),
	)
}

type CreatePackageRequest struct {
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

func (req *CreatePackageRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Quantity, validation.Required, validation.Min(1)),
		validation.Field(&req.Price, validation.By(positiveDecimal)),
		validation.Field(&req.DiscountPercent, validation.By(nonNegativeDecimal)),
	)
}

func positiveDecimal(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok || !d.IsPositive() {
		return errNotPositiveAmount
	}

	return nil
}

func nonNegativeDecimal(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok || d.IsNegative() {
		return errNegativeAmount
	}

	return nil
}
