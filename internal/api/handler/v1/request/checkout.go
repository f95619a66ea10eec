package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var errQuantityRequired = errors.New("quantity must be at least 1 for custom purchases")

type ProbeEmailRequest struct {
	Email string `json:"email"`
}

func (req *ProbeEmailRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
	)
}

type CheckoutItemRequest struct {
	RaffleID  uint  `json:"raffle_id"`
	PackageID *uint `json:"package_id"`
	Quantity  int   `json:"quantity"`
}

func (req CheckoutItemRequest) Validate() error {
	err := validation.ValidateStruct(
		&req,
		validation.Field(&req.RaffleID, validation.Required),
	)
	if err != nil {
		return err
	}

	// Package lines carry their quantity in the package itself.
	if req.PackageID == nil && req.Quantity < 1 {
		return errQuantityRequired
	}

	return nil
}

// CheckoutRequest carries the buyer's contact block, the cart and, for
// guest flows, the password that creates or unlocks the account. Password
// is not required for authenticated callers.
type CheckoutRequest struct {
	Name          string                `json:"name"`
	Email         string                `json:"email"`
	Phone         string                `json:"phone"`
	NationalID    string                `json:"national_id"`
	Password      string                `json:"password"`
	PaymentMethod string                `json:"payment_method"`
	Items         []CheckoutItemRequest `json:"items"`
}

func (req *CheckoutRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.PaymentMethod, validation.Required, validation.In("bank_transfer", "mobile_payment", "cash")),
		validation.Field(&req.Items, validation.Required, validation.Length(1, 20)),
	)
	if err != nil {
		return err
	}

	for _, item := range req.Items {
		if err = item.Validate(); err != nil {
			return err
		}
	}

	return nil
}
