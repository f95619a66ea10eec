package request

import (
	"errors"

	"github.com/shopspring/decimal"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	errCashValueRequired   = errors.New("cash_value must be a positive amount for cash rewards")
	errProductDescRequired = errors.New("product_description is required for product rewards")
)

type CreatePrizeRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	UnlockMode      string `json:"unlock_mode"`
	UnlockThreshold int    `json:"unlock_threshold"`

	RewardKind         string          `json:"reward_kind"`
	CashValue          decimal.Decimal `json:"cash_value"`
	ProductDescription string          `json:"product_description"`
}

func (req *CreatePrizeRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Description, validation.Length(0, 1000)),
		validation.Field(&req.UnlockMode, validation.Required, validation.In("tickets_sold", "percentage")),
		validation.Field(&req.UnlockThreshold, validation.Required, validation.Min(1)),
		validation.Field(&req.RewardKind, validation.Required, validation.In("cash", "product")),
	)
	if err != nil {
		return err
	}

	// One reward field is mandatory depending on the kind; the other is ignored.
	switch req.RewardKind {
	case "cash":
		if !req.CashValue.IsPositive() {
			return errCashValueRequired
		}
	case "product":
		if req.ProductDescription == "" {
			return errProductDescRequired
		}
	}

	return nil
}

type DesignateWinnerRequest struct {
	TicketNumber int `json:"ticket_number"`
}

func (req *DesignateWinnerRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TicketNumber, validation.Required, validation.Min(1)),
	)
}
