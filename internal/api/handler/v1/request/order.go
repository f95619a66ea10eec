package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type SubmitReceiptRequest struct {
	ReceiptURL string `json:"receipt_url"`
}

func (req *SubmitReceiptRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ReceiptURL, validation.Required, is.URL),
	)
}

type ApproveOrderRequest struct {
	PaymentReference string `json:"payment_reference"`
}

func (req *ApproveOrderRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.PaymentReference, validation.Required, validation.Length(2, 100)),
	)
}

type RejectOrderRequest struct {
	Reason string `json:"reason"`
}

func (req *RejectOrderRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Reason, validation.Required, validation.Length(2, 500)),
	)
}
