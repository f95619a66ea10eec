package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type UpdateUserStatusRequest struct {
	Status string `json:"status"`
}

func (req *UpdateUserStatusRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required, validation.In("active", "inactive", "suspended")),
	)
}
