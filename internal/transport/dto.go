package transport

import (
	"errors"
)

// ErrValidation marks a request whose shape is wrong; handlers map it to
// 422 with the field detail attached.
var ErrValidation = errors.New("validation")

// FieldErrors collects per-field problems of one request body.
type FieldErrors map[string]string

func (f FieldErrors) Error() string { return "validation failed" }

func (f FieldErrors) Is(target error) bool { return target == ErrValidation }

type CreateClientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (r *CreateClientRequest) Validate() error {
	fields := FieldErrors{}
	if r.Name == "" {
		fields["name"] = "required"
	}
	if r.Email == "" {
		fields["email"] = "required"
	}
	if r.Phone == "" {
		fields["phone"] = "required"
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}

type CreateInstrumentRequest struct {
	Name  string   `json:"name"`
	Brand string   `json:"brand"`
	Price *float64 `json:"price"`
	Stock *uint    `json:"stock"`
}

func (r *CreateInstrumentRequest) Validate() error {
	fields := FieldErrors{}
	if r.Name == "" {
		fields["name"] = "required"
	}
	if r.Brand == "" {
		fields["brand"] = "required"
	}
	if r.Price == nil {
		fields["price"] = "required"
	}
	if r.Stock == nil {
		fields["stock"] = "required"
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}

type CreateOrderRequest struct {
	ClientID     *int  `json:"client_id"`
	InstrumentID *int  `json:"instrument_id"`
	Quantity     *uint `json:"quantity"`
}

func (r *CreateOrderRequest) Validate() error {
	fields := FieldErrors{}
	if r.ClientID == nil {
		fields["client_id"] = "required"
	}
	if r.InstrumentID == nil {
		fields["instrument_id"] = "required"
	}
	if r.Quantity == nil {
		fields["quantity"] = "required"
	} else if *r.Quantity == 0 {
		fields["quantity"] = "must be > 0"
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}
