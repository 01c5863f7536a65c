package auth

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// UpsertRequest is the payload of the account upsert endpoint, the sole
// seam by which a user id becomes known to the presence system.
type UpsertRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=1,max=120"`
	Role  string `json:"role" validate:"required,oneof=student alumni admin"`
}

func ValidateUpsert(req UpsertRequest) error {
	return validate.Struct(req)
}

// RegisterRequest is the local-credential variant of the upsert seam.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=1,max=120"`
	Role     string `json:"role" validate:"required,oneof=student alumni admin"`
	Password string `json:"password" validate:"required,min=8,max=256"`
}

func ValidateRegister(req RegisterRequest) error {
	return validate.Struct(req)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func ValidateLogin(req LoginRequest) error {
	return validate.Struct(req)
}
