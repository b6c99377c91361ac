package domain

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// FirstIdentityID is the first identifier handed out by the registry.
const FirstIdentityID int64 = 1

// Identity is immutable once created.
type Identity struct {
	ID    int64  `json:"user_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NormalizeEmail trims and lower-cases an address so lookups are stable.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) error {
	return validation.Validate(email, validation.Required, is.EmailFormat)
}

func ValidateNew(name, email string) error {
	if err := validation.Validate(strings.TrimSpace(name), validation.Required.Error("name is required")); err != nil {
		return err
	}
	return ValidateEmail(email)
}
