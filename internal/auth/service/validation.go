package service

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

type registerCredentials struct {
	Username string `validate:"required,maxbytes=64,trimmed"`
	Password string `validate:"required,maxbytes=72"`
}

type loginCredentials struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// CredentialValidator checks credential shape before any store access.
type CredentialValidator struct {
	validate *validator.Validate
}

func NewCredentialValidator() CredentialValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration cannot fail for built-in tag names that are not already taken.
	_ = v.RegisterValidation("maxbytes", maxBytes)
	_ = v.RegisterValidation("trimmed", trimmed)
	return CredentialValidator{validate: v}
}

// ValidateRegistration enforces length in bytes, since bcrypt only sees the
// first 72 bytes of a password.
func (cv CredentialValidator) ValidateRegistration(username, password string) error {
	err := cv.validate.Struct(registerCredentials{Username: username, Password: password})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return ErrValidation.WithCause(err)
	}

	switch fieldErrs[0].Field() {
	case "Username":
		return ErrValidationUsername
	case "Password":
		return ErrValidationPassword
	default:
		return ErrValidation
	}
}

// ValidateLogin only rejects blank input. Over-long input is left to fail as
// invalid credentials so that login never discloses the registration policy
// for a specific username.
func (cv CredentialValidator) ValidateLogin(username, password string) error {
	if err := cv.validate.Struct(loginCredentials{Username: username, Password: password}); err != nil {
		return ErrValidationMissingCredentials
	}
	return nil
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

func trimmed(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return strings.TrimSpace(value) == value
}
