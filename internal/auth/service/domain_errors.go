package service

import (
	"net/http"

	commonerrors "github.com/perplexiplay/backend/internal/common/errors"
)

const validationCode = "VALIDATION_FAILED"

var (
	ErrUsernameAlreadyRegistered = commonerrors.NewDomainError(
		"USERNAME_ALREADY_REGISTERED",
		commonerrors.CategoryConflict,
		http.StatusBadRequest,
		"username already registered",
	)

	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"Incorrect username or password",
	)

	ErrUnauthenticated = commonerrors.NewDomainError(
		"UNAUTHENTICATED",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"Could not validate credentials",
	)

	// ErrInvalidToken never reaches a client directly; IdentityResolver maps it
	// to ErrUnauthenticated.
	ErrInvalidToken = commonerrors.NewDomainError(
		"INVALID_TOKEN",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid token",
	)

	ErrValidation = commonerrors.NewDomainError(
		validationCode,
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"validation failed",
	)

	ErrValidationUsername = commonerrors.NewDomainError(
		validationCode,
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"username must be 1 to 64 bytes without leading or trailing whitespace",
	)

	ErrValidationPassword = commonerrors.NewDomainError(
		validationCode,
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"password must be 1 to 72 bytes",
	)

	ErrValidationMissingCredentials = commonerrors.NewDomainError(
		validationCode,
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"username and password are required",
	)
)
