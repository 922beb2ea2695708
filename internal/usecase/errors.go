package usecase

import (
	"errors"
	"fmt"

	"karaoke-booking/pkg/utils"
)

// Handlers map these onto HTTP status codes; wrap them, never compare strings.
var (
	ErrValidation     = errors.New("validation failed")
	ErrInvalidState   = errors.New("invalid state transition")
	ErrTenantRequired = errors.New("tenant could not be resolved")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrTenantInactive = errors.New("tenant is not active")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("time slot conflicts with an existing booking")
	ErrAlreadyExists  = errors.New("already exists")
)

// ValidationError keeps the per-field messages so handlers can return them.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, utils.FormatValidationErrors(e.Fields))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func validationError(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}

func fieldError(field, message string) error {
	return validationError(map[string]string{field: message})
}
