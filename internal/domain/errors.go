// Package domain contains the core business entities for ProjectHub.
package domain

import (
	"errors"
	"fmt"
)

// Domain errors. The HTTP boundary maps each of these to a status code;
// infrastructure failures are always wrapped in ErrInternal.
var (
	// ErrValidation indicates a malformed or missing required field.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized indicates the operation needs a session and none was presented.
	ErrUnauthorized = errors.New("authentication required")

	// ErrForbidden indicates the session lacks the role or ownership required.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the requested resource id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateUsername indicates an account with the same username exists.
	ErrDuplicateUsername = errors.New("username already taken")

	// ErrInvalidCredentials indicates login failed. Unknown username and
	// wrong password both produce this error.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSelfDelete indicates an admin tried to delete their own account.
	ErrSelfDelete = errors.New("cannot delete your own account")

	// ErrInternal indicates a store, mail or storage failure.
	ErrInternal = errors.New("internal server error")
)

// DomainError wraps a domain error with additional context.
type DomainError struct {
	// Err is the underlying domain error.
	Err error

	// Message provides additional context and is safe to show to clients.
	Message string

	// Field names the offending input field for validation errors.
	Field string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Err.Error(), e.Message, e.Field)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError with context.
func NewDomainError(err error, message, field string) *DomainError {
	return &DomainError{
		Err:     err,
		Message: message,
		Field:   field,
	}
}

// Invalid returns a validation error for the given field.
func Invalid(field, message string) error {
	return NewDomainError(ErrValidation, message, field)
}

// PublicMessage returns the message a client may see for err.
// Internal errors never leak their cause.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrInternal) {
		return ErrInternal.Error()
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) && domainErr.Message != "" {
		return domainErr.Message
	}

	for _, sentinel := range []error{
		ErrValidation, ErrUnauthorized, ErrForbidden, ErrNotFound,
		ErrDuplicateUsername, ErrInvalidCredentials, ErrSelfDelete,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return ErrInternal.Error()
}
