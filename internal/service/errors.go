// Package service implements ProjectHub's business operations.
// Operations that act on behalf of a caller take the request's session and
// consult the authorization guard before touching any store.
package service

import (
	"errors"
	"fmt"

	"github.com/prn-tf/projecthub/internal/domain"
)

// Common service errors.
var (
	// ErrInternalError wraps store, cache and storage failures.
	ErrInternalError = domain.ErrInternal

	// ErrUsernameTaken is returned when creating an account whose username exists.
	ErrUsernameTaken = domain.NewDomainError(domain.ErrDuplicateUsername, "Username already taken", "username")

	// ErrCannotDeleteSelf is returned when an admin deletes their own account.
	ErrCannotDeleteSelf = domain.NewDomainError(domain.ErrSelfDelete, "Cannot delete your own account", "id")

	// ErrFileTooLarge is returned for uploads over the configured limit.
	ErrFileTooLarge = domain.NewDomainError(domain.ErrValidation, "File too large", "file")

	// ErrUnsupportedFileType is returned for uploads that are not images.
	ErrUnsupportedFileType = domain.NewDomainError(domain.ErrValidation, "Invalid file type. Allowed: jpeg, png, webp, gif", "file")
)

// internalError wraps err so the HTTP boundary reports a generic 500.
func internalError(err error) error {
	return fmt.Errorf("%w: %v", ErrInternalError, err)
}

// isDomainError reports whether err is already part of the domain taxonomy
// and can be returned to the caller unchanged.
func isDomainError(err error) bool {
	for _, sentinel := range []error{
		domain.ErrValidation, domain.ErrNotFound, domain.ErrDuplicateUsername,
		domain.ErrForbidden, domain.ErrUnauthorized, domain.ErrSelfDelete,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
