// Package domain contains the core business entities for ProjectHub.
// These are pure Go structs with no infrastructure dependencies.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the privilege level of an account.
type Role string

const (
	// RoleAdmin may manage every resource regardless of ownership.
	RoleAdmin Role = "ADMIN"

	// RoleUser is a seller that may only manage their own projects.
	RoleUser Role = "USER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Account represents a seller or administrator who can sign in.
// Role is fixed at creation; there is no promotion path.
type Account struct {
	// ID is the unique identifier (UUID string).
	ID string `json:"id"`

	// Username is unique across all accounts.
	Username string `json:"username"`

	// PasswordHash is the bcrypt hash of the password.
	// Never exposed in API responses.
	PasswordHash string `json:"-"`

	// Role is ADMIN or USER.
	Role Role `json:"role"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"createdAt"`
}

// NewAccount creates a new Account with a fresh id.
func NewAccount(username, passwordHash string, role Role) *Account {
	return &Account{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
}

// IsAdmin returns true for ADMIN accounts.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
