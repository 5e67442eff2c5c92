// Package auth issues and resolves signed session cookies and decides
// whether a session may perform an operation.
package auth

import (
	"context"
	"time"

	"github.com/prn-tf/projecthub/internal/domain"
)

// Cookie names. The three cookies are always set and cleared together.
const (
	CookieUserID   = "session_user_id"
	CookieUsername = "session_username"
	CookieRole     = "session_role"
)

// DefaultSessionTTL is the absolute lifetime of a session.
const DefaultSessionTTL = 24 * time.Hour

// Session is the identity carried by a request.
// It is never persisted server-side and never re-checked against the store.
type Session struct {
	// AccountID is the id of the account that logged in.
	AccountID string `json:"userId"`

	// Username is the account's username at login time.
	Username string `json:"username"`

	// Role is the account's role at login time.
	Role domain.Role `json:"role"`

	// IssuedAt is when Login created the session.
	IssuedAt time.Time `json:"-"`

	// ExpiresAt is IssuedAt plus the session TTL.
	ExpiresAt time.Time `json:"-"`
}

// IsAdmin returns true if the session carries the ADMIN role.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == domain.RoleAdmin
}

// Status describes the session attached to a request.
type Status struct {
	Authenticated bool        `json:"authenticated"`
	UserID        string      `json:"userId,omitempty"`
	Username      string      `json:"username,omitempty"`
	Role          domain.Role `json:"role,omitempty"`
}

// StatusOf reports the status of s, which may be nil.
func StatusOf(s *Session) Status {
	if s == nil {
		return Status{}
	}
	return Status{
		Authenticated: true,
		UserID:        s.AccountID,
		Username:      s.Username,
		Role:          s.Role,
	}
}

// sessionContextKey is the context key type for sessions.
type sessionContextKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// SessionFromContext returns the session stored in ctx, or nil.
func SessionFromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(sessionContextKey{}).(*Session); ok {
		return s
	}
	return nil
}
