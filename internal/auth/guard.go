package auth

import (
	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/metrics"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	// Allow permits the operation.
	Allow Decision = iota

	// Unauthorized means a session is required and none was presented.
	Unauthorized

	// Forbidden means the session lacks the required role or ownership.
	Forbidden
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Err maps the decision to the domain error taxonomy. Allow yields nil.
func (d Decision) Err() error {
	switch d {
	case Allow:
		return nil
	case Unauthorized:
		return domain.ErrUnauthorized
	default:
		return domain.ErrForbidden
	}
}

// Requirement describes what an operation demands of the caller.
type Requirement struct {
	// Authenticated requires a session.
	Authenticated bool

	// Role, when set, requires the session to carry this role.
	Role domain.Role

	// OwnerScoped restricts non-admin sessions to resources they own.
	OwnerScoped bool

	// OwnerID is the owner of the resource for OwnerScoped checks.
	OwnerID string
}

// RequireSession requires any valid session.
func RequireSession() Requirement {
	return Requirement{Authenticated: true}
}

// RequireAdmin requires an ADMIN session.
func RequireAdmin() Requirement {
	return Requirement{Authenticated: true, Role: domain.RoleAdmin}
}

// RequireOwner requires an ADMIN session or the session of ownerID.
func RequireOwner(ownerID string) Requirement {
	return Requirement{Authenticated: true, OwnerScoped: true, OwnerID: ownerID}
}

// Authorize applies the rules in order: a missing session is Unauthorized,
// a role mismatch is Forbidden, a non-admin acting on another account's
// resource is Forbidden, and everything else is allowed.
func Authorize(session *Session, req Requirement) Decision {
	needsSession := req.Authenticated || req.Role != "" || req.OwnerScoped
	if session == nil {
		if needsSession {
			return Unauthorized
		}
		return Allow
	}

	if req.Role == domain.RoleAdmin && session.Role != domain.RoleAdmin {
		return Forbidden
	}

	if req.OwnerScoped && session.Role != domain.RoleAdmin && req.OwnerID != session.AccountID {
		return Forbidden
	}

	return Allow
}

// Guard applies Authorize and records every decision.
type Guard struct {
	metrics *metrics.Metrics
}

// NewGuard creates a guard. m may be nil.
func NewGuard(m *metrics.Metrics) *Guard {
	return &Guard{metrics: m}
}

// Check authorizes session against req and returns the mapped error.
// A nil guard still authorizes.
func (g *Guard) Check(session *Session, req Requirement) error {
	decision := Authorize(session, req)
	if g != nil {
		g.metrics.RecordDecision(decision.String())
	}
	return decision.Err()
}
