package auth

// Package auth contains domain-level types for authentication, sessions,
// and role provisioning. It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	// RoleDirector is the top-level owner/director role. Claiming it requires
	// a passcode and is capped server-side at a configured number of accounts.
	RoleDirector Role = "director"
	// RoleManagement is the management role. Claiming it requires a passcode.
	RoleManagement Role = "management"
	// RoleReception is the default operational role assigned to any
	// authenticated identity without an explicit grant.
	RoleReception Role = "reception"
)

// AllRoles lists every valid role, highest privilege first.
func AllRoles() []Role {
	return []Role{RoleDirector, RoleManagement, RoleReception}
}

// ParseRole validates a string against the closed role set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleDirector, RoleManagement, RoleReception:
		return Role(s), true
	default:
		return "", false
	}
}

// Label returns the operator-facing display name for a role.
func (r Role) Label() string {
	switch r {
	case RoleDirector:
		return "Director"
	case RoleManagement:
		return "Management"
	default:
		return "Reception"
	}
}

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID    string // stable user identifier (e.g., samAccountName or sub)
	FirstName string
	LastName  string
	Email     string
	ExpiresAt time.Time // absolute expiry from IdP token
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier (e.g., random URL-safe string).
// Sessions carry no role: the directory owns the authoritative role, and it
// is resolved (through a cache) on each request so grants take effect without
// a re-login.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	FlowID    string    `json:"flow_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PendingRoleClaim is a role selection made before authentication starts.
// At most one exists per login flow; it is created by the login form, survives
// the external IdP redirect, and is consumed exactly once by the reconciler.
type PendingRoleClaim struct {
	RequestedRole Role   `json:"requestedRole"`
	Passcode      string `json:"passcode,omitempty"`
}

// Profile is the directory-owned user profile. Its absence distinguishes a
// first-time user from a returning one.
type Profile struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Phone  string `json:"phone,omitempty"`
}
