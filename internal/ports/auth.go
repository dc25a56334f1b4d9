package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters and internal/data; orchestration
// in internal/service.

import (
	"context"

	domainauth "github.com/danicastudios/studiodesk/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// ClaimStore holds at most one pending role claim and at most one claim error
// per login flow. The flow ID is the tab-scoped key that survives the external
// IdP redirect. Clears are idempotent; a store outage reads as "absent" so the
// claim flow degrades instead of failing the page.
type ClaimStore interface {
	StorePendingClaim(ctx context.Context, flowID string, c domainauth.PendingRoleClaim) error
	PendingClaim(ctx context.Context, flowID string) (domainauth.PendingRoleClaim, bool)
	ClearPendingClaim(ctx context.Context, flowID string)

	StoreClaimError(ctx context.Context, flowID, message string) error
	ClaimError(ctx context.Context, flowID string) (string, bool)
	ClearClaimError(ctx context.Context, flowID string)
}
