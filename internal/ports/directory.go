package ports

import (
	"context"

	domainauth "github.com/danicastudios/studiodesk/internal/domain/auth"
)

// Directory is the authoritative role and profile store for the studio. The
// client never invents a role: it only observes directory state and mutates
// it through RequestRole (self-service, passcode-gated) or AssignRole
// (director-only). Implementations classify failures with the AppError
// taxonomy in internal/errors: rejections are access-denied errors carrying
// the directory's reason text; transport problems are unavailability, never
// rejections.
type Directory interface {
	// RequestRole submits a self-service claim on behalf of caller.
	RequestRole(ctx context.Context, caller string, c domainauth.PendingRoleClaim) error

	// AssignRole directly grants role to target. Requires caller to hold the
	// director role; bypasses passcode negotiation entirely.
	AssignRole(ctx context.Context, caller string, target domainauth.IdentityRef, role domainauth.Role) error

	// CallerRole returns caller's current role, RoleReception when no grant
	// exists.
	CallerRole(ctx context.Context, caller string) (domainauth.Role, error)

	// IsCallerAdmin reports whether caller holds the director role.
	IsCallerAdmin(ctx context.Context, caller string) (bool, error)

	// CallerProfile returns the caller's profile, or ok=false when the caller
	// has never saved one (a first-time user).
	CallerProfile(ctx context.Context, caller string) (domainauth.Profile, bool, error)

	// SaveCallerProfile creates or replaces the caller's profile.
	SaveCallerProfile(ctx context.Context, caller string, p domainauth.Profile) error
}
