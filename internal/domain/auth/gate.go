package auth

// Decision is the outcome of an authorization check for a role-gated surface.
type Decision int

const (
	// DecisionPending means the caller's role has not been resolved yet
	// (directory read still outstanding or temporarily unavailable).
	// Render a neutral loading state, never the protected content and never
	// the denied fallback.
	DecisionPending Decision = iota
	// DecisionAllow permits rendering the protected surface.
	DecisionAllow
	// DecisionDeny renders the fixed access-denied fallback.
	DecisionDeny
)

// String returns a stable name for logging and JSON payloads.
func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionDeny:
		return "deny"
	default:
		return "pending"
	}
}

// Authorize decides whether a surface restricted to allowed may render for
// role. It is a pure function of its inputs and is recomputed on every
// request from the latest resolved role.
//
// This gate is advisory: the directory service is the sole enforcement point
// for role mutations. A missing role denies; an unresolved role (empty string
// with resolved=false) stays pending.
func Authorize(role Role, resolved bool, allowed []Role) Decision {
	if !resolved {
		return DecisionPending
	}
	for _, a := range allowed {
		if role == a {
			return DecisionAllow
		}
	}
	return DecisionDeny
}
