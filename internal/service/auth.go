package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/danicastudios/studiodesk/internal/domain/auth"
	"github.com/danicastudios/studiodesk/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Claims   ports.ClaimStore
}

// AuthService orchestrates authentication flows by coordinating the identity
// provider, session persistence, and per-flow role claim state.
type AuthService struct {
	provider ports.AuthProvider
	sessions ports.SessionStore
	claims   ports.ClaimStore
}

var errSessionExpired = errors.New("session expired")

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	return &AuthService{
		provider: opts.Provider,
		sessions: opts.Sessions,
		claims:   opts.Claims,
	}
}

// BeginLoginInput groups parameters for starting a login flow.
type BeginLoginInput struct {
	RedirectURL string
	// Claim is the role the operator requested before being handed to the
	// identity provider. It is parked keyed by the flow ID so it survives
	// the external redirect.
	Claim domainauth.PendingRoleClaim
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
	FlowID  string
}

// BeginLogin parks the pending role claim, initiates an authentication flow,
// and returns the provider auth URL with state, nonce, and the flow ID that
// keys the parked claim.
func (s *AuthService) BeginLogin(ctx context.Context, input BeginLoginInput) (*BeginLoginResult, error) {
	if input.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	flowID := uuid.New().String()

	// Role selection is optional: a login without one authenticates with
	// whatever role the directory already holds.
	if input.Claim.RequestedRole != "" {
		if _, ok := domainauth.ParseRole(string(input.Claim.RequestedRole)); !ok {
			return nil, fmt.Errorf("unknown role %q", input.Claim.RequestedRole)
		}
		if err := s.claims.StorePendingClaim(ctx, flowID, input.Claim); err != nil {
			return nil, fmt.Errorf("store pending claim: %w", err)
		}
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: input.RedirectURL})
	if err != nil {
		// Best effort: the claim store expires parked claims on its own.
		s.claims.ClearPendingClaim(ctx, flowID)
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{
		AuthURL: authURL,
		State:   state,
		Nonce:   nonce,
		FlowID:  flowID,
	}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code   string
	State  string
	Nonce  string
	FlowID string
}

// CompleteLoginResult contains the result of completing a login flow.
type CompleteLoginResult struct {
	Session domainauth.Session
}

// CompleteLogin completes an authentication flow by exchanging the code for
// an identity and persisting a session bound to the login flow.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}
	if input.FlowID == "" {
		return nil, errors.New("flow ID is required")
	}

	exchangeInput := ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	}
	identity, err := s.provider.Exchange(ctx, exchangeInput)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	session := domainauth.Session{
		ID:        uuid.New().String(),
		UserID:    identity.UserID,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Email:     identity.Email,
		FlowID:    input.FlowID,
		ExpiresAt: identity.ExpiresAt,
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	return &CompleteLoginResult{
		Session: session,
	}, nil
}

// GetSession retrieves a session by ID.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	// Check if session is expired
	if time.Now().After(session.ExpiresAt) {
		// Clean up expired session
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(errSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, errSessionExpired
	}

	return &session, nil
}

// Logout removes a session and any claim state still parked under its flow.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to logout
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err == nil && session.FlowID != "" {
		s.claims.ClearPendingClaim(ctx, session.FlowID)
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}
