package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/danicastudios/studiodesk/internal/domain/auth"
	apperrors "github.com/danicastudios/studiodesk/internal/errors"
	"github.com/danicastudios/studiodesk/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider = (*MockAuthProvider)(nil)
	_ ports.SessionStore = (*MemorySessionStore)(nil)
	_ ports.ClaimStore   = (*MemoryClaimStore)(nil)
	_ ports.Directory    = (*FakeDirectory)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	// Deterministic values for predictable testing
	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Identity

	// Internal state tracking for deterministic behavior
	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: domainauth.Identity{
			UserID:    "mock-user-1",
			FirstName: "Mock",
			LastName:  "User",
			Email:     "mock.user@example.com",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.callCount++
	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}

	// Generate deterministic state and nonce based on call count and redirect URL
	statePrefix := m.StatePrefix
	if statePrefix == "" {
		statePrefix = "state"
	}
	noncePrefix := m.NoncePrefix
	if noncePrefix == "" {
		noncePrefix = "nonce"
	}

	state := fmt.Sprintf("%s-%d", statePrefix, m.callCount)
	nonce := fmt.Sprintf("%s-%d", noncePrefix, m.callCount)

	return authURL, state, nonce, nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	// Return a copy of the default user with a fresh expiration time
	user := m.DefaultUser
	if user.UserID == "" {
		user = domainauth.Identity{
			UserID:    "mock-user-1",
			FirstName: "Mock",
			LastName:  "User",
			Email:     "mock.user@example.com",
		}
	}
	user.ExpiresAt = time.Now().Add(time.Hour)

	return user, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	delete(m.sessions, id)
	return nil
}

// ErrNotFound is returned by mocks when an entity is not present.
type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var ErrNotFound error = notFoundError{}

// MemoryClaimStore is an in-memory claim store for unit tests. It is
// goroutine-safe so latch behavior can be exercised with concurrent callers.
type MemoryClaimStore struct {
	mu     sync.Mutex
	claims map[string]domainauth.PendingRoleClaim
	errs   map[string]string

	// StoreErr, when set, is returned by both store methods so write
	// failures can be simulated.
	StoreErr error
}

// NewMemoryClaimStore creates a new in-memory claim store.
func NewMemoryClaimStore() *MemoryClaimStore {
	return &MemoryClaimStore{
		claims: make(map[string]domainauth.PendingRoleClaim),
		errs:   make(map[string]string),
	}
}

func (m *MemoryClaimStore) StorePendingClaim(_ context.Context, flowID string, c domainauth.PendingRoleClaim) error {
	if m.StoreErr != nil {
		return m.StoreErr
	}
	if flowID == "" {
		return errors.New("flow ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claims[flowID] = c
	return nil
}

func (m *MemoryClaimStore) PendingClaim(_ context.Context, flowID string) (domainauth.PendingRoleClaim, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.claims[flowID]
	return c, ok
}

func (m *MemoryClaimStore) ClearPendingClaim(_ context.Context, flowID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claims, flowID)
}

func (m *MemoryClaimStore) StoreClaimError(_ context.Context, flowID, message string) error {
	if m.StoreErr != nil {
		return m.StoreErr
	}
	if flowID == "" {
		return errors.New("flow ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[flowID] = message
	return nil
}

func (m *MemoryClaimStore) ClaimError(_ context.Context, flowID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.errs[flowID]
	return msg, ok
}

func (m *MemoryClaimStore) ClearClaimError(_ context.Context, flowID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.errs, flowID)
}

// FakeDirectory is an in-memory directory for unit tests. Roles are held in
// a map; function fields override individual operations when set.
type FakeDirectory struct {
	mu       sync.Mutex
	roles    map[string]domainauth.Role
	profiles map[string]domainauth.Profile

	RequestRoleFunc func(ctx context.Context, caller string, c domainauth.PendingRoleClaim) error
	AssignRoleFunc  func(ctx context.Context, caller string, target domainauth.IdentityRef, role domainauth.Role) error
	CallerRoleFunc  func(ctx context.Context, caller string) (domainauth.Role, error)

	// RequestRoleCalls counts RequestRole invocations, including overridden
	// ones, so exactly-once behavior can be asserted.
	RequestRoleCalls int
}

// NewFakeDirectory creates a FakeDirectory with no grants.
func NewFakeDirectory() *FakeDirectory {
	return &FakeDirectory{
		roles:    make(map[string]domainauth.Role),
		profiles: make(map[string]domainauth.Profile),
	}
}

// SetRole seeds a grant directly, bypassing the request path.
func (f *FakeDirectory) SetRole(caller string, role domainauth.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[caller] = role
}

func (f *FakeDirectory) RequestRole(ctx context.Context, caller string, c domainauth.PendingRoleClaim) error {
	f.mu.Lock()
	f.RequestRoleCalls++
	fn := f.RequestRoleFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, caller, c)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[caller] = c.RequestedRole
	return nil
}

func (f *FakeDirectory) AssignRole(ctx context.Context, caller string, target domainauth.IdentityRef, role domainauth.Role) error {
	if f.AssignRoleFunc != nil {
		return f.AssignRoleFunc(ctx, caller, target, role)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.roles[caller] != domainauth.RoleDirector {
		return apperrors.Unauthorized("only directors may assign roles")
	}
	f.roles[target.String()] = role
	return nil
}

func (f *FakeDirectory) CallerRole(ctx context.Context, caller string) (domainauth.Role, error) {
	if f.CallerRoleFunc != nil {
		return f.CallerRoleFunc(ctx, caller)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.roles[caller]
	if !ok {
		return domainauth.RoleReception, nil
	}
	return role, nil
}

func (f *FakeDirectory) IsCallerAdmin(ctx context.Context, caller string) (bool, error) {
	role, err := f.CallerRole(ctx, caller)
	if err != nil {
		return false, err
	}
	return role == domainauth.RoleDirector, nil
}

func (f *FakeDirectory) CallerProfile(_ context.Context, caller string) (domainauth.Profile, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[caller]
	return p, ok, nil
}

func (f *FakeDirectory) SaveCallerProfile(_ context.Context, caller string, p domainauth.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[caller] = p
	return nil
}
