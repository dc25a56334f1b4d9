package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/danicastudios/studiodesk/internal/domain/auth"
	apperrors "github.com/danicastudios/studiodesk/internal/errors"
	"github.com/danicastudios/studiodesk/internal/ports"
)

func TestMockAuthProvider_Begin_Defaults(t *testing.T) {
	provider := NewMockAuthProvider()
	ctx := context.Background()

	input := ports.BeginInput{RedirectURL: "http://localhost:8080/callback"}
	authURL, state, nonce, err := provider.Begin(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", authURL)
	assert.Equal(t, "state-1", state)
	assert.Equal(t, "nonce-1", nonce)

	// Second call should increment counters
	authURL2, state2, nonce2, err2 := provider.Begin(ctx, input)
	require.NoError(t, err2)
	assert.Equal(t, "https://mock-idp/auth", authURL2)
	assert.Equal(t, "state-2", state2)
	assert.Equal(t, "nonce-2", nonce2)
}

func TestMockAuthProvider_Exchange_Defaults(t *testing.T) {
	provider := NewMockAuthProvider()
	ctx := context.Background()

	identity, err := provider.Exchange(ctx, ports.ExchangeInput{
		Code:  "code",
		State: "state-1",
		Nonce: "nonce-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "mock-user-1", identity.UserID)
	assert.Equal(t, "mock.user@example.com", identity.Email)
	assert.True(t, identity.ExpiresAt.After(time.Now()))
}

func TestMemorySessionStore_RoundTrip(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	sess := domainauth.Session{
		ID:        "sess-1",
		UserID:    "user-1",
		Email:     "user@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	require.NoError(t, store.Delete(ctx, "sess-1"))
	_, err = store.Get(ctx, "sess-1")
	assert.Equal(t, ErrNotFound, err)
}

func TestMemorySessionStore_EmptyID(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, domainauth.Session{}))
	_, err := store.Get(ctx, "")
	assert.Equal(t, ErrNotFound, err)
	assert.NoError(t, store.Delete(ctx, ""))
}

func TestMemoryClaimStore_RoundTrip(t *testing.T) {
	store := NewMemoryClaimStore()
	ctx := context.Background()

	claim := domainauth.PendingRoleClaim{
		RequestedRole: domainauth.RoleManagement,
		Passcode:      "mgmt-secret",
	}
	require.NoError(t, store.StorePendingClaim(ctx, "flow-1", claim))

	got, ok := store.PendingClaim(ctx, "flow-1")
	require.True(t, ok)
	assert.Equal(t, claim, got)

	store.ClearPendingClaim(ctx, "flow-1")
	_, ok = store.PendingClaim(ctx, "flow-1")
	assert.False(t, ok)

	// Clearing again is a no-op
	store.ClearPendingClaim(ctx, "flow-1")
}

func TestMemoryClaimStore_ClaimError(t *testing.T) {
	store := NewMemoryClaimStore()
	ctx := context.Background()

	_, ok := store.ClaimError(ctx, "flow-1")
	assert.False(t, ok)

	require.NoError(t, store.StoreClaimError(ctx, "flow-1", "Access denied. Please try again."))
	msg, ok := store.ClaimError(ctx, "flow-1")
	require.True(t, ok)
	assert.Equal(t, "Access denied. Please try again.", msg)

	store.ClearClaimError(ctx, "flow-1")
	_, ok = store.ClaimError(ctx, "flow-1")
	assert.False(t, ok)
}

func TestMemoryClaimStore_StoreErr(t *testing.T) {
	store := NewMemoryClaimStore()
	store.StoreErr = assert.AnError
	ctx := context.Background()

	assert.Error(t, store.StorePendingClaim(ctx, "flow-1", domainauth.PendingRoleClaim{}))
	assert.Error(t, store.StoreClaimError(ctx, "flow-1", "msg"))
}

func TestFakeDirectory_Defaults(t *testing.T) {
	dir := NewFakeDirectory()
	ctx := context.Background()

	t.Run("ungranted caller is reception", func(t *testing.T) {
		role, err := dir.CallerRole(ctx, "nobody")
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleReception, role)
	})

	t.Run("request role grants and counts", func(t *testing.T) {
		err := dir.RequestRole(ctx, "user-1", domainauth.PendingRoleClaim{
			RequestedRole: domainauth.RoleManagement,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, dir.RequestRoleCalls)

		role, err := dir.CallerRole(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleManagement, role)
	})

	t.Run("only directors assign", func(t *testing.T) {
		target, err := domainauth.ParseIdentityRef("user-2")
		require.NoError(t, err)

		err = dir.AssignRole(ctx, "user-1", target, domainauth.RoleReception)
		require.Error(t, err)
		assert.True(t, apperrors.IsUnauthorized(err))

		dir.SetRole("boss", domainauth.RoleDirector)
		require.NoError(t, dir.AssignRole(ctx, "boss", target, domainauth.RoleManagement))

		role, err := dir.CallerRole(ctx, "user-2")
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleManagement, role)
	})

	t.Run("admin tracks director role", func(t *testing.T) {
		admin, err := dir.IsCallerAdmin(ctx, "boss")
		require.NoError(t, err)
		assert.True(t, admin)

		admin, err = dir.IsCallerAdmin(ctx, "user-1")
		require.NoError(t, err)
		assert.False(t, admin)
	})

	t.Run("profile round trip", func(t *testing.T) {
		_, ok, err := dir.CallerProfile(ctx, "user-1")
		require.NoError(t, err)
		assert.False(t, ok)

		p := domainauth.Profile{UserID: "user-1", Name: "Name", Phone: "555-0101"}
		require.NoError(t, dir.SaveCallerProfile(ctx, "user-1", p))

		got, ok, err := dir.CallerProfile(ctx, "user-1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, p, got)
	})
}

func TestFakeDirectory_Overrides(t *testing.T) {
	dir := NewFakeDirectory()
	ctx := context.Background()

	dir.RequestRoleFunc = func(_ context.Context, _ string, _ domainauth.PendingRoleClaim) error {
		return apperrors.AccessDenied("Access denied: Incorrect passcode")
	}

	err := dir.RequestRole(ctx, "user-1", domainauth.PendingRoleClaim{RequestedRole: domainauth.RoleDirector})
	require.Error(t, err)
	assert.True(t, apperrors.IsAccessDenied(err))
	assert.Equal(t, 1, dir.RequestRoleCalls, "overridden calls still count")

	// The rejected claim must not have produced a grant
	role, err := dir.CallerRole(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleReception, role)
}
