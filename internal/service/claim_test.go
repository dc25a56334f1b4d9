package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/danicastudios/studiodesk/internal/domain/auth"
	domainclaim "github.com/danicastudios/studiodesk/internal/domain/claim"
	apperrors "github.com/danicastudios/studiodesk/internal/errors"
	mocks "github.com/danicastudios/studiodesk/internal/mocks/auth"
)

type recordingInvalidator struct {
	mu    sync.Mutex
	users []string
}

func (r *recordingInvalidator) InvalidateCaller(_ context.Context, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
}

type reconcilerFixture struct {
	directory   *mocks.FakeDirectory
	claims      *mocks.MemoryClaimStore
	sessions    *mocks.MemorySessionStore
	invalidator *recordingInvalidator
	session     domainauth.Session
}

func newReconcilerFixture(t *testing.T) *reconcilerFixture {
	t.Helper()
	f := &reconcilerFixture{
		directory:   mocks.NewFakeDirectory(),
		claims:      mocks.NewMemoryClaimStore(),
		sessions:    mocks.NewMemorySessionStore(),
		invalidator: &recordingInvalidator{},
		session: domainauth.Session{
			ID:        "sess-1",
			UserID:    "user-1",
			Email:     "user@example.com",
			FlowID:    "flow-1",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	require.NoError(t, f.sessions.Save(context.Background(), f.session))
	return f
}

func (f *reconcilerFixture) reconciler() *ClaimReconciler {
	return NewClaimReconciler(ClaimReconcilerOptions{
		Directory: f.directory,
		Claims:    f.claims,
		Sessions:  f.sessions,
		Roles:     f.invalidator,
	})
}

func (f *reconcilerFixture) parkClaim(t *testing.T, c domainauth.PendingRoleClaim) {
	t.Helper()
	require.NoError(t, f.claims.StorePendingClaim(context.Background(), f.session.FlowID, c))
}

func TestClaimReconciler_NoPendingClaim(t *testing.T) {
	f := newReconcilerFixture(t)
	ctx := context.Background()

	result := f.reconciler().Reconcile(ctx, f.session)

	assert.Equal(t, ClaimOutcomeNone, result.Outcome)
	assert.Empty(t, result.Message)
	assert.Equal(t, 0, f.directory.RequestRoleCalls, "no claim means zero directory calls")

	// Session untouched
	_, err := f.sessions.Get(ctx, f.session.ID)
	assert.NoError(t, err)
}

func TestClaimReconciler_Granted(t *testing.T) {
	f := newReconcilerFixture(t)
	ctx := context.Background()
	f.parkClaim(t, domainauth.PendingRoleClaim{
		RequestedRole: domainauth.RoleManagement,
		Passcode:      "mgmt-secret",
	})

	result := f.reconciler().Reconcile(ctx, f.session)

	assert.Equal(t, ClaimOutcomeGranted, result.Outcome)
	assert.Equal(t, 1, f.directory.RequestRoleCalls)

	// Postconditions: claim gone, session intact, role visible, cache dropped
	_, ok := f.claims.PendingClaim(ctx, f.session.FlowID)
	assert.False(t, ok)
	_, err := f.sessions.Get(ctx, f.session.ID)
	assert.NoError(t, err)
	role, err := f.directory.CallerRole(ctx, f.session.UserID)
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleManagement, role)
	assert.Equal(t, []string{"user-1"}, f.invalidator.users)

	// No claim error was produced
	_, ok = f.claims.ClaimError(ctx, f.session.FlowID)
	assert.False(t, ok)
}

func TestClaimReconciler_Rejected_FailsClosed(t *testing.T) {
	f := newReconcilerFixture(t)
	ctx := context.Background()
	f.parkClaim(t, domainauth.PendingRoleClaim{
		RequestedRole: domainauth.RoleDirector,
		Passcode:      "wrong",
	})
	f.directory.RequestRoleFunc = func(_ context.Context, _ string, _ domainauth.PendingRoleClaim) error {
		return apperrors.AccessDenied("Access denied: Incorrect passcode")
	}

	result := f.reconciler().Reconcile(ctx, f.session)

	assert.Equal(t, ClaimOutcomeRejected, result.Outcome)
	assert.Equal(t, domainclaim.MsgWrongPasscode, result.Message)

	// Rollback postconditions: claim absent, session destroyed, exactly one
	// claim error stored
	_, ok := f.claims.PendingClaim(ctx, f.session.FlowID)
	assert.False(t, ok)
	_, err := f.sessions.Get(ctx, f.session.ID)
	assert.Equal(t, mocks.ErrNotFound, err)
	msg, ok := f.claims.ClaimError(ctx, f.session.FlowID)
	require.True(t, ok)
	assert.Equal(t, domainclaim.MsgWrongPasscode, msg)

	// No role cache invalidation on failure
	assert.Empty(t, f.invalidator.users)
}

func TestClaimReconciler_Rejected_CapacityMessage(t *testing.T) {
	f := newReconcilerFixture(t)
	ctx := context.Background()
	f.parkClaim(t, domainauth.PendingRoleClaim{
		RequestedRole: domainauth.RoleDirector,
		Passcode:      "dir-secret",
	})
	f.directory.RequestRoleFunc = func(_ context.Context, _ string, _ domainauth.PendingRoleClaim) error {
		return apperrors.AccessDenied("Access denied: Director role maximum reached")
	}

	result := f.reconciler().Reconcile(ctx, f.session)

	assert.Equal(t, ClaimOutcomeRejected, result.Outcome)
	assert.Equal(t, domainclaim.MsgDirectorCapacity, result.Message)
}

func TestClaimReconciler_Rejected_UnreachableDirectory(t *testing.T) {
	f := newReconcilerFixture(t)
	ctx := context.Background()
	f.parkClaim(t, domainauth.PendingRoleClaim{RequestedRole: domainauth.RoleReception})
	f.directory.RequestRoleFunc = func(_ context.Context, _ string, _ domainauth.PendingRoleClaim) error {
		return apperrors.Unavailable("directory unreachable")
	}

	result := f.reconciler().Reconcile(ctx, f.session)

	// Same rollback as a rejection, with the generic message
	assert.Equal(t, ClaimOutcomeRejected, result.Outcome)
	assert.Equal(t, domainclaim.MsgGeneric, result.Message)
	_, err := f.sessions.Get(ctx, f.session.ID)
	assert.Equal(t, mocks.ErrNotFound, err)
}

func TestClaimReconciler_Rejected_PlainError(t *testing.T) {
	f := newReconcilerFixture(t)
	ctx := context.Background()
	f.parkClaim(t, domainauth.PendingRoleClaim{RequestedRole: domainauth.RoleReception})
	f.directory.RequestRoleFunc = func(_ context.Context, _ string, _ domainauth.PendingRoleClaim) error {
		return errors.New("connection reset by peer")
	}

	result := f.reconciler().Reconcile(ctx, f.session)

	assert.Equal(t, ClaimOutcomeRejected, result.Outcome)
	assert.Equal(t, domainclaim.MsgGeneric, result.Message)
}

func TestClaimReconciler_Rejected_RawAccessDeniedPassthrough(t *testing.T) {
	f := newReconcilerFixture(t)
	ctx := context.Background()
	f.parkClaim(t, domainauth.PendingRoleClaim{RequestedRole: domainauth.RoleManagement, Passcode: "x"})
	f.directory.RequestRoleFunc = func(_ context.Context, _ string, _ domainauth.PendingRoleClaim) error {
		return apperrors.AccessDenied("Access denied: management claims are suspended during migration")
	}

	result := f.reconciler().Reconcile(ctx, f.session)

	assert.Equal(t, ClaimOutcomeRejected, result.Outcome)
	assert.Equal(t, "Access denied: management claims are suspended during migration", result.Message)
}

func TestClaimReconciler_AtMostOnce_Sequential(t *testing.T) {
	f := newReconcilerFixture(t)
	ctx := context.Background()
	f.parkClaim(t, domainauth.PendingRoleClaim{RequestedRole: domainauth.RoleReception})

	r := f.reconciler()
	first := r.Reconcile(ctx, f.session)
	second := r.Reconcile(ctx, f.session)
	third := r.Reconcile(ctx, f.session)

	assert.Equal(t, 1, f.directory.RequestRoleCalls, "repeated invocation must not re-submit")
	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
}

func TestClaimReconciler_AtMostOnce_Concurrent(t *testing.T) {
	f := newReconcilerFixture(t)
	ctx := context.Background()
	f.parkClaim(t, domainauth.PendingRoleClaim{RequestedRole: domainauth.RoleReception})

	r := f.reconciler()
	const callers = 16
	results := make([]ClaimResult, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Reconcile(ctx, f.session)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, f.directory.RequestRoleCalls)
	for i := 1; i < callers; i++ {
		assert.Equal(t, results[0], results[i])
	}
}

func TestClaimReconciler_ClaimErrorStoreFailure_StillFailsClosed(t *testing.T) {
	f := newReconcilerFixture(t)
	ctx := context.Background()
	f.parkClaim(t, domainauth.PendingRoleClaim{RequestedRole: domainauth.RoleDirector, Passcode: "x"})
	f.directory.RequestRoleFunc = func(_ context.Context, _ string, _ domainauth.PendingRoleClaim) error {
		return apperrors.AccessDenied("Access denied: Incorrect passcode")
	}
	// Pending claim is already parked; fail writes from here on
	f.claims.StoreErr = errors.New("store down")

	result := f.reconciler().Reconcile(ctx, f.session)

	// The session must still be destroyed even when the message cannot be parked
	assert.Equal(t, ClaimOutcomeRejected, result.Outcome)
	_, err := f.sessions.Get(ctx, f.session.ID)
	assert.Equal(t, mocks.ErrNotFound, err)
}

func TestClaimOutcome_String(t *testing.T) {
	assert.Equal(t, "none", ClaimOutcomeNone.String())
	assert.Equal(t, "granted", ClaimOutcomeGranted.String())
	assert.Equal(t, "rejected", ClaimOutcomeRejected.String())
}
