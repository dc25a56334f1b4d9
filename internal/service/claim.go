package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	domainauth "github.com/danicastudios/studiodesk/internal/domain/auth"
	domainclaim "github.com/danicastudios/studiodesk/internal/domain/claim"
	apperrors "github.com/danicastudios/studiodesk/internal/errors"
	"github.com/danicastudios/studiodesk/internal/ports"
)

// RoleCacheInvalidator drops cached role reads for a user after a role
// mutation. RoleService implements it.
type RoleCacheInvalidator interface {
	InvalidateCaller(ctx context.Context, userID string)
}

// ClaimOutcome describes how a reconciliation resolved.
type ClaimOutcome int

const (
	// ClaimOutcomeNone means no pending claim existed; the directory was
	// never called.
	ClaimOutcomeNone ClaimOutcome = iota
	// ClaimOutcomeGranted means the directory accepted the claim.
	ClaimOutcomeGranted
	// ClaimOutcomeRejected means the directory rejected the claim and the
	// session was destroyed.
	ClaimOutcomeRejected
)

// String returns the outcome name for logging.
func (o ClaimOutcome) String() string {
	switch o {
	case ClaimOutcomeGranted:
		return "granted"
	case ClaimOutcomeRejected:
		return "rejected"
	default:
		return "none"
	}
}

// ClaimResult is the resolution of a single reconciliation.
type ClaimResult struct {
	Outcome ClaimOutcome
	// Message is the user-facing claim error; set only on rejection.
	Message string
}

// ClaimReconcilerOptions groups dependencies for ClaimReconciler.
type ClaimReconcilerOptions struct {
	Directory ports.Directory
	Claims    ports.ClaimStore
	Sessions  ports.SessionStore
	Roles     RoleCacheInvalidator
	Logger    *slog.Logger
}

// ClaimReconciler resolves the pending role claim, if any, after a login
// completes. One reconciler serves one authentication event: Reconcile is
// latched, so repeated invocation submits to the directory at most once and
// returns the first resolution.
//
// Rejections fail closed. The raw failure is classified into a user-facing
// message, the message is parked for the next status read, the claim is
// cleared, and the just-created session is destroyed. A rejected claim never
// leaves an authenticated session behind.
type ClaimReconciler struct {
	directory ports.Directory
	claims    ports.ClaimStore
	sessions  ports.SessionStore
	roles     RoleCacheInvalidator
	logger    *slog.Logger

	once   sync.Once
	result ClaimResult
}

// NewClaimReconciler constructs a reconciler for one authentication event.
func NewClaimReconciler(opts ClaimReconcilerOptions) *ClaimReconciler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ClaimReconciler{
		directory: opts.Directory,
		claims:    opts.Claims,
		sessions:  opts.Sessions,
		roles:     opts.Roles,
		logger:    logger,
	}
}

// Reconcile resolves the session's pending claim. Safe to call more than
// once; only the first call does work.
func (r *ClaimReconciler) Reconcile(ctx context.Context, sess domainauth.Session) ClaimResult {
	r.once.Do(func() {
		r.result = r.reconcile(ctx, sess)
	})
	return r.result
}

func (r *ClaimReconciler) reconcile(ctx context.Context, sess domainauth.Session) ClaimResult {
	pending, ok := r.claims.PendingClaim(ctx, sess.FlowID)
	if !ok {
		return ClaimResult{Outcome: ClaimOutcomeNone}
	}

	err := r.directory.RequestRole(ctx, sess.UserID, pending)
	if err == nil {
		r.claims.ClearPendingClaim(ctx, sess.FlowID)
		if r.roles != nil {
			r.roles.InvalidateCaller(ctx, sess.UserID)
		}
		r.logger.InfoContext(ctx, "role claim granted",
			slog.String("user_id", sess.UserID),
			slog.String("role", string(pending.RequestedRole)))
		return ClaimResult{Outcome: ClaimOutcomeGranted}
	}

	kind, message := domainclaim.Classify(rejectionReason(err))
	r.logger.WarnContext(ctx, "role claim rejected",
		slog.String("user_id", sess.UserID),
		slog.String("role", string(pending.RequestedRole)),
		slog.String("kind", string(kind)),
		slog.Any("error", err))

	// Rollback order matters: park the message first so the operator sees a
	// reason even if a later step fails, then drop the claim, then the session.
	if storeErr := r.claims.StoreClaimError(ctx, sess.FlowID, message); storeErr != nil {
		r.logger.ErrorContext(ctx, "failed to store claim error",
			slog.String("flow_id", sess.FlowID),
			slog.Any("error", storeErr))
	}
	r.claims.ClearPendingClaim(ctx, sess.FlowID)
	if delErr := r.sessions.Delete(ctx, sess.ID); delErr != nil {
		r.logger.ErrorContext(ctx, "failed to delete session during claim rollback",
			slog.String("session_id", sess.ID),
			slog.Any("error", delErr))
	}

	return ClaimResult{Outcome: ClaimOutcomeRejected, Message: message}
}

// rejectionReason extracts the directory's reason text from a RequestRole
// failure. AppError carries the reason in Message; anything else falls back
// to the error string, which the classifier maps to the generic message.
func rejectionReason(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
