package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	domainauth "github.com/danicastudios/studiodesk/internal/domain/auth"
	apperrors "github.com/danicastudios/studiodesk/internal/errors"
	"github.com/danicastudios/studiodesk/internal/ports"
)

const (
	callerRoleKeyPrefix  = "callerRole:"
	callerAdminKeyPrefix = "callerAdmin:"

	defaultRoleCacheTTL = 5 * time.Minute
)

// RoleServiceOptions groups dependencies for RoleService.
type RoleServiceOptions struct {
	Directory ports.Directory
	Cache     ports.CacheRepository
	CacheTTL  time.Duration
	Logger    *slog.Logger
}

// RoleService reads and mutates directory roles. Reads go through a
// short-TTL cache so every gated request does not hit the directory; any
// role mutation (claim grant, assignment) invalidates the caller's cached
// entries so the next read observes the new role.
type RoleService struct {
	directory ports.Directory
	cache     ports.CacheRepository
	cacheTTL  time.Duration
	logger    *slog.Logger
}

var _ RoleCacheInvalidator = (*RoleService)(nil)

// NewRoleService constructs a RoleService. Cache is optional; without one
// every read goes to the directory.
func NewRoleService(opts RoleServiceOptions) *RoleService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultRoleCacheTTL
	}
	return &RoleService{
		directory: opts.Directory,
		cache:     opts.Cache,
		cacheTTL:  ttl,
		logger:    logger,
	}
}

// CallerRole returns the user's current role, from cache when fresh. Cache
// failures degrade to a direct directory read.
func (s *RoleService) CallerRole(ctx context.Context, userID string) (domainauth.Role, error) {
	if userID == "" {
		return "", apperrors.Validation("user ID is required")
	}

	if cached, ok := s.cachedRole(ctx, userID); ok {
		return cached, nil
	}

	role, err := s.directory.CallerRole(ctx, userID)
	if err != nil {
		return "", err
	}

	s.cachePut(ctx, callerRoleKeyPrefix+userID, []byte(role))
	return role, nil
}

// IsCallerAdmin reports whether the user holds the admin (director) role,
// from cache when fresh.
func (s *RoleService) IsCallerAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, apperrors.Validation("user ID is required")
	}

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, callerAdminKeyPrefix+userID); err == nil && raw != nil {
			return string(raw) == "1", nil
		}
	}

	admin, err := s.directory.IsCallerAdmin(ctx, userID)
	if err != nil {
		return false, err
	}

	val := []byte("0")
	if admin {
		val = []byte("1")
	}
	s.cachePut(ctx, callerAdminKeyPrefix+userID, val)
	return admin, nil
}

// InvalidateCaller drops the user's cached role and admin flag. Called after
// any role mutation so stale grants are never served past the TTL.
func (s *RoleService) InvalidateCaller(ctx context.Context, userID string) {
	if s.cache == nil || userID == "" {
		return
	}
	for _, key := range []string{callerRoleKeyPrefix + userID, callerAdminKeyPrefix + userID} {
		if _, err := s.cache.Delete(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate role cache",
				slog.String("key", key),
				slog.Any("error", err))
		}
	}
}

// AssignInput groups parameters for a direct role assignment.
type AssignInput struct {
	// Caller is the authenticated operator performing the assignment.
	Caller string
	// Identity is the target identity reference as typed by the operator.
	Identity string
	// Role is the requested role name.
	Role string
}

// Assign grants a role directly to another identity. Malformed identity
// references are rejected before any directory call; a successful assignment
// invalidates the cached role reads of both the caller and the target, so
// the new grant is visible on the target's next request without waiting out
// the cache TTL.
func (s *RoleService) Assign(ctx context.Context, input AssignInput) error {
	if input.Caller == "" {
		return apperrors.Validation("caller is required")
	}

	role, ok := domainauth.ParseRole(input.Role)
	if !ok {
		return apperrors.ValidationField("role", "unknown role")
	}

	target, err := domainauth.ParseIdentityRef(input.Identity)
	if err != nil {
		if errors.Is(err, domainauth.ErrInvalidIdentityRef) {
			return apperrors.ValidationField("identity", domainauth.ErrInvalidIdentityRef.Error())
		}
		return apperrors.ValidationField("identity", err.Error())
	}

	if err := s.directory.AssignRole(ctx, input.Caller, target, role); err != nil {
		return err
	}

	s.InvalidateCaller(ctx, input.Caller)
	s.InvalidateCaller(ctx, target.String())
	s.logger.InfoContext(ctx, "role assigned",
		slog.String("caller", input.Caller),
		slog.String("target", target.String()),
		slog.String("role", string(role)))
	return nil
}

// CallerView aggregates everything the client needs to render for the
// authenticated user.
type CallerView struct {
	Role    domainauth.Role
	Admin   bool
	Profile *domainauth.Profile
}

// Me fetches the user's role, admin flag, and profile concurrently. Profile
// is nil for a first-time user.
func (s *RoleService) Me(ctx context.Context, userID string) (*CallerView, error) {
	if userID == "" {
		return nil, apperrors.Validation("user ID is required")
	}

	var view CallerView
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		role, err := s.CallerRole(gctx, userID)
		if err != nil {
			return err
		}
		view.Role = role
		return nil
	})
	g.Go(func() error {
		admin, err := s.IsCallerAdmin(gctx, userID)
		if err != nil {
			return err
		}
		view.Admin = admin
		return nil
	})
	g.Go(func() error {
		profile, ok, err := s.directory.CallerProfile(gctx, userID)
		if err != nil {
			return err
		}
		if ok {
			view.Profile = &profile
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &view, nil
}

// cachedRole reads the user's role from cache. Unknown or corrupt entries
// read as a miss.
func (s *RoleService) cachedRole(ctx context.Context, userID string) (domainauth.Role, bool) {
	if s.cache == nil {
		return "", false
	}
	raw, err := s.cache.Get(ctx, callerRoleKeyPrefix+userID)
	if err != nil || raw == nil {
		return "", false
	}
	role, ok := domainauth.ParseRole(string(raw))
	if !ok {
		return "", false
	}
	return role, true
}

func (s *RoleService) cachePut(ctx context.Context, key string, value []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "failed to cache role read",
			slog.String("key", key),
			slog.Any("error", err))
	}
}
