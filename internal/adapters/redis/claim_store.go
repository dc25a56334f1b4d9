package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/danicastudios/studiodesk/internal/domain/auth"
)

const (
	pendingClaimPrefix = "pendingRoleRequest:"
	claimErrorPrefix   = "roleClaimError:"

	// defaultClaimTTL bounds how long a pending claim or claim error may sit
	// unconsumed. The IdP round trip takes seconds; anything older is an
	// abandoned login.
	defaultClaimTTL = 10 * time.Minute
)

// ClaimStore is a Redis-based store for in-flight role claims and claim
// errors, keyed by login flow ID. Both entries are write-once-then-consumed:
// the login form writes the claim before the IdP redirect, the reconciler
// reads and clears it after; errors are written by the reconciler and
// consumed by the next status read.
//
// Reads degrade to "absent" when Redis is unreachable so a store outage
// disables the claim flow without failing the page.
type ClaimStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewClaimStore creates a ClaimStore with the default entry TTL.
func NewClaimStore(client redis.UniversalClient) *ClaimStore {
	return &ClaimStore{client: client, ttl: defaultClaimTTL}
}

// NewClaimStoreWithTTL creates a ClaimStore with a custom entry TTL.
func NewClaimStoreWithTTL(client redis.UniversalClient, ttl time.Duration) *ClaimStore {
	if ttl <= 0 {
		ttl = defaultClaimTTL
	}
	return &ClaimStore{client: client, ttl: ttl}
}

// StorePendingClaim records the role selection for a login flow, replacing
// any previous one so at most one claim exists per flow.
func (s *ClaimStore) StorePendingClaim(ctx context.Context, flowID string, c domainauth.PendingRoleClaim) error {
	if flowID == "" {
		return errors.New("flow ID cannot be empty")
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal pending claim: %w", err)
	}

	return s.client.Set(ctx, pendingClaimPrefix+flowID, data, s.ttl).Err()
}

// PendingClaim returns the stored claim for a flow. Absence, expiry, a
// corrupt entry, and a Redis outage all read as (zero, false).
func (s *ClaimStore) PendingClaim(ctx context.Context, flowID string) (domainauth.PendingRoleClaim, bool) {
	var claim domainauth.PendingRoleClaim
	if flowID == "" {
		return claim, false
	}

	data, err := s.client.Get(ctx, pendingClaimPrefix+flowID).Result()
	if err != nil {
		return claim, false
	}
	if unmarshalErr := json.Unmarshal([]byte(data), &claim); unmarshalErr != nil {
		return claim, false
	}
	if _, ok := domainauth.ParseRole(string(claim.RequestedRole)); !ok {
		return domainauth.PendingRoleClaim{}, false
	}
	return claim, true
}

// ClearPendingClaim removes the claim for a flow. Idempotent; clearing an
// absent claim is not an error.
func (s *ClaimStore) ClearPendingClaim(ctx context.Context, flowID string) {
	if flowID == "" {
		return
	}
	// Best effort: the TTL reaps the entry if the delete is lost.
	_ = s.client.Del(ctx, pendingClaimPrefix+flowID).Err()
}

// StoreClaimError records the classified rejection message for a flow,
// replacing any previous one.
func (s *ClaimStore) StoreClaimError(ctx context.Context, flowID, message string) error {
	if flowID == "" {
		return errors.New("flow ID cannot be empty")
	}
	return s.client.Set(ctx, claimErrorPrefix+flowID, message, s.ttl).Err()
}

// ClaimError returns the stored rejection message for a flow, if any.
func (s *ClaimStore) ClaimError(ctx context.Context, flowID string) (string, bool) {
	if flowID == "" {
		return "", false
	}
	msg, err := s.client.Get(ctx, claimErrorPrefix+flowID).Result()
	if err != nil {
		return "", false
	}
	return msg, true
}

// ClearClaimError removes the rejection message for a flow. Idempotent.
func (s *ClaimStore) ClearClaimError(ctx context.Context, flowID string) {
	if flowID == "" {
		return
	}
	_ = s.client.Del(ctx, claimErrorPrefix+flowID).Err()
}
