package ports

import (
	"context"
	"time"
)

// CacheRepository is the read-through cache the role service uses for caller
// role and admin-flag lookups. The data layer provides the Redis
// implementation.
type CacheRepository interface {
	// Set stores a value under key with the given TTL. A zero TTL means no
	// expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns the value for key, or nil when the key is absent or
	// expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Returns true when a key was actually removed.
	Delete(ctx context.Context, key string) (bool, error)

	// Health reports whether the cache backend is reachable.
	Health(ctx context.Context) error
}
