package data

import (
	"context"
	"testing"
	"time"

	"github.com/danicastudios/studiodesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCacheRepo(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := testutil.SetupTestRedis(t)
	defer client.Close()

	repo := NewRedisCacheRepo(client)
	ctx := context.Background()

	t.Run("set and get round-trip", func(t *testing.T) {
		key := "callerRole:cache-test-1"
		value := []byte("director")
		ttl := 5 * time.Minute

		err := repo.Set(ctx, key, value, ttl)
		require.NoError(t, err)

		result, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, value, result)

		actualTTL := client.TTL(ctx, key).Val()
		assert.True(t, actualTTL > 0 && actualTTL <= ttl)
	})

	t.Run("get absent key returns nil", func(t *testing.T) {
		result, err := repo.Get(ctx, "callerRole:never-cached")
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("delete existing key", func(t *testing.T) {
		key := "callerAdmin:cache-test-2"

		err := repo.Set(ctx, key, []byte("true"), time.Minute)
		require.NoError(t, err)

		deleted, err := repo.Delete(ctx, key)
		require.NoError(t, err)
		assert.True(t, deleted)

		result, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("delete absent key", func(t *testing.T) {
		deleted, err := repo.Delete(ctx, "callerRole:never-cached")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("health", func(t *testing.T) {
		assert.NoError(t, repo.Health(ctx))
	})
}

func TestRedisCacheRepoRejectsEmptyKeys(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := testutil.SetupTestRedis(t)
	defer client.Close()

	repo := NewRedisCacheRepo(client)
	ctx := context.Background()

	err := repo.Set(ctx, "", []byte("value"), time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key cannot be empty")

	_, err = repo.Get(ctx, "")
	require.Error(t, err)

	_, err = repo.Delete(ctx, "")
	require.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	cfg := RedisConfig{
		Addr:     "localhost:6379",
		Password: "test-password",
		DB:       2,
	}

	client := NewRedisClient(cfg)
	require.NotNil(t, client)
	defer client.Close()

	opts := client.Options()
	assert.Equal(t, cfg.Addr, opts.Addr)
	assert.Equal(t, cfg.Password, opts.Password)
	assert.Equal(t, cfg.DB, opts.DB)
}
