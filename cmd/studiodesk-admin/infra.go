package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danicastudios/studiodesk/config"
	"github.com/danicastudios/studiodesk/internal/bootstrap"
	"github.com/danicastudios/studiodesk/internal/data"
	"github.com/danicastudios/studiodesk/internal/ports"
	"github.com/danicastudios/studiodesk/internal/service"
	"github.com/redis/go-redis/v9"
)

var errRedisNotConfigured = errors.New("redis not configured")

// buildRoleService wires a RoleService against the configured directory
// backend. The returned cleanup closes every connection that was opened.
func buildRoleService(cmdCtx *commandContext) (*service.RoleService, func(), error) {
	var (
		db          *sql.DB
		redisClient redis.UniversalClient
	)

	cleanup := func() {
		if redisClient != nil {
			if closeErr := redisClient.Close(); closeErr != nil {
				cmdCtx.Logger.Warn("redis close failed", "error", closeErr)
			}
		}
		if db != nil {
			if closeErr := db.Close(); closeErr != nil {
				cmdCtx.Logger.Warn("db close failed", "error", closeErr)
			}
		}
	}

	if cmdCtx.Config.Directory.Mode == config.DirectoryModePostgres {
		conn, err := bootstrap.ConnectDB(cmdCtx.Config.Postgres, cmdCtx.Logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect db: %w", err)
		}
		db = conn
	}

	redisClient, err := maybeConnectRedis(cmdCtx.Logger, &cmdCtx.Config.Redis)
	if err != nil {
		if !errors.Is(err, errRedisNotConfigured) {
			cleanup()
			return nil, nil, err
		}
		cmdCtx.Logger.Info("no redis configuration detected; role cache disabled")
		redisClient = nil
	}

	directory, err := bootstrap.BuildDirectory(&cmdCtx.Config, db)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	var cacheRepo ports.CacheRepository
	if redisClient != nil {
		cacheRepo = data.NewRedisCacheRepo(redisClient)
	}

	roles := service.NewRoleService(service.RoleServiceOptions{
		Directory: directory,
		Cache:     cacheRepo,
		CacheTTL:  cmdCtx.Config.Cache.RoleTTL,
		Logger:    cmdCtx.Logger,
	})
	return roles, cleanup, nil
}

// maybeConnectRedis returns a connected client when configuration is present.
//
//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func maybeConnectRedis(logger *slog.Logger, cfg *config.RedisConfig) (redis.UniversalClient, error) {
	if !hasRedisConfig(cfg) {
		return nil, errRedisNotConfigured
	}
	client, err := bootstrap.ConnectRedis(*cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

func hasRedisConfig(cfg *config.RedisConfig) bool {
	if cfg == nil {
		return false
	}
	if cfg.UseCluster {
		return len(cfg.ClusterNodes) > 0 || cfg.URI != ""
	}
	if cfg.UseSentinel {
		return len(cfg.SentinelNodes) > 0
	}
	return cfg.URI != ""
}
