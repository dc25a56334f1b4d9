package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danicastudios/studiodesk/config"
	directoryclient "github.com/danicastudios/studiodesk/internal/adapters/directory"
	"github.com/danicastudios/studiodesk/internal/data"
	"github.com/danicastudios/studiodesk/internal/domain/auth"
	"github.com/danicastudios/studiodesk/internal/ports"
	"github.com/danicastudios/studiodesk/internal/service"
	"github.com/redis/go-redis/v9"
)

// ServiceContainer holds the application's wired services.
type ServiceContainer struct {
	Auth      *AuthBundle
	Roles     *service.RoleService
	Profiles  *service.ProfileService
	Directory ports.Directory
	Cache     ports.CacheRepository
	Logger    *slog.Logger

	// cacheClient is set only when the cache uses its own Redis instance.
	cacheClient redis.UniversalClient
}

// ServicesConfig contains dependencies for building services.
type ServicesConfig struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildServices wires the directory, role, profile, and auth services.
func BuildServices(cfg ServicesConfig) (*ServiceContainer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	directory, err := BuildDirectory(appCfg, cfg.DB)
	if err != nil {
		return nil, err
	}

	// The role cache shares the main Redis client unless a dedicated cache
	// instance is configured.
	var (
		cacheRepo   ports.CacheRepository
		cacheClient redis.UniversalClient
	)
	if appCfg.Cache.RedisAddr != "" {
		cacheClient = data.NewRedisClient(data.RedisConfig{
			Addr:     appCfg.Cache.RedisAddr,
			Password: appCfg.Cache.RedisPassword,
			DB:       appCfg.Cache.RedisDB,
		})
		cacheRepo = data.NewRedisCacheRepo(cacheClient)
	} else if cfg.RedisClient != nil {
		cacheRepo = data.NewRedisCacheRepo(cfg.RedisClient)
	}

	roles := service.NewRoleService(service.RoleServiceOptions{
		Directory: directory,
		Cache:     cacheRepo,
		CacheTTL:  appCfg.Cache.RoleTTL,
		Logger:    logger,
	})
	profiles := service.NewProfileService(service.ProfileServiceOptions{Directory: directory})

	authBundle := BuildAuthService(AuthConfig{
		Auth:        appCfg.Auth,
		RedisClient: cfg.RedisClient,
		Logger:      logger,
	})
	if authBundle == nil {
		return nil, fmt.Errorf("auth service could not be built; check auth and redis configuration")
	}

	return &ServiceContainer{
		Auth:        authBundle,
		Roles:       roles,
		Profiles:    profiles,
		Directory:   directory,
		Cache:       cacheRepo,
		Logger:      logger,
		cacheClient: cacheClient,
	}, nil
}

// Close releases connections owned by the container (currently only a
// dedicated cache Redis client, when one was configured).
func (c *ServiceContainer) Close() error {
	if c.cacheClient != nil {
		return c.cacheClient.Close()
	}
	return nil
}

// NewClaimReconciler builds a fresh reconciler bound to this container's
// stores. One reconciler serves one authentication callback.
func (c *ServiceContainer) NewClaimReconciler() *service.ClaimReconciler {
	return service.NewClaimReconciler(service.ClaimReconcilerOptions{
		Directory: c.Directory,
		Claims:    c.Auth.Claims,
		Sessions:  c.Auth.Sessions,
		Roles:     c.Roles,
		Logger:    c.Logger,
	})
}

// BuildDirectory creates the directory backend selected by configuration.
// Postgres mode requires a database connection; remote mode requires a base
// URL.
//
//nolint:ireturn // returning ports.Directory lets us pick postgres or remote backends at runtime.
func BuildDirectory(cfg *config.AppConfig, db *sql.DB) (ports.Directory, error) {
	switch cfg.Directory.Mode {
	case config.DirectoryModeRemote:
		client, err := directoryclient.NewClient(directoryclient.ClientConfig{
			BaseURL:    cfg.Directory.BaseURL,
			ReasonExpr: cfg.Directory.ReasonExpr,
			HTTPClient: &http.Client{Timeout: cfg.Directory.Timeout},
		})
		if err != nil {
			return nil, fmt.Errorf("build remote directory: %w", err)
		}
		return client, nil

	case config.DirectoryModePostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres directory requires a database connection")
		}
		passcodes := make(map[auth.Role]string)
		if cfg.Directory.DirectorPasscode != "" {
			passcodes[auth.RoleDirector] = cfg.Directory.DirectorPasscode
		}
		if cfg.Directory.ManagementPasscode != "" {
			passcodes[auth.RoleManagement] = cfg.Directory.ManagementPasscode
		}
		repo, err := data.NewDirectoryRepo(db, data.DirectoryRules{
			DirectorCap: cfg.Directory.DirectorCap,
			Passcodes:   passcodes,
		})
		if err != nil {
			return nil, fmt.Errorf("build postgres directory: %w", err)
		}
		return repo, nil

	default:
		return nil, fmt.Errorf("unknown directory mode %q", cfg.Directory.Mode)
	}
}
