package bootstrap

import (
	"log/slog"

	"github.com/danicastudios/studiodesk/config"
	"github.com/danicastudios/studiodesk/internal/adapters/devauth"
	"github.com/danicastudios/studiodesk/internal/adapters/oidc"
	redisadapter "github.com/danicastudios/studiodesk/internal/adapters/redis"
	"github.com/danicastudios/studiodesk/internal/ports"
	"github.com/danicastudios/studiodesk/internal/service"
	"github.com/redis/go-redis/v9"
)

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// AuthBundle groups the auth service with the stores the HTTP layer and
// claim reconciler share with it.
type AuthBundle struct {
	Service  *service.AuthService
	Sessions ports.SessionStore
	Claims   ports.ClaimStore
}

// BuildAuthService creates an auth service based on the configured auth mode.
// Returns nil if auth is not configured or configuration is invalid.
func BuildAuthService(cfg AuthConfig) *AuthBundle {
	if cfg.RedisClient == nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("auth service disabled: redis client not configured", "mode", cfg.Auth.Mode)
		}
		return nil
	}

	// Redis-backed stores shared by both modes
	sessionStore := redisadapter.NewSessionStoreWithPrefix(cfg.RedisClient, "session:")
	claimStore := redisadapter.NewClaimStore(cfg.RedisClient)

	provider := buildAuthProvider(cfg)
	if provider == nil {
		return nil
	}

	svc := service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: sessionStore,
		Claims:   claimStore,
	})
	return &AuthBundle{Service: svc, Sessions: sessionStore, Claims: claimStore}
}

//nolint:ireturn // returning ports.AuthProvider lets us pick mock or OIDC providers at runtime.
func buildAuthProvider(cfg AuthConfig) ports.AuthProvider {
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			UserID:          cfg.Auth.DevAuth.UserID,
			Email:           cfg.Auth.DevAuth.Email,
			FirstName:       cfg.Auth.DevAuth.FirstName,
			LastName:        cfg.Auth.DevAuth.LastName,
			SessionDuration: cfg.Auth.SessionTTL,
		})
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("failed to create dev auth provider, auth disabled", "error", err)
			}
			return nil
		}
		return prov

	case config.AuthModeOAuth:
		oauth := cfg.Auth.OAuth
		// Only enable when fully configured
		if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
			if cfg.Logger != nil {
				cfg.Logger.Warn("AuthModeOAuth selected but required config missing; auth disabled",
					"discovery_url_empty", oauth.DiscoveryURL == "",
					"client_id_empty", oauth.ClientID == "",
					"client_secret_empty", oauth.ClientSecret == "",
				)
			}
			return nil
		}
		prov, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     oauth.ClientID,
			ClientSecret: oauth.ClientSecret,
			RedirectURL:  oauth.RedirectURL,
			Scope:        oauth.Scope,
			DiscoveryURL: oauth.DiscoveryURL,
			LogoutURL:    oauth.LogoutURL,
		})
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("failed to create OIDC provider, auth disabled", "error", err)
			}
			return nil
		}
		return prov

	default:
		return nil
	}
}
