package bootstrap

import (
	"io"
	"log/slog"
	"testing"

	"github.com/danicastudios/studiodesk/config"
)

func TestBuildAuthServiceReturnsNilWithoutRedis(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name string
		auth config.AuthConfig
	}{
		{
			name: "dev auth mode",
			auth: config.AuthConfig{
				Mode: config.AuthModeMock,
				DevAuth: config.DevAuthConfig{
					UserID:    "dev",
					Email:     "dev@example.com",
					FirstName: "Dev",
					LastName:  "User",
				},
			},
		},
		{
			name: "oauth mode",
			auth: config.AuthConfig{
				Mode: config.AuthModeOAuth,
				OAuth: config.OAuthConfig{
					ClientID:     "client-id",
					ClientSecret: "client-secret",
					DiscoveryURL: "https://issuer.example.com",
					RedirectURL:  "https://app.example.com/auth/callback",
					Scope:        "openid",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := AuthConfig{
				Auth:        tt.auth,
				RedisClient: nil,
				Logger:      logger,
			}

			if bundle := BuildAuthService(cfg); bundle != nil {
				t.Fatalf("BuildAuthService() = %v, want nil", bundle)
			}
		})
	}
}

func TestBuildAuthProviderOAuthRequiresFullConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name  string
		oauth config.OAuthConfig
	}{
		{
			name:  "missing discovery URL",
			oauth: config.OAuthConfig{ClientID: "id", ClientSecret: "secret"},
		},
		{
			name:  "missing client id",
			oauth: config.OAuthConfig{ClientSecret: "secret", DiscoveryURL: "https://issuer.example.com"},
		},
		{
			name:  "missing client secret",
			oauth: config.OAuthConfig{ClientID: "id", DiscoveryURL: "https://issuer.example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := AuthConfig{
				Auth: config.AuthConfig{
					Mode:  config.AuthModeOAuth,
					OAuth: tt.oauth,
				},
				Logger: logger,
			}

			if prov := buildAuthProvider(cfg); prov != nil {
				t.Fatalf("buildAuthProvider() = %v, want nil", prov)
			}
		})
	}
}

func TestBuildAuthProviderUnknownMode(t *testing.T) {
	cfg := AuthConfig{Auth: config.AuthConfig{Mode: config.AuthMode("saml")}}

	if prov := buildAuthProvider(cfg); prov != nil {
		t.Fatalf("buildAuthProvider() = %v, want nil", prov)
	}
}
