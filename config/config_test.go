package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseConfig(t *testing.T) AppConfig {
	t.Helper()
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()
	return cfg
}

func TestAppConfig_Defaults(t *testing.T) {
	cfg := parseConfig(t)

	assert.False(t, cfg.IsDev)
	assert.Equal(t, AuthModeOAuth, cfg.Auth.Mode)
	assert.Equal(t, "studiodesk", cfg.Postgres.User)
	assert.Equal(t, "studiodesk", cfg.Postgres.Name)
	assert.Equal(t, "localhost:6379", cfg.Redis.URI)
	assert.Equal(t, 5*time.Minute, cfg.Cache.RoleTTL)
	assert.Equal(t, DirectoryModePostgres, cfg.Directory.Mode)
	assert.Equal(t, 2, cfg.Directory.DirectorCap)
	assert.Equal(t, "message", cfg.Directory.ReasonExpr)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 12*time.Hour, cfg.Auth.SessionTTL)
}

func TestAppConfig_DevModeFromNodeEnv(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	cfg := parseConfig(t)
	assert.True(t, cfg.IsDev)
}

func TestAuthMode_UnmarshalText(t *testing.T) {
	var m AuthMode
	require.NoError(t, m.UnmarshalText([]byte("MOCK")))
	assert.Equal(t, AuthModeMock, m)
	assert.Error(t, m.UnmarshalText([]byte("ldap")))
}

func TestDirectoryMode_UnmarshalText(t *testing.T) {
	var m DirectoryMode
	require.NoError(t, m.UnmarshalText([]byte("Remote")))
	assert.Equal(t, DirectoryModeRemote, m)
	assert.Error(t, m.UnmarshalText([]byte("ldap")))
}

func TestDirectoryConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DIRECTORY_MODE", "remote")
	t.Setenv("DIRECTORY_BASE_URL", "https://directory.internal")
	t.Setenv("DIRECTORY_REASON_EXPR", "error.message")
	t.Setenv("DIRECTORY_DIRECTOR_PASSCODE", "top-secret")

	cfg := parseConfig(t)
	assert.Equal(t, DirectoryModeRemote, cfg.Directory.Mode)
	assert.Equal(t, "https://directory.internal", cfg.Directory.BaseURL)
	assert.Equal(t, "error.message", cfg.Directory.ReasonExpr)
	assert.Equal(t, "top-secret", cfg.Directory.DirectorPasscode)
	require.NoError(t, cfg.Directory.Validate())
}

func TestDirectoryConfig_RemoteRequiresBaseURL(t *testing.T) {
	d := DirectoryConfig{Mode: DirectoryModeRemote}
	assert.Error(t, d.Validate())

	d.BaseURL = "https://directory.internal"
	assert.NoError(t, d.Validate())
}

func TestDirectoryConfig_Sanitize(t *testing.T) {
	d := DirectoryConfig{DirectorCap: 0, Timeout: -1}
	d.Sanitize()
	assert.Equal(t, 1, d.DirectorCap)
	assert.Equal(t, 15*time.Second, d.Timeout)
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	h := HTTPConfig{CompressionLevel: 42}
	h.Sanitize()
	assert.Equal(t, 9, h.CompressionLevel)

	h = HTTPConfig{CompressionLevel: -3}
	h.Sanitize()
	assert.Equal(t, 1, h.CompressionLevel)
}

func TestHTTPConfig_Sanitize_PublicSuffixCookieDomain(t *testing.T) {
	h := HTTPConfig{CompressionLevel: 6, CookieDomain: "com"}
	h.Sanitize()
	assert.Empty(t, h.CookieDomain)

	h = HTTPConfig{CompressionLevel: 6, CookieDomain: "studio.example.com"}
	h.Sanitize()
	assert.Equal(t, "studio.example.com", h.CookieDomain)
}
