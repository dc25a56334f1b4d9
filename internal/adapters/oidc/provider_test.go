package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/danicastudios/studiodesk/internal/ports"
)

// newDiscoveryServer serves a minimal OIDC discovery document whose issuer
// matches the server's own URL.
func newDiscoveryServer(t *testing.T) *httptest.Server {
	t.Helper()

	issuer := ""
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc := DiscoveryDocument{
			Issuer:                issuer,
			AuthorizationEndpoint: "https://idp.example.com/auth",
			TokenEndpoint:         "https://idp.example.com/token",
			UserinfoEndpoint:      "https://idp.example.com/userinfo",
			JwksURI:               "https://idp.example.com/jwks",
		}
		_ = json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(server.Close)
	issuer = server.URL
	return server
}

func newTestProvider(t *testing.T) *Provider {
	t.Helper()

	discovery := newDiscoveryServer(t)
	provider, err := NewProvider(ProviderConfig{
		ClientID:     "studiodesk-client",
		ClientSecret: "test-secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		Scope:        "openid profile email",
		DiscoveryURL: discovery.URL,
		LogoutURL:    "https://idp.example.com/logout",
	})
	require.NoError(t, err)
	return provider
}

func TestNewProvider_Success(t *testing.T) {
	provider := newTestProvider(t)

	assert.Equal(t, "https://idp.example.com/auth", provider.config.Endpoint.AuthURL)
	assert.Equal(t, "https://idp.example.com/token", provider.config.Endpoint.TokenURL)
}

func TestNewProvider_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		config ProviderConfig
		errMsg string
	}{
		{
			name: "missing client ID",
			config: ProviderConfig{
				ClientSecret: "secret",
				RedirectURL:  "http://localhost/auth/callback",
				DiscoveryURL: "http://idp.example.com",
			},
			errMsg: "client ID is required",
		},
		{
			name: "missing client secret",
			config: ProviderConfig{
				ClientID:     "client",
				RedirectURL:  "http://localhost/auth/callback",
				DiscoveryURL: "http://idp.example.com",
			},
			errMsg: "client secret is required",
		},
		{
			name: "missing redirect URL",
			config: ProviderConfig{
				ClientID:     "client",
				ClientSecret: "secret",
				DiscoveryURL: "http://idp.example.com",
			},
			errMsg: "redirect URL is required",
		},
		{
			name: "missing discovery URL",
			config: ProviderConfig{
				ClientID:     "client",
				ClientSecret: "secret",
				RedirectURL:  "http://localhost/auth/callback",
			},
			errMsg: "discovery URL is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestProvider_Begin(t *testing.T) {
	provider := newTestProvider(t)

	authURL, state, nonce, err := provider.Begin(context.Background(), ports.BeginInput{
		RedirectURL: "http://localhost:8080/auth/callback",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, state)
	assert.NotEmpty(t, nonce)
	assert.Contains(t, authURL, "https://idp.example.com/auth")
	assert.Contains(t, authURL, "client_id=studiodesk-client")
	assert.Contains(t, authURL, "state="+state)
	assert.Contains(t, authURL, "nonce="+nonce)
}

func TestProvider_Begin_EmptyRedirectURL(t *testing.T) {
	provider := newTestProvider(t)

	_, _, _, err := provider.Begin(context.Background(), ports.BeginInput{RedirectURL: ""})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect URL is required")
}

func TestProvider_Exchange_ValidationErrors(t *testing.T) {
	provider := newTestProvider(t)

	tests := []struct {
		name   string
		input  ports.ExchangeInput
		errMsg string
	}{
		{
			name:   "missing code",
			input:  ports.ExchangeInput{State: "state", Nonce: "nonce"},
			errMsg: "authorization code is required",
		},
		{
			name:   "missing state",
			input:  ports.ExchangeInput{Code: "code", Nonce: "nonce"},
			errMsg: "state is required",
		},
		{
			name:   "missing nonce",
			input:  ports.ExchangeInput{Code: "code", State: "state"},
			errMsg: "nonce is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := provider.Exchange(context.Background(), tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestProvider_Exchange_TokenEndpointFailure(t *testing.T) {
	// Validation passes; the exchange itself fails because the mocked token
	// endpoint is unreachable.
	provider := newTestProvider(t)

	_, err := provider.Exchange(context.Background(), ports.ExchangeInput{
		Code:  "test-code",
		State: "test-state",
		Nonce: "test-nonce",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exchange code for token")
}

func TestProvider_ImplementsInterface(t *testing.T) {
	var _ ports.AuthProvider = newTestProvider(t)
}

func TestGenerateRandomString(t *testing.T) {
	for _, length := range []int{16, 32} {
		str, err := generateRandomString(length)
		require.NoError(t, err)
		assert.Len(t, str, length)
	}

	str1, err := generateRandomString(16)
	require.NoError(t, err)
	str2, err := generateRandomString(16)
	require.NoError(t, err)
	assert.NotEqual(t, str1, str2)
}

func TestGetIDTokenFromToken_Success(t *testing.T) {
	tok := (&oauth2.Token{}).WithExtra(map[string]any{"id_token": "abc.def.ghi"})
	idTok, err := getIDTokenFromToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", idTok)
}

func TestGetIDTokenFromToken_Missing(t *testing.T) {
	tok := (&oauth2.Token{}).WithExtra(map[string]any{"not_id": "x"})
	_, err := getIDTokenFromToken(tok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing id_token")
}

func TestGetIDTokenFromToken_Nil(t *testing.T) {
	_, err := getIDTokenFromToken(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil token")
}

func Test_mapIDTokenClaims_ADShape(t *testing.T) {
	claims := idTokenADClaims{
		Sub:            "sub-123",
		SamAccountName: "dcastillo",
		FirstName:      "Dana",
		LastName:       "Castillo",
		Mail:           "dana@example.com",
	}
	f := mapIDTokenClaims(claims)
	assert.Equal(t, "dcastillo", f.userID)
	assert.Equal(t, "dana@example.com", f.email)
	assert.Equal(t, "Dana", f.givenName)
	assert.Equal(t, "Castillo", f.familyName)
}

func Test_fillFromUserInfoClaims_ADShape(t *testing.T) {
	ui := UserInfo{
		Subject:        "sub-abc",
		SamAccountName: "dcastillo",
		FirstName:      "Dana",
		LastName:       "Castillo",
		Mail:           "dana@example.com",
	}

	var f idFields
	fillFromUserInfoClaims(&f, ui)
	assert.Equal(t, "dcastillo", f.userID)
	assert.Equal(t, "dana@example.com", f.email)
	assert.Equal(t, "Dana", f.givenName)
	assert.Equal(t, "Castillo", f.familyName)

	// ID token claims win over userinfo; existing fields stay put.
	f2 := idFields{
		userID:     "keep",
		email:      "keep@example.com",
		givenName:  "Keep",
		familyName: "Keep",
	}
	fillFromUserInfoClaims(&f2, ui)
	assert.Equal(t, "keep", f2.userID)
	assert.Equal(t, "keep@example.com", f2.email)
	assert.Equal(t, "Keep", f2.givenName)
	assert.Equal(t, "Keep", f2.familyName)
}
