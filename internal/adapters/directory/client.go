// Package directory provides the HTTP adapter for the remote studio
// directory service, the authoritative store of roles and profiles.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"

	domainauth "github.com/danicastudios/studiodesk/internal/domain/auth"
	apperrors "github.com/danicastudios/studiodesk/internal/errors"
	"github.com/danicastudios/studiodesk/internal/ports"
)

// defaultReasonExpr extracts the rejection reason from a directory error
// payload. Directories differ in envelope shape, so the expression is
// configurable.
const defaultReasonExpr = "message"

const maxErrorBodyBytes = 8 << 10

// Client implements ports.Directory over the directory's JSON API.
type Client struct {
	baseURL    string
	http       *http.Client
	reasonExpr string
}

// ClientConfig holds configuration for the directory client.
type ClientConfig struct {
	BaseURL string
	// ReasonExpr is a JMESPath expression applied to error response bodies to
	// extract the human-readable rejection reason. Defaults to "message".
	ReasonExpr string
	// HTTPClient is optional; a 15s-timeout client is used when nil.
	HTTPClient *http.Client
}

// NewClient creates a directory client, validating the reason expression up
// front so a bad configuration fails at startup rather than on the first
// rejected claim.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("directory base URL is required")
	}
	expr := cfg.ReasonExpr
	if strings.TrimSpace(expr) == "" {
		expr = defaultReasonExpr
	}
	if _, err := jmespath.Compile(expr); err != nil {
		return nil, fmt.Errorf("compile reason expression %q: %w", expr, err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		http:       httpClient,
		reasonExpr: expr,
	}, nil
}

var _ ports.Directory = (*Client)(nil)

type roleRequestPayload struct {
	User          string `json:"user"`
	RequestedRole string `json:"requestedRole"`
	Passcode      string `json:"passcode,omitempty"`
}

// RequestRole submits a self-service role claim. A 403 is a rejection and
// maps to an access-denied error carrying the directory's reason text;
// transport failures and 5xx responses map to unavailability.
func (c *Client) RequestRole(ctx context.Context, caller string, claim domainauth.PendingRoleClaim) error {
	payload := roleRequestPayload{
		User:          caller,
		RequestedRole: string(claim.RequestedRole),
		Passcode:      claim.Passcode,
	}
	resp, err := c.post(ctx, "/v1/roles/request", payload)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return apperrors.AccessDenied(c.extractReason(resp))
	default:
		return c.unexpectedStatus("request role", resp)
	}
}

type roleAssignPayload struct {
	Caller string `json:"caller"`
	Target string `json:"target"`
	Role   string `json:"role"`
}

// AssignRole directly grants a role; director-only on the directory side.
func (c *Client) AssignRole(ctx context.Context, caller string, target domainauth.IdentityRef, role domainauth.Role) error {
	payload := roleAssignPayload{Caller: caller, Target: target.String(), Role: string(role)}
	resp, err := c.post(ctx, "/v1/roles/assign", payload)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusBadRequest:
		return apperrors.Validation(c.extractReason(resp))
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return apperrors.Unauthorized(c.extractReason(resp))
	default:
		return c.unexpectedStatus("assign role", resp)
	}
}

type callerRolePayload struct {
	Role  string `json:"role"`
	Admin bool   `json:"admin"`
}

// CallerRole fetches the caller's current role; the directory returns the
// default reception role when no grant exists.
func (c *Client) CallerRole(ctx context.Context, caller string) (domainauth.Role, error) {
	var out callerRolePayload
	if err := c.getJSON(ctx, "/v1/roles/caller?user="+url.QueryEscape(caller), &out); err != nil {
		return "", err
	}
	role, ok := domainauth.ParseRole(out.Role)
	if !ok {
		return "", apperrors.Internalf("directory returned unknown role %q", out.Role)
	}
	return role, nil
}

// IsCallerAdmin reports whether the caller holds the director role.
func (c *Client) IsCallerAdmin(ctx context.Context, caller string) (bool, error) {
	var out callerRolePayload
	if err := c.getJSON(ctx, "/v1/roles/caller?user="+url.QueryEscape(caller), &out); err != nil {
		return false, err
	}
	return out.Admin, nil
}

// CallerProfile fetches the caller's profile; 404 means a first-time user.
func (c *Client) CallerProfile(ctx context.Context, caller string) (domainauth.Profile, bool, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/profiles/"+url.PathEscape(caller), nil)
	if err != nil {
		return domainauth.Profile{}, false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return domainauth.Profile{}, false, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "directory unreachable")
	}
	defer drainAndClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domainauth.Profile{}, false, nil
	case resp.StatusCode >= 300:
		return domainauth.Profile{}, false, c.unexpectedStatus("get profile", resp)
	}

	var p domainauth.Profile
	if decodeErr := json.NewDecoder(resp.Body).Decode(&p); decodeErr != nil {
		return domainauth.Profile{}, false, apperrors.Wrap(decodeErr, apperrors.ErrCodeInternal, "decode profile")
	}
	return p, true, nil
}

// SaveCallerProfile creates or replaces the caller's profile.
func (c *Client) SaveCallerProfile(ctx context.Context, caller string, p domainauth.Profile) error {
	body, err := json.Marshal(p)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode profile")
	}
	req, err := c.newRequest(ctx, http.MethodPut, "/v1/profiles/"+url.PathEscape(caller), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "directory unreachable")
	}
	defer drainAndClose(resp.Body)

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusBadRequest:
		return apperrors.Validation(c.extractReason(resp))
	default:
		return c.unexpectedStatus("save profile", resp)
	}
}

func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode request")
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "directory unreachable")
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "directory unreachable")
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode >= 300 {
		return c.unexpectedStatus("directory read", resp)
	}
	if decodeErr := json.NewDecoder(resp.Body).Decode(out); decodeErr != nil {
		return apperrors.Wrap(decodeErr, apperrors.ErrCodeInternal, "decode directory response")
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build directory request")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// extractReason pulls the human-readable reason out of an error response
// body using the configured JMESPath expression, falling back to the raw
// body text when the body is not JSON or the expression yields nothing.
func (c *Client) extractReason(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil || len(raw) == 0 {
		return resp.Status
	}

	var decoded any
	if jsonErr := json.Unmarshal(raw, &decoded); jsonErr == nil {
		if result, searchErr := jmespath.Search(c.reasonExpr, decoded); searchErr == nil {
			if s, ok := result.(string); ok && s != "" {
				return s
			}
		}
	}
	return strings.TrimSpace(string(raw))
}

func (c *Client) unexpectedStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 500 {
		return apperrors.Unavailablef("%s: directory responded %s", op, resp.Status)
	}
	return apperrors.Internalf("%s: unexpected directory status %s", op, resp.Status)
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxErrorBodyBytes))
	_ = body.Close()
}
