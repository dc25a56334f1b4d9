package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/danicastudios/studiodesk/internal/domain/auth"
	"github.com/danicastudios/studiodesk/internal/ports"
	"github.com/danicastudios/studiodesk/internal/service"
)

// Cookie names used by the login flow. The flow cookie carries the flow ID
// that keys the parked role claim and any claim error across the external
// identity-provider redirect.
const (
	sessionCookieName  = "session_id"
	flowCookieName     = "login_flow"
	stateCookieName    = "oauth_state"
	nonceCookieName    = "oauth_nonce"
	redirectCookieName = "post_login_redirect"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context, input service.BeginLoginInput) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc    AuthServiceInterface
	Claims ports.ClaimStore
	Roles  RoleReader
	// NewReconciler builds a fresh reconciler per callback; each one latches
	// so a replayed callback cannot submit the claim twice.
	NewReconciler func() *service.ClaimReconciler
	CookieDomain  string
	Logger        *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// loginRequest is the POST /auth/login payload. All fields are optional; a
// login without a requested role authenticates with whatever role the
// directory already holds.
type loginRequest struct {
	RequestedRole string `json:"requested_role"`
	Passcode      string `json:"passcode"`
	RedirectURI   string `json:"redirect_uri"`
}

// Login starts a login flow, optionally parking a role claim for the
// post-authentication reconciliation.
// POST /auth/login with JSON or form fields requested_role, passcode,
// redirect_uri; GET /auth/login?redirect_uri=... for claimless logins.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseLoginRequest(w, r)
	if !ok {
		return
	}

	redirectURI := safeRedirectPath(req.RedirectURI)

	// Validate the role up front so a typo is a 400, not a provider round trip.
	if req.RequestedRole != "" {
		if _, ok := domainauth.ParseRole(req.RequestedRole); !ok {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "invalid_role",
				Err:     errors.New("unknown role: " + req.RequestedRole),
			})
			return
		}
	}

	result, err := h.Svc.BeginLogin(r.Context(), service.BeginLoginInput{
		RedirectURL: redirectURI,
		Claim: domainauth.PendingRoleClaim{
			RequestedRole: domainauth.Role(req.RequestedRole),
			Passcode:      req.Passcode,
		},
	})
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_failed",
			Err:     err,
		})
		return
	}

	// Park state, nonce, flow ID, and the post-login destination in cookies
	// so they survive the identity-provider redirect.
	h.setOAuthCookies(w, r, oauthCookieParams{
		State:       result.State,
		Nonce:       result.Nonce,
		FlowID:      result.FlowID,
		RedirectURI: redirectURI,
	})

	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

func (h *AuthHandlers) parseLoginRequest(w http.ResponseWriter, r *http.Request) (loginRequest, bool) {
	var req loginRequest

	if r.Method == http.MethodGet {
		req.RedirectURI = r.URL.Query().Get("redirect_uri")
		return req, true
	}

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if !DecodeJSON(w, r, &req) {
			return req, false
		}
		return req, true
	}

	if err := r.ParseForm(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_form", Err: err})
		return req, false
	}
	req.RequestedRole = r.PostFormValue("requested_role")
	req.Passcode = r.PostFormValue("passcode")
	req.RedirectURI = r.PostFormValue("redirect_uri")
	return req, true
}

// Callback handles the OAuth callback endpoint. After the session is
// created, the pending role claim (if any) is reconciled against the
// directory. A rejected claim destroys the session before the browser sees
// it; the rejection message is delivered by the next status read.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_code",
			Err:     errors.New("authorization code is required"),
		})
		return
	}
	if state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_state",
			Err:     errors.New("state parameter is required"),
		})
		return
	}

	// Verify state and read nonce
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie(nonceCookieName)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce parameter"),
		})
		return
	}
	flowCookie, err := r.Cookie(flowCookieName)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_flow",
			Err:     errors.New("missing login flow cookie"),
		})
		return
	}

	result, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:   code,
		State:  state,
		Nonce:  nonceCookie.Value,
		FlowID: flowCookie.Value,
	})
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "login_completion_failed",
			Err:     err,
		})
		return
	}

	h.clearCookie(w, r, stateCookieName)
	h.clearCookie(w, r, nonceCookieName)
	redirectURI := h.getPostLoginRedirect(w, r)

	claim := h.NewReconciler().Reconcile(r.Context(), result.Session)
	if claim.Outcome == service.ClaimOutcomeRejected {
		// The session is already gone server-side. Leave the flow cookie in
		// place so the status endpoint can deliver the rejection message.
		h.clearCookie(w, r, sessionCookieName)
		http.Redirect(w, r, redirectURI, http.StatusFound)
		return
	}

	h.setSessionCookie(w, r, result.Session)
	h.clearCookie(w, r, flowCookieName)
	http.Redirect(w, r, redirectURI, http.StatusFound)
}

// Logout handles the logout endpoint.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	// Invalidate the server-side session if present. Logout clears the
	// session's pending claim but leaves any parked claim error alone.
	if sessionCookie, err := r.Cookie(sessionCookieName); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), sessionCookie.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}

	h.clearCookie(w, r, sessionCookieName)
	h.clearCookie(w, r, flowCookieName)

	redirectURI := r.FormValue("redirect_uri")
	if redirectURI == "" {
		redirectURI = r.URL.Query().Get("redirect_uri")
	}
	redirectURI = safeRedirectPath(redirectURI)

	isAJAX := strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
	if isAJAX {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": redirectURI,
		})
		return
	}

	http.Redirect(w, r, redirectURI, http.StatusFound)
}

// Status returns the current authentication status. For an authenticated
// session the caller's role is resolved through the directory-backed reader;
// the role field is omitted while it cannot be resolved. For an
// unauthenticated request any parked claim error is delivered exactly once
// and then cleared along with the flow cookie.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	sessionCookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		h.writeUnauthenticatedStatus(w, r)
		return
	}

	session, err := h.Svc.GetSession(r.Context(), sessionCookie.Value)
	if err != nil {
		// Session is invalid or expired, clear the cookie
		h.clearCookie(w, r, sessionCookieName)
		h.writeUnauthenticatedStatus(w, r)
		return
	}

	payload := map[string]interface{}{
		"authenticated": true,
		"user": map[string]interface{}{
			"id":         session.UserID,
			"first_name": session.FirstName,
			"last_name":  session.LastName,
			"email":      session.Email,
		},
		"expires_at": session.ExpiresAt,
	}
	if h.Roles != nil {
		if role, roleErr := h.Roles.CallerRole(r.Context(), session.UserID); roleErr == nil {
			payload["role"] = role
		} else {
			h.logger().WarnContext(r.Context(), "role resolution failed", "error", roleErr)
		}
	}

	WriteJSON(w, http.StatusOK, payload)
}

// writeUnauthenticatedStatus reports the signed-out state, delivering and
// consuming a parked claim error when the flow cookie identifies one.
func (h *AuthHandlers) writeUnauthenticatedStatus(w http.ResponseWriter, r *http.Request) {
	payload := map[string]interface{}{
		"authenticated": false,
	}

	if flowCookie, err := r.Cookie(flowCookieName); err == nil {
		if h.Claims != nil {
			if msg, ok := h.Claims.ClaimError(r.Context(), flowCookie.Value); ok {
				payload["claim_error"] = msg
				h.Claims.ClearClaimError(r.Context(), flowCookie.Value)
			}
		}
		h.clearCookie(w, r, flowCookieName)
	}

	WriteJSON(w, http.StatusOK, payload)
}

// clearCookie clears a cookie by setting it to expire immediately.
// It mirrors key attributes (Secure, Path, Domain, SameSite) used when setting cookies
// to maximize compatibility across browsers during deletion.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	cd := h.CookieDomain
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   cd,
		HttpOnly: true,
		Secure:   isSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// oauthCookieParams groups values needed to set the login-flow cookies.
type oauthCookieParams struct {
	State       string
	Nonce       string
	FlowID      string
	RedirectURI string
}

// setOAuthCookies stores OAuth state, nonce, the flow ID, and the post-login
// redirect in secure cookies.
func (h *AuthHandlers) setOAuthCookies(w http.ResponseWriter, r *http.Request, p oauthCookieParams) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	cd := h.CookieDomain

	for _, c := range []struct {
		name  string
		value string
	}{
		{stateCookieName, p.State},
		{nonceCookieName, p.Nonce},
		{flowCookieName, p.FlowID},
		{redirectCookieName, p.RedirectURI},
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     c.name,
			Value:    c.value,
			Path:     "/",
			Domain:   cd,
			HttpOnly: true,
			Secure:   isSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   600, // 10 minutes
		})
	}
}

// setSessionCookie writes the session cookie based on the session's expiry.
func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	cd := h.CookieDomain
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    s.ID,
		Path:     "/",
		Domain:   cd,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}

// getPostLoginRedirect returns the post-login redirect URL and clears the cookie.
func (h *AuthHandlers) getPostLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectURI := "/"
	if redirectCookie, err := r.Cookie(redirectCookieName); err == nil {
		candidate := redirectCookie.Value
		// Only relative paths are honored; anything absolute is dropped.
		u, parseErr := url.Parse(candidate)
		if parseErr == nil && !u.IsAbs() && u.Host == "" && strings.HasPrefix(u.Path, "/") {
			redirectURI = candidate
		}
		h.clearCookie(w, r, redirectCookieName)
	}
	return redirectURI
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
