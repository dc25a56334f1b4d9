package httpx

import (
	"context"
	"errors"
	"net/http"

	domainauth "github.com/danicastudios/studiodesk/internal/domain/auth"
	"github.com/danicastudios/studiodesk/internal/service"
)

// ProfileServiceInterface defines the profile operations the handlers need.
type ProfileServiceInterface interface {
	Get(ctx context.Context, userID string) (*domainauth.Profile, error)
	Save(ctx context.Context, userID string, input service.SaveProfileInput) (*domainauth.Profile, error)
}

// ProfileHandlers provides HTTP handlers for the caller's own profile.
type ProfileHandlers struct {
	Svc ProfileServiceInterface
}

// Get returns the caller's profile, or {"profile": null} for a first-timer.
// GET /api/profile.
func (h *ProfileHandlers) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	profile, err := h.Svc.Get(r.Context(), session.UserID)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	if profile == nil {
		WriteJSON(w, http.StatusOK, map[string]interface{}{"profile": nil})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"profile": map[string]string{
			"name":  profile.Name,
			"phone": profile.Phone,
		},
	})
}

// saveProfileRequest is the PUT /api/profile payload.
type saveProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Save validates and persists the caller's profile.
// PUT /api/profile.
func (h *ProfileHandlers) Save(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	var req saveProfileRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	profile, err := h.Svc.Save(r.Context(), session.UserID, service.SaveProfileInput{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"profile": map[string]string{
			"name":  profile.Name,
			"phone": profile.Phone,
		},
	})
}
