package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danicastudios/studiodesk/internal/service"
)

// RoleServiceInterface defines the role operations the handlers need.
type RoleServiceInterface interface {
	Me(ctx context.Context, userID string) (*service.CallerView, error)
	Assign(ctx context.Context, input service.AssignInput) error
}

// RoleHandlers provides HTTP handlers for role operations.
type RoleHandlers struct {
	Svc    RoleServiceInterface
	Logger *slog.Logger
}

func (h *RoleHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Me returns the caller's role, admin flag, and profile.
// GET /api/roles/me.
func (h *RoleHandlers) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	view, err := h.Svc.Me(r.Context(), session.UserID)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "caller view failed", "error", err)
		WriteAppError(w, err)
		return
	}

	payload := map[string]interface{}{
		"role":  view.Role,
		"admin": view.Admin,
	}
	if view.Profile != nil {
		payload["profile"] = map[string]string{
			"name":  view.Profile.Name,
			"phone": view.Profile.Phone,
		}
	}
	WriteJSON(w, http.StatusOK, payload)
}

// assignRequest is the POST /api/roles/assign payload.
type assignRequest struct {
	Identity string `json:"identity"`
	Role     string `json:"role"`
}

// Assign grants a role to another identity. The route is gated to directors;
// the directory enforces the same restriction server-side.
// POST /api/roles/assign.
func (h *RoleHandlers) Assign(w http.ResponseWriter, r *http.Request) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	var req assignRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	err := h.Svc.Assign(r.Context(), service.AssignInput{
		Caller:   session.UserID,
		Identity: req.Identity,
		Role:     req.Role,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}
