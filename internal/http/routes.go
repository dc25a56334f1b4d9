package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/danicastudios/studiodesk/internal/domain/auth"
	"github.com/danicastudios/studiodesk/internal/ports"
	"github.com/danicastudios/studiodesk/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth     *service.AuthService
	Roles    *service.RoleService
	Profiles *service.ProfileService
	Claims   ports.ClaimStore
	// NewReconciler builds a per-callback claim reconciler.
	NewReconciler func() *service.ClaimReconciler
	CookieDomain  string
	Logger        *slog.Logger
}

// NewRouter creates and configures a new HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:           services.Auth,
		Claims:        services.Claims,
		Roles:         services.Roles,
		NewReconciler: services.NewReconciler,
		CookieDomain:  services.CookieDomain,
		Logger:        services.Logger,
	}
	roleHandlers := &RoleHandlers{Svc: services.Roles, Logger: services.Logger}
	profileHandlers := &ProfileHandlers{Svc: services.Profiles}

	registerAuthRoutes(mux, authHandlers)
	registerRoleRoutes(mux, roleHandlers, services)
	registerProfileRoutes(mux, profileHandlers, services.Auth)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	// CSRF wraps the whole surface; compression and logging are applied by
	// the server bootstrap.
	return CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain})(mux)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.Handle("GET /auth/login", http.HandlerFunc(h.Login))
	mux.Handle("POST /auth/login", http.HandlerFunc(h.Login))
	mux.Handle("GET /auth/callback", http.HandlerFunc(h.Callback))
	mux.Handle("POST /auth/logout", http.HandlerFunc(h.Logout))
	mux.Handle("GET /auth/status", http.HandlerFunc(h.Status))
}

func registerRoleRoutes(mux *http.ServeMux, h *RoleHandlers, services RouterServices) {
	requireAuth := RequireAuth(services.Auth)
	mux.Handle("GET /api/roles/me", requireAuth(http.HandlerFunc(h.Me)))

	// Only directors may hand out roles; the directory re-checks server-side.
	requireDirector := RequireRoles(services.Auth, services.Roles, domainauth.RoleDirector)
	mux.Handle("POST /api/roles/assign", requireDirector(http.HandlerFunc(h.Assign)))
}

func registerProfileRoutes(mux *http.ServeMux, h *ProfileHandlers, auth AuthServiceInterface) {
	requireAuth := RequireAuth(auth)
	mux.Handle("GET /api/profile", requireAuth(http.HandlerFunc(h.Get)))
	mux.Handle("PUT /api/profile", requireAuth(http.HandlerFunc(h.Save)))
}
