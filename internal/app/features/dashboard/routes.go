// internal/app/features/dashboard/routes.go
package dashboard

import "github.com/go-chi/chi/v5"

// Routes mounts the page at /dashboard. The caller applies the guard.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeDashboard)
	return r
}

// APIRoutes mounts under /api/dashboard behind BearerAuth.
func APIRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/stats", h.ServeStats)
	return r
}
