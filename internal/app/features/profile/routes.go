// internal/app/features/profile/routes.go
package profile

import "github.com/go-chi/chi/v5"

// Routes mounts under /api/profile behind BearerAuth.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Patch("/", h.HandleUpdate)
	return r
}
