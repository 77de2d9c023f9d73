// internal/app/features/members/routes.go
package members

import "github.com/go-chi/chi/v5"

// Routes mounts the members page. The caller guards it with a minimum role
// of organization_admin.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	return r
}
