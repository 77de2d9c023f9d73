// internal/app/features/organizations/routes.go
package organizations

import "github.com/go-chi/chi/v5"

// Routes mounts the organizations API under /api/organizations. Callers
// wrap it in BearerAuth; per-organization checks happen in the handlers.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	r.Route("/{id}", func(or chi.Router) {
		or.Get("/", h.ServeOne)
		or.Patch("/", h.HandleUpdate)
		or.Post("/deactivate", h.HandleDeactivate)
		or.Get("/members", h.ServeMembers)
		or.Post("/invite", h.HandleInvite)
		or.Delete("/members/{membershipID}", h.HandleRemove)
		or.Get("/audit", h.ServeAudit)
	})
	return r
}
