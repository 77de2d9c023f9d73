// internal/app/features/authapi/routes.go
package authapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/auth. bearer protects /me.
func Routes(h *Handler, bearer func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		if h.Limiter != nil {
			pr.Use(h.Limiter.Middleware(h.rateLimited))
		}
		pr.Post("/login", h.HandleLogin)
		pr.Post("/register", h.HandleRegister)
	})
	r.Post("/refresh", h.HandleRefresh)
	r.With(bearer).Get("/me", h.ServeMe)
	return r
}
