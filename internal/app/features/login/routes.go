// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeAuth)
	r.Group(func(pr chi.Router) {
		if h.Limiter != nil {
			pr.Use(h.Limiter.Middleware(h.rateLimited))
		}
		pr.Post("/", h.HandleSignIn)
		pr.Post("/register", h.HandleRegister)
	})
	return r
}
