// internal/app/features/whatsapp/whatsapp.go

// Package whatsapp reserves the messaging endpoints. Every listing is empty
// until a messaging provider is integrated.
package whatsapp

import (
	"net/http"

	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// serveEmpty answers a listing with []. BearerAuth has already rejected
// anonymous callers; no organization is required.
func (h *Handler) serveEmpty(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eng := authz.FromRequest(r)
		h.Log.Debug("whatsapp listing", zap.String("kind", kind), zap.String("org_id", eng.CurrentOrgID()))
		apperr.WriteJSON(w, http.StatusOK, []struct{}{})
	}
}

// Routes mounts under /api/whatsapp behind BearerAuth.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/campaigns", h.serveEmpty("campaigns"))
	r.Get("/templates", h.serveEmpty("templates"))
	r.Get("/contacts", h.serveEmpty("contacts"))
	return r
}
