// internal/app/features/orgswitch/handler.go
package orgswitch

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/auditlog"
	"github.com/dalemusser/saasgate/internal/app/system/auth"
	"github.com/dalemusser/saasgate/internal/app/system/navigation"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler switches the session's current organization.
type Handler struct {
	Gate     *auth.Gate
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(gate *auth.Gate, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Gate: gate, AuditLog: audit, Log: logger}
}

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleSwitch)
	return r
}

// back is where a switch returns to. Pages scoped to the old organization
// still render correctly because every page reads the current org per
// request.
var back = navigation.BackURLOptions{
	ExcludedPaths: []string{"/auth", "/logout", "/organization/current"},
	Fallback:      "/dashboard",
}

// HandleSwitch handles POST /organization/current with a membership_id form
// value. The membership must be one of the caller's active memberships.
func (h *Handler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	g := auth.GuardFrom(r)
	p, ok := g.Profile()
	if !ok {
		apperr.WriteError(w, apperr.ErrUnauthorized)
		return
	}
	if err := r.ParseForm(); err != nil {
		apperr.WriteError(w, apperr.Invalid("", "Invalid form data."))
		return
	}
	id := strings.TrimSpace(r.FormValue("membership_id"))
	if id == "" {
		apperr.WriteError(w, apperr.Invalid("membership_id", "Organization is required."))
		return
	}

	m, err := g.SetCurrent(id)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			h.Log.Error("switch organization failed", zap.Error(err))
		}
		apperr.WriteError(w, err)
		return
	}
	if err := h.Gate.Sessions.SetCurrentMembership(w, r, m.ID); err != nil {
		h.Log.Warn("store organization selection failed", zap.Error(err))
	}
	h.AuditLog.OrganizationSwitched(r.Context(), r, p.ID, m.OrganizationID)

	dest := navigation.SafeBackURL(r, back)
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}
