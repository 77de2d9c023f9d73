// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/saasgate/internal/app/system/auditlog"
	"github.com/dalemusser/saasgate/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Gate     *auth.Gate
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(gate *auth.Gate, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Gate:     gate,
		AuditLog: audit,
		Log:      logger,
	}
}

// HandleLogout handles POST /logout. It drops the session guard, expires the
// cookie and sends the browser to the sign-in page.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if p, ok := auth.GuardFrom(r).Profile(); ok {
		h.AuditLog.Logout(r.Context(), r, p.ID)
	}
	h.Gate.SignOut(w, r)

	// HTMX follows HX-Redirect rather than a 3xx.
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/auth")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/auth", http.StatusSeeOther)
}
