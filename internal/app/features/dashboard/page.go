// internal/app/features/dashboard/page.go
package dashboard

import (
	"context"
	"net/http"

	"github.com/dalemusser/saasgate/internal/app/system/authz"
	"github.com/dalemusser/saasgate/internal/app/system/timeouts"
	"github.com/dalemusser/saasgate/internal/app/system/viewdata"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type dashboardData struct {
	viewdata.BaseVM
	Stats     models.DashboardStats
	IsSaas    bool
	CanManage bool
}

// ServeDashboard renders the dashboard for the current organization.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	eng := authz.FromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	s, err := h.stats(ctx, eng)
	if err != nil {
		h.ErrLog.HTML(w, r, "dashboard stats failed", err)
		return
	}

	data := dashboardData{
		BaseVM:    viewdata.NewBaseVM(r, "Dashboard", "/"),
		Stats:     s,
		IsSaas:    eng.HasSaasRole(),
		CanManage: eng.CanManageMembers(eng.CurrentOrgID()),
	}
	h.Log.Debug("dashboard served", zap.String("user_id", eng.UserID()), zap.String("org_id", eng.CurrentOrgID()))
	templates.Render(w, r, "dashboard", data)
}
