// internal/app/features/dashboard/stats.go
package dashboard

import (
	"context"
	"net/http"

	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/authz"
	"github.com/dalemusser/saasgate/internal/app/system/timeouts"
	"github.com/dalemusser/saasgate/internal/domain/models"
)

// stats computes the dashboard counters visible to eng. SaaS staff see
// platform totals; everyone else sees their own organizations and the
// members of the current one. Campaign and message counters stay zero
// until messaging is implemented.
func (h *Handler) stats(ctx context.Context, eng *authz.Engine) (models.DashboardStats, error) {
	var s models.DashboardStats
	if eng.HasSaasRole() {
		orgs, err := h.Orgs.Count(ctx)
		if err != nil {
			return s, err
		}
		users, err := h.Users.Count(ctx)
		if err != nil {
			return s, err
		}
		s.TotalOrganizations, s.TotalUsers = orgs, users
		return s, nil
	}

	s.TotalOrganizations = int64(len(eng.MemberOrgIDs()))
	if orgID := eng.CurrentOrgID(); orgID != "" {
		n, err := h.Members.CountActiveByOrg(ctx, orgID)
		if err != nil {
			return s, err
		}
		s.TotalUsers = n
	}
	return s, nil
}

// ServeStats handles GET /api/dashboard/stats.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	s, err := h.stats(ctx, authz.FromRequest(r))
	if err != nil {
		h.ErrLog.JSON(w, r, "dashboard stats failed", err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, s)
}
