// internal/app/features/organizations/list.go
package organizations

import (
	"context"
	"net/http"

	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/authz"
	"github.com/dalemusser/saasgate/internal/app/system/timeouts"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"go.uber.org/zap"
)

// ServeList returns every organization to SaaS staff and the organizations
// of the caller's active memberships to everyone else.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	eng := authz.FromRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		orgs []models.Organization
		err  error
	)
	if eng.CanListAllOrganizations() {
		orgs, err = h.Orgs.List(ctx)
	} else {
		orgs, err = h.Orgs.ListByIDs(ctx, eng.MemberOrgIDs())
	}
	if err != nil {
		h.ErrLog.JSON(w, r, "list organizations failed", err)
		return
	}
	h.Log.Debug("organizations listed", zap.Int("count", len(orgs)), zap.String("user_id", eng.UserID()))
	apperr.WriteJSON(w, http.StatusOK, orgs)
}

// ServeOne returns one organization the caller may view.
func (h *Handler) ServeOne(w http.ResponseWriter, r *http.Request) {
	id := orgID(r)
	if !authz.FromRequest(r).CanViewOrganization(id) {
		apperr.WriteError(w, apperr.ErrForbidden)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	org, err := h.Orgs.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.JSON(w, r, "get organization failed", err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, org)
}
