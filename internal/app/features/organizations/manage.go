// internal/app/features/organizations/manage.go
package organizations

import (
	"context"
	"net/http"
	"sort"

	organizationstore "github.com/dalemusser/saasgate/internal/app/store/organizations"
	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/authz"
	"github.com/dalemusser/saasgate/internal/app/system/formutil"
	"github.com/dalemusser/saasgate/internal/app/system/normalize"
	"github.com/dalemusser/saasgate/internal/app/system/timeouts"
	"github.com/dalemusser/saasgate/internal/domain/models"
)

// HandleUpdate applies a partial update. Organization owners and admins
// may edit name, domain and settings; billing fields need a SaaS role.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := orgID(r)
	eng := authz.FromRequest(r)
	if !eng.CanUpdateOrganization(id) {
		apperr.WriteError(w, apperr.ErrForbidden)
		return
	}

	var req updateRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.JSON(w, r, "update organization: bad request", err)
		return
	}
	upd, fields, err := buildUpdate(req, eng.HasSaasRole())
	if err != nil {
		h.ErrLog.JSON(w, r, "update organization: bad request", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if upd.MaxUsers != nil {
		n, err := h.Members.CountActiveByOrg(ctx, id)
		if err != nil {
			h.ErrLog.JSON(w, r, "update organization: count members", err)
			return
		}
		if int64(*upd.MaxUsers) < n {
			h.ErrLog.JSON(w, r, "update organization: bad request",
				apperr.Invalid("max_users", "User limit is below the current number of members."))
			return
		}
	}

	org, err := h.Orgs.Update(ctx, id, upd)
	if err != nil {
		h.ErrLog.JSON(w, r, "update organization failed", err)
		return
	}

	h.Audit.OrgUpdated(ctx, r, eng.UserID(), id, fields)
	apperr.WriteJSON(w, http.StatusOK, org)
}

func buildUpdate(req updateRequest, saas bool) (organizationstore.Update, []string, error) {
	var (
		upd    organizationstore.Update
		fields []string
	)
	if req.Name != nil {
		name, err := cleanName(*req.Name)
		if err != nil {
			return upd, nil, err
		}
		upd.Name = &name
		fields = append(fields, "name")
	}
	if req.Domain != nil {
		d := normalize.Domain(*req.Domain)
		upd.Domain = &d
		fields = append(fields, "domain")
	}
	if req.Settings != nil {
		s, err := cleanSettings(req.Settings)
		if err != nil {
			return upd, nil, err
		}
		upd.Settings = s
		fields = append(fields, "settings")
	}
	if req.SubscriptionTier != nil || req.MaxUsers != nil {
		if !saas {
			return upd, nil, apperr.ErrForbidden
		}
	}
	if req.SubscriptionTier != nil {
		t := models.SubscriptionTier(normalize.Lower(*req.SubscriptionTier))
		upd.SubscriptionTier = &t
		fields = append(fields, "subscription_tier")
	}
	if req.MaxUsers != nil {
		if *req.MaxUsers < 1 {
			return upd, nil, apperr.Invalid("max_users", "User limit must be at least 1.")
		}
		upd.MaxUsers = req.MaxUsers
		fields = append(fields, "max_users")
	}
	if len(fields) == 0 {
		return upd, nil, apperr.Invalid("", "Nothing to update.")
	}
	sort.Strings(fields)
	return upd, fields, nil
}

// HandleDeactivate soft-deletes an organization. Owners and SaaS staff only.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	id := orgID(r)
	eng := authz.FromRequest(r)
	if !eng.CanDeactivateOrganization(id) {
		apperr.WriteError(w, apperr.ErrForbidden)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Orgs.Deactivate(ctx, id); err != nil {
		h.ErrLog.JSON(w, r, "deactivate organization failed", err)
		return
	}

	h.Audit.OrgDeactivated(ctx, r, eng.UserID(), id)
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"message": "Organization deactivated"})
}
