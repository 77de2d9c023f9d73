// internal/app/features/organizations/create.go
package organizations

import (
	"context"
	"net/http"

	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/authz"
	"github.com/dalemusser/saasgate/internal/app/system/formutil"
	"github.com/dalemusser/saasgate/internal/app/system/roles"
	"github.com/dalemusser/saasgate/internal/app/system/timeouts"
	"github.com/dalemusser/saasgate/internal/app/system/txn"
	"github.com/dalemusser/saasgate/internal/domain/models"
)

// HandleCreate creates an organization owned by the caller. Any
// authenticated identity may create one.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor := authz.FromRequest(r).UserID()
	if actor == "" {
		apperr.WriteError(w, apperr.ErrUnauthorized)
		return
	}

	var req createRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.JSON(w, r, "create organization: bad request", err)
		return
	}
	org, err := newOrganization(req)
	if err != nil {
		h.ErrLog.JSON(w, r, "create organization: bad request", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.CreateOwned(ctx, org, actor)
	if err != nil {
		h.ErrLog.JSON(w, r, "create organization failed", err)
		return
	}

	h.Audit.OrgCreated(ctx, r, actor, created.ID, created.Name)
	apperr.WriteJSON(w, http.StatusCreated, created)
}

// CreateOwned inserts org and an active organization_owner membership for
// ownerID in one transaction. The browser onboarding flow uses it too.
func (h *Handler) CreateOwned(ctx context.Context, org models.Organization, ownerID string) (models.Organization, error) {
	var created models.Organization
	err := txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		var err error
		created, err = h.Orgs.Create(ctx, org)
		if err != nil {
			return err
		}
		_, err = h.Members.Create(ctx, models.Membership{
			UserID:         ownerID,
			OrganizationID: created.ID,
			Role:           roles.OrganizationOwner,
			InvitedBy:      ownerID,
			AcceptedAt:     nowPtr(),
		})
		return err
	})
	return created, err
}
