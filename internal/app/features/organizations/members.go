// internal/app/features/organizations/members.go
package organizations

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	membershipstore "github.com/dalemusser/saasgate/internal/app/store/memberships"
	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/authz"
	"github.com/dalemusser/saasgate/internal/app/system/formutil"
	"github.com/dalemusser/saasgate/internal/app/system/normalize"
	"github.com/dalemusser/saasgate/internal/app/system/roles"
	"github.com/dalemusser/saasgate/internal/app/system/timeouts"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// ServeMembers lists the active members of an organization with their
// profiles.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	id := orgID(r)
	if !authz.FromRequest(r).CanManageMembers(id) {
		apperr.WriteError(w, apperr.ErrForbidden)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, err := h.Orgs.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.JSON(w, r, "list members: get organization", err)
		return
	}
	rows, err := h.Members.ListForOrg(ctx, id)
	if err != nil {
		h.ErrLog.JSON(w, r, "list members failed", err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, memberList{Organization: org, Members: rows})
}

// HandleInvite adds an existing identity to the organization. The invitee
// must already have a profile, must not hold an active membership there,
// and the organization must have a free seat.
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	id := orgID(r)
	eng := authz.FromRequest(r)
	if !eng.CanManageMembers(id) {
		apperr.WriteError(w, apperr.ErrForbidden)
		return
	}

	var req inviteRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.JSON(w, r, "invite: bad request", err)
		return
	}
	role := roles.Role(normalize.Lower(req.Role))
	if role == "" {
		role = roles.OrganizationUser
	}
	if !eng.CanGrant(id, role) {
		apperr.WriteMessage(w, http.StatusForbidden, "You cannot grant a role above your own.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.invite(ctx, id, normalize.Email(req.Email), role, eng.UserID())
	if err != nil {
		h.ErrLog.JSON(w, r, "invite failed", err)
		return
	}

	h.Audit.MemberInvited(ctx, r, eng.UserID(), id, m.UserID, role)
	apperr.WriteJSON(w, http.StatusCreated, m)
}

func (h *Handler) invite(ctx context.Context, orgID, email string, role roles.Role, actor string) (models.Membership, error) {
	org, err := h.Orgs.GetByID(ctx, orgID)
	if err != nil {
		return models.Membership{}, err
	}
	if !org.IsActive {
		return models.Membership{}, apperr.Invalid("", "Organization is deactivated.")
	}

	user, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.Membership{}, fmt.Errorf("user %s has not registered: %w", email, apperr.ErrNotFound)
		}
		return models.Membership{}, err
	}

	switch _, err := h.Members.ActiveFor(ctx, user.ID, orgID); {
	case err == nil:
		return models.Membership{}, membershipstore.ErrDuplicateMembership
	case !errors.Is(err, apperr.ErrNotFound):
		return models.Membership{}, err
	}

	n, err := h.Members.CountActiveByOrg(ctx, orgID)
	if err != nil {
		return models.Membership{}, err
	}
	if n >= int64(org.MaxUsers) {
		return models.Membership{}, apperr.Invalid("", "Organization has reached its user limit.")
	}

	return h.Members.Create(ctx, models.Membership{
		UserID:         user.ID,
		OrganizationID: orgID,
		Role:           role,
		InvitedBy:      actor,
	})
}

// HandleRemove deactivates a membership. The caller must be able to grant
// the member's role, and the last owner cannot be removed.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id := orgID(r)
	membershipID := chi.URLParam(r, "membershipID")
	eng := authz.FromRequest(r)
	if !eng.CanManageMembers(id) {
		apperr.WriteError(w, apperr.ErrForbidden)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.Members.GetByID(ctx, membershipID)
	if err == nil && (m.OrganizationID != id || !m.IsActive) {
		err = fmt.Errorf("membership %s in %s: %w", membershipID, id, apperr.ErrNotFound)
	}
	if err != nil {
		h.ErrLog.JSON(w, r, "remove member: lookup", err)
		return
	}
	if !eng.CanGrant(id, m.Role) {
		apperr.WriteMessage(w, http.StatusForbidden, "You cannot remove a member above your own role.")
		return
	}
	if m.Role == roles.OrganizationOwner {
		owners, err := h.Members.CountActiveByRole(ctx, id, roles.OrganizationOwner)
		if err != nil {
			h.ErrLog.JSON(w, r, "remove member: count owners", err)
			return
		}
		if owners <= 1 {
			h.ErrLog.JSON(w, r, "remove member: bad request",
				apperr.Invalid("", "An organization must keep at least one owner."))
			return
		}
	}

	if err := h.Members.Deactivate(ctx, id, membershipID); err != nil {
		h.ErrLog.JSON(w, r, "remove member failed", err)
		return
	}

	h.Audit.MemberRemoved(ctx, r, eng.UserID(), id, m.UserID)
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"message": "Member removed"})
}
