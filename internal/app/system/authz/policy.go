// internal/app/system/authz/policy.go
package authz

import "github.com/dalemusser/saasgate/internal/app/system/roles"

// CanListAllOrganizations reports whether the identity sees every
// organization rather than only its own.
func (e *Engine) CanListAllOrganizations() bool {
	return e.HasSaasRole()
}

// CanViewOrganization reports whether the identity may read orgID.
func (e *Engine) CanViewOrganization(orgID string) bool {
	return e.HasSaasRole() || e.HasMinimumRole(roles.OrganizationUser, orgID)
}

// CanUpdateOrganization reports whether the identity may edit orgID.
func (e *Engine) CanUpdateOrganization(orgID string) bool {
	return e.HasSaasRole() || e.HasMinimumRole(roles.OrganizationAdmin, orgID)
}

// CanDeactivateOrganization reports whether the identity may deactivate orgID.
func (e *Engine) CanDeactivateOrganization(orgID string) bool {
	return e.HasSaasRole() || e.HasMinimumRole(roles.OrganizationOwner, orgID)
}

// CanManageMembers reports whether the identity may list, invite and remove
// members of orgID.
func (e *Engine) CanManageMembers(orgID string) bool {
	return e.HasSaasRole() || e.HasMinimumRole(roles.OrganizationAdmin, orgID)
}

// CanGrant reports whether the identity may give role to someone in orgID.
// SaaS staff may grant any role; everyone else is capped at their own level
// in that organization and may never grant a SaaS role.
func (e *Engine) CanGrant(orgID string, role roles.Role) bool {
	if !roles.Valid(role) || !e.CanManageMembers(orgID) {
		return false
	}
	if e.HasSaasRole() {
		return true
	}
	if roles.IsSaas(role) {
		return false
	}
	have, ok := e.RoleIn(orgID)
	return ok && roles.AtLeast(have, role)
}
