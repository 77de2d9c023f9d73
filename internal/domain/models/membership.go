// internal/domain/models/membership.go
package models

import (
	"time"

	"github.com/dalemusser/saasgate/internal/app/system/roles"
)

// Membership grants one identity one role in one organization.
//
// At most one active membership exists per (UserID, OrganizationID).
// Memberships are deactivated, never deleted, and an inactive membership
// never satisfies a role check.
type Membership struct {
	ID             string     `bson:"_id" json:"id"`
	UserID         string     `bson:"user_id" json:"user_id"`
	OrganizationID string     `bson:"organization_id" json:"organization_id"`
	Role           roles.Role `bson:"role" json:"role"`
	InvitedBy      string     `bson:"invited_by,omitempty" json:"invited_by,omitempty"`
	InvitedAt      time.Time  `bson:"invited_at" json:"invited_at"`
	AcceptedAt     *time.Time `bson:"accepted_at,omitempty" json:"accepted_at,omitempty"`
	IsActive       bool       `bson:"is_active" json:"is_active"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `bson:"updated_at" json:"updated_at"`

	// Organization is a snapshot joined in when memberships are loaded for
	// an identity. It is not stored on the membership document.
	Organization *Organization `bson:"-" json:"organization,omitempty"`
}

// MemberRow is a membership joined with the member's profile, as listed on
// an organization's members page.
type MemberRow struct {
	Membership
	UserProfile *UserProfile `json:"user_profile,omitempty"`
}
