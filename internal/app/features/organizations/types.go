// internal/app/features/organizations/types.go
package organizations

import "github.com/dalemusser/saasgate/internal/domain/models"

type createRequest struct {
	Name     string            `json:"name" validate:"required,max=200" label:"Name"`
	Domain   string            `json:"domain" validate:"domain" label:"Domain"`
	Settings map[string]string `json:"settings"`
}

// updateRequest is the PATCH body. Absent fields are left untouched; an
// empty domain clears it. Tier and seat limit are billing fields and only
// SaaS staff may change them.
type updateRequest struct {
	Name             *string           `json:"name" validate:"required,max=200" label:"Name"`
	Domain           *string           `json:"domain" validate:"domain" label:"Domain"`
	SubscriptionTier *string           `json:"subscription_tier" validate:"tier" label:"Subscription tier"`
	MaxUsers         *int              `json:"max_users"`
	Settings         map[string]string `json:"settings"`
}

type inviteRequest struct {
	Email string `json:"email" validate:"required,email" label:"Email"`
	Role  string `json:"role" validate:"role" label:"Role"`
}

// maxSettings bounds the settings map of an organization.
const maxSettings = 50

// memberList is the body of GET /{id}/members.
type memberList struct {
	Organization models.Organization `json:"organization"`
	Members      []models.MemberRow  `json:"members"`
}
