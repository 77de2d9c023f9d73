// internal/domain/models/organization.go
package models

import "time"

// SubscriptionTier is the billing tier of an organization.
type SubscriptionTier string

const (
	TierFree         SubscriptionTier = "free"
	TierStarter      SubscriptionTier = "starter"
	TierProfessional SubscriptionTier = "professional"
	TierEnterprise   SubscriptionTier = "enterprise"
)

// DefaultMaxUsers is the seat limit applied to new organizations.
const DefaultMaxUsers = 5

// ValidTier reports whether t is one of the known subscription tiers.
func ValidTier(t SubscriptionTier) bool {
	switch t {
	case TierFree, TierStarter, TierProfessional, TierEnterprise:
		return true
	}
	return false
}

// Organization is a tenant. Organizations are never hard-deleted; IsActive
// is cleared instead.
type Organization struct {
	ID               string            `bson:"_id" json:"id"`
	Name             string            `bson:"name" json:"name"`
	NameCI           string            `bson:"name_ci" json:"-"` // folded name for sorting
	Domain           *string           `bson:"domain,omitempty" json:"domain,omitempty"`
	IsActive         bool              `bson:"is_active" json:"is_active"`
	SubscriptionTier SubscriptionTier  `bson:"subscription_tier" json:"subscription_tier"`
	MaxUsers         int               `bson:"max_users" json:"max_users"`
	Settings         map[string]string `bson:"settings,omitempty" json:"settings"`
	CreatedAt        time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `bson:"updated_at" json:"updated_at"`
}
