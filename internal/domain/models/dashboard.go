// internal/domain/models/dashboard.go
package models

// DashboardStats are opaque counters shown on the dashboard.
type DashboardStats struct {
	TotalOrganizations int64 `json:"total_organizations"`
	TotalUsers         int64 `json:"total_users"`
	ActiveCampaigns    int64 `json:"active_campaigns"`
	TotalMessagesSent  int64 `json:"total_messages_sent"`
}

// Plan is an entry in the static subscription catalogue.
type Plan struct {
	ID       SubscriptionTier `json:"id"`
	Name     string           `json:"name"`
	Price    int              `json:"price"`
	Features []string         `json:"features"`
}
