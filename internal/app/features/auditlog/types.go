// internal/app/features/auditlog/types.go
package auditlog

import (
	"github.com/dalemusser/saasgate/internal/app/store/audit"
	"github.com/dalemusser/saasgate/internal/app/system/viewdata"
)

// listItem is one audit event row.
type listItem struct {
	ID         string
	Timestamp  string
	Category   string
	EventType  string
	ActorName  string
	TargetName string
	IP         string
	Success    bool
	Reason     string
	Details    map[string]string
}

type listData struct {
	viewdata.BaseVM

	Items []listItem

	// Filters
	Category  string
	EventType string
	StartDate string
	EndDate   string

	Categories []categoryOption
	EventTypes []string

	pager
}

type categoryOption struct {
	Value string
	Label string
}

func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "Authentication"},
		{Value: audit.CategoryAdmin, Label: "Administration"},
	}
}

var (
	authEvents = []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailed,
		audit.EventLoginRateLimited,
		audit.EventRegistered,
		audit.EventTokenRefreshed,
		audit.EventLogout,
		audit.EventOrganizationSwitch,
		audit.EventAccessDenied,
	}
	adminEvents = []string{
		audit.EventOrgCreated,
		audit.EventOrgUpdated,
		audit.EventOrgDeactivated,
		audit.EventMemberInvited,
		audit.EventMemberRemoved,
		audit.EventProfileUpdated,
	}
)

// eventTypesForCategory returns the event types of category, or every
// event type when category is empty.
func eventTypesForCategory(category string) []string {
	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(adminEvents))
		all = append(all, authEvents...)
		return append(all, adminEvents...)
	default:
		return nil
	}
}

func knownCategory(c string) bool {
	return c == audit.CategoryAuth || c == audit.CategoryAdmin
}

func knownEventType(category, t string) bool {
	for _, e := range eventTypesForCategory(category) {
		if e == t {
			return true
		}
	}
	return false
}
