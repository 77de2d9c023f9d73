// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/saasgate/internal/app/system/auth"
	"github.com/dalemusser/saasgate/internal/app/system/roles"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// SiteName is shown in page titles and the header.
const SiteName = "SaaSGate"

// OrgOption is one entry of the organization switcher.
type OrgOption struct {
	MembershipID string
	Name         string
	RoleLabel    string
	Current      bool
}

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
type BaseVM struct {
	SiteName string

	// Identity context (from the session guard)
	IsLoggedIn bool
	UserName   string
	Email      string

	// Current organization
	HasOrg     bool
	OrgName    string
	RoleLabel  string
	RoleBadge  string
	IsOrgAdmin bool
	OrgOptions []OrgOption

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	CSRFToken string
}

// NewBaseVM creates a fully populated BaseVM for a page.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	vm := BaseVM{
		SiteName:    SiteName,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}

	g := auth.GuardFrom(r)
	p, ok := g.Profile()
	if !ok {
		return vm
	}
	vm.IsLoggedIn = true
	vm.UserName = p.FullName()
	vm.Email = p.Email

	cur, hasCur := g.Current()
	if hasCur {
		vm.HasOrg = true
		vm.RoleLabel = roles.Label(cur.Role)
		vm.RoleBadge = roles.BadgeClass(cur.Role)
		vm.IsOrgAdmin = roles.AtLeast(cur.Role, roles.OrganizationAdmin)
	}
	for _, m := range g.Memberships() {
		if !m.IsActive || !roles.Valid(m.Role) {
			continue
		}
		name := m.OrganizationID
		if m.Organization != nil {
			name = m.Organization.Name
		}
		opt := OrgOption{
			MembershipID: m.ID,
			Name:         name,
			RoleLabel:    roles.Label(m.Role),
			Current:      hasCur && m.ID == cur.ID,
		}
		if opt.Current {
			vm.OrgName = name
		}
		vm.OrgOptions = append(vm.OrgOptions, opt)
	}
	return vm
}
