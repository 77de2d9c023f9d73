package roles

// Display helpers. Presentation only; authorization never reads these.

var labels = map[Role]string{
	OrganizationUser:  "User",
	OrganizationAdmin: "Admin",
	OrganizationOwner: "Owner",
	SaasAccountant:    "SaaS Accountant",
	SaasAdmin:         "SaaS Admin",
	SaasSuperAdmin:    "SaaS Super Admin",
}

var badgeClasses = map[Role]string{
	OrganizationUser:  "badge-gray",
	OrganizationAdmin: "badge-green",
	OrganizationOwner: "badge-blue",
	SaasAccountant:    "badge-yellow",
	SaasAdmin:         "badge-orange",
	SaasSuperAdmin:    "badge-red",
}

// Label returns a human-readable name for r, or the raw identifier when r
// is not a known role.
func Label(r Role) string {
	if l, ok := labels[r]; ok {
		return l
	}
	return string(r)
}

// BadgeClass returns the CSS class used to color a role badge.
func BadgeClass(r Role) string {
	if c, ok := badgeClasses[r]; ok {
		return c
	}
	return "badge-gray"
}
