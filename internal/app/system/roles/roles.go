// Package roles holds the fixed six-level role hierarchy.
//
// Every role comparison in the application goes through LevelOf. The levels
// are part of the persisted contract: renumbering them requires migrating
// every stored membership and every minimum-role declaration.
package roles

import (
	"errors"
	"fmt"
	"strings"
)

// Role is a role identifier as stored on a membership.
type Role string

const (
	OrganizationUser  Role = "organization_user"
	OrganizationAdmin Role = "organization_admin"
	OrganizationOwner Role = "organization_owner"
	SaasAccountant    Role = "saas_accountant"
	SaasAdmin         Role = "saas_admin"
	SaasSuperAdmin    Role = "saas_super_admin"
)

// ErrUnknownRole is returned by Parse for identifiers outside the hierarchy.
var ErrUnknownRole = errors.New("unknown role")

// hierarchy is ordered from least to most privileged; the level of a role
// is its index + 1.
var hierarchy = [...]Role{
	OrganizationUser,
	OrganizationAdmin,
	OrganizationOwner,
	SaasAccountant,
	SaasAdmin,
	SaasSuperAdmin,
}

var levels = func() map[Role]int {
	m := make(map[Role]int, len(hierarchy))
	for i, r := range hierarchy {
		m[r] = i + 1
	}
	return m
}()

// MinLevel and MaxLevel bound the values returned by LevelOf.
const (
	MinLevel = 1
	MaxLevel = len(hierarchy)
)

// All returns the roles ordered from least to most privileged.
func All() []Role {
	out := make([]Role, len(hierarchy))
	copy(out, hierarchy[:])
	return out
}

// LevelOf returns the hierarchy level of r (1..6).
// It panics on an unknown role: identifiers must be validated with Parse
// where they enter the process.
func LevelOf(r Role) int {
	lvl, ok := levels[r]
	if !ok {
		panic(fmt.Sprintf("roles: LevelOf called with unvalidated role %q", string(r)))
	}
	return lvl
}

// Compare returns -1, 0 or +1 as a is less, equally or more privileged than b.
func Compare(a, b Role) int {
	la, lb := LevelOf(a), LevelOf(b)
	switch {
	case la < lb:
		return -1
	case la > lb:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether have dominates or equals want.
func AtLeast(have, want Role) bool {
	return LevelOf(have) >= LevelOf(want)
}

// Valid reports whether r is one of the six known roles.
func Valid(r Role) bool {
	_, ok := levels[r]
	return ok
}

// Parse validates a raw identifier. Surrounding whitespace is ignored and
// matching is case-insensitive; the stored form is always lowercase.
func Parse(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !Valid(r) {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// IsSaas reports whether r is one of the cross-tenant roles.
func IsSaas(r Role) bool {
	return Valid(r) && LevelOf(r) >= LevelOf(SaasAccountant)
}

// String implements fmt.Stringer.
func (r Role) String() string { return string(r) }

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r), nil
}

// UnmarshalText rejects identifiers outside the hierarchy, so JSON coming
// from the API or the backing store is validated on decode.
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
