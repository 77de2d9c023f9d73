// Package resolver decides which organization is current for an identity
// and which membership applies in a given organization.
//
// Memberships are kept in the order the loader received them. Inactive
// memberships are kept for display through All but are invisible to every
// other query. Lookups are linear scans; an identity belongs to a handful of
// organizations at most.
package resolver

import (
	"fmt"

	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/roles"
	"github.com/dalemusser/saasgate/internal/domain/models"
)

// SelectDefaultCurrent returns the active membership with the highest role
// level. Ties go to the first such membership in received order. It reports
// false when there is no active membership.
func SelectDefaultCurrent(memberships []models.Membership) (models.Membership, bool) {
	i := highest(memberships, func(m models.Membership) bool {
		return m.IsActive && roles.Valid(m.Role)
	})
	if i < 0 {
		return models.Membership{}, false
	}
	return memberships[i], true
}

// highest returns the index of the first kept membership with the maximum
// role level, or -1.
func highest(ms []models.Membership, keep func(models.Membership) bool) int {
	best, bestLevel := -1, 0
	for i, m := range ms {
		if !keep(m) {
			continue
		}
		if lvl := roles.LevelOf(m.Role); lvl > bestLevel {
			best, bestLevel = i, lvl
		}
	}
	return best
}

// Resolver holds one identity's memberships and its current selection.
// A Resolver is not safe for concurrent use; its owner serializes access.
type Resolver struct {
	userID      string
	memberships []models.Membership
	current     int // index into memberships, -1 when none
}

// New builds a Resolver for userID and selects the default current
// membership. Memberships belonging to another identity are ignored by
// every query.
func New(userID string, memberships []models.Membership) *Resolver {
	ms := make([]models.Membership, len(memberships))
	copy(ms, memberships)

	r := &Resolver{userID: userID, memberships: ms, current: -1}
	r.resetCurrent()
	return r
}

func (r *Resolver) resetCurrent() {
	r.current = highest(r.memberships, r.usable)
}

// usable reports whether m may take part in selection and role checks.
func (r *Resolver) usable(m models.Membership) bool {
	return m.IsActive && m.UserID == r.userID && roles.Valid(m.Role)
}

// UserID returns the identity the memberships belong to.
func (r *Resolver) UserID() string { return r.userID }

// All returns every membership in received order, active or not.
func (r *Resolver) All() []models.Membership {
	out := make([]models.Membership, len(r.memberships))
	copy(out, r.memberships)
	return out
}

// Active returns the active memberships in received order.
func (r *Resolver) Active() []models.Membership {
	var out []models.Membership
	for _, m := range r.memberships {
		if r.usable(m) {
			out = append(out, m)
		}
	}
	return out
}

// Current returns the membership in focus, if any.
func (r *Resolver) Current() (models.Membership, bool) {
	if r.current < 0 {
		return models.Membership{}, false
	}
	return r.memberships[r.current], true
}

// SetCurrent moves the selection to the active membership with the given
// id. On failure the previous selection is kept and the error wraps
// apperr.ErrNotFound.
func (r *Resolver) SetCurrent(membershipID string) (models.Membership, error) {
	for i, m := range r.memberships {
		if m.ID == membershipID && r.usable(m) {
			r.current = i
			return m, nil
		}
	}
	return models.Membership{}, fmt.Errorf("membership %q: %w", membershipID, apperr.ErrNotFound)
}

// ActiveFor returns the active membership in orgID, if any.
func (r *Resolver) ActiveFor(orgID string) (models.Membership, bool) {
	if orgID == "" {
		return models.Membership{}, false
	}
	for _, m := range r.memberships {
		if m.OrganizationID == orgID && r.usable(m) {
			return m, true
		}
	}
	return models.Membership{}, false
}

// Clone returns an independent copy with the same selection.
func (r *Resolver) Clone() *Resolver {
	return &Resolver{userID: r.userID, memberships: r.All(), current: r.current}
}
