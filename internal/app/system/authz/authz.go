// internal/app/system/authz/authz.go

// Package authz answers role questions for one identity.
//
// Every predicate here is pure and never panics on loaded data: missing
// memberships, inactive memberships and unknown required roles all deny.
package authz

import (
	"context"
	"net/http"

	"github.com/dalemusser/saasgate/internal/app/system/resolver"
	"github.com/dalemusser/saasgate/internal/app/system/roles"
	"github.com/dalemusser/saasgate/internal/domain/models"
)

// Engine evaluates role checks against a resolver's memberships.
// The zero value and a nil *Engine deny everything.
type Engine struct {
	res *resolver.Resolver
}

// New returns an Engine over res. The Engine reads res on every call, so
// callers that mutate res concurrently must hand the Engine a clone.
func New(res *resolver.Resolver) *Engine {
	return &Engine{res: res}
}

// UserID returns the identity the Engine answers for.
func (e *Engine) UserID() string {
	if e == nil || e.res == nil {
		return ""
	}
	return e.res.UserID()
}

// Current returns the membership in focus.
func (e *Engine) Current() (models.Membership, bool) {
	if e == nil || e.res == nil {
		return models.Membership{}, false
	}
	return e.res.Current()
}

// CurrentOrgID returns the organization of the current membership, or "".
func (e *Engine) CurrentOrgID() string {
	m, ok := e.Current()
	if !ok {
		return ""
	}
	return m.OrganizationID
}

// HasMinimumRole reports whether the identity holds at least required in an
// organization. The organization is orgID[0] when given and non-empty,
// otherwise the current membership's organization.
func (e *Engine) HasMinimumRole(required roles.Role, orgID ...string) bool {
	if e == nil || e.res == nil || !roles.Valid(required) {
		return false
	}

	target := ""
	if len(orgID) > 0 {
		target = orgID[0]
	}
	if target == "" {
		target = e.CurrentOrgID()
	}
	if target == "" {
		return false
	}

	m, ok := e.res.ActiveFor(target)
	if !ok {
		return false
	}
	return roles.AtLeast(m.Role, required)
}

// HasSaasRole reports whether any active membership is at or above
// saas_accountant.
func (e *Engine) HasSaasRole() bool {
	if e == nil || e.res == nil {
		return false
	}
	for _, m := range e.res.Active() {
		if roles.IsSaas(m.Role) {
			return true
		}
	}
	return false
}

// RoleIn returns the role held in orgID through an active membership.
func (e *Engine) RoleIn(orgID string) (roles.Role, bool) {
	if e == nil || e.res == nil {
		return "", false
	}
	m, ok := e.res.ActiveFor(orgID)
	if !ok {
		return "", false
	}
	return m.Role, true
}

// MemberOrgIDs returns the organizations of active memberships.
func (e *Engine) MemberOrgIDs() []string {
	if e == nil || e.res == nil {
		return nil
	}
	active := e.res.Active()
	out := make([]string, 0, len(active))
	for _, m := range active {
		out = append(out, m.OrganizationID)
	}
	return out
}

type ctxKey struct{}

// WithEngine returns a copy of ctx carrying e.
func WithEngine(ctx context.Context, e *Engine) context.Context {
	return context.WithValue(ctx, ctxKey{}, e)
}

// FromContext returns the Engine stored in ctx.
func FromContext(ctx context.Context) (*Engine, bool) {
	e, ok := ctx.Value(ctxKey{}).(*Engine)
	return e, ok && e != nil
}

// FromRequest returns the Engine attached to r. When none is attached the
// returned Engine denies everything, so callers may use it directly.
func FromRequest(r *http.Request) *Engine {
	if e, ok := FromContext(r.Context()); ok {
		return e
	}
	return nil
}
