// internal/app/features/onboarding/onboarding.go
package onboarding

import (
	"context"
	"net/http"

	"github.com/dalemusser/saasgate/internal/app/features/organizations"
	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/auth"
	"github.com/dalemusser/saasgate/internal/app/system/formutil"
	"github.com/dalemusser/saasgate/internal/app/system/guard"
	"github.com/dalemusser/saasgate/internal/app/system/inputval"
	"github.com/dalemusser/saasgate/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type createForm struct {
	Name   string `validate:"required,max=200" label:"Organization name"`
	Domain string `validate:"domain" label:"Domain"`
}

// ServeOnboarding renders the create-organization form.
func (h *Handler) ServeOnboarding(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, onboardingData{}, nil)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data onboardingData, err error) {
	formutil.SetBase(&data.Base, r, "Create your organization", "/")
	if err != nil {
		formutil.SetError(&data.Base, err)
	}
	w.WriteHeader(status)
	templates.Render(w, r, "onboarding", data)
}

// HandleCreate creates the organization with the caller as owner, reloads
// the session guard and makes the new organization current.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	g := auth.GuardFrom(r)
	p, ok := g.Profile()
	if !ok {
		http.Redirect(w, r, guard.SignInPath, http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.HTML(w, r, "parse form failed", apperr.Invalid("", "Invalid form data."))
		return
	}

	form := createForm{Name: r.FormValue("name"), Domain: r.FormValue("domain")}
	data := onboardingData{Name: form.Name, Domain: form.Domain}
	if res := inputval.Validate(form); res.HasErrors() {
		h.render(w, r, http.StatusBadRequest, data, apperr.Invalid("", res.First()))
		return
	}
	org, err := organizations.Draft(form.Name, form.Domain)
	if err != nil {
		h.render(w, r, http.StatusBadRequest, data, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Orgs.CreateOwned(ctx, org, p.ID)
	if err != nil {
		h.Log.Error("onboarding: create organization failed", zap.String("user_id", p.ID), zap.Error(err))
		h.render(w, r, apperr.Status(err), data, err)
		return
	}
	h.AuditLog.OrgCreated(ctx, r, p.ID, created.ID, created.Name)

	h.selectOrganization(ctx, w, r, g, created.ID)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// selectOrganization reloads g and makes the membership in orgID current.
// Failures are logged; the guard still falls back to its own selection.
func (h *Handler) selectOrganization(ctx context.Context, w http.ResponseWriter, r *http.Request, g *guard.Guard, orgID string) {
	sess, ok := g.Session()
	if !ok {
		return
	}
	if state := g.Sync(ctx, sess); !state.Authenticated() {
		h.Log.Warn("onboarding: reload after create failed", zap.Error(g.Err()))
		return
	}
	for _, m := range g.Memberships() {
		if m.OrganizationID != orgID {
			continue
		}
		if _, err := g.SetCurrent(m.ID); err != nil {
			h.Log.Warn("onboarding: select organization failed", zap.Error(err))
			return
		}
		if err := h.Gate.Sessions.SetCurrentMembership(w, r, m.ID); err != nil {
			h.Log.Warn("onboarding: store selection failed", zap.Error(err))
		}
		return
	}
}
