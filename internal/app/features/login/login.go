// internal/app/features/login/login.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/saasgate/internal/app/features/authapi"
	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/auth"
	"github.com/dalemusser/saasgate/internal/app/system/authprovider"
	"github.com/dalemusser/saasgate/internal/app/system/formutil"
	"github.com/dalemusser/saasgate/internal/app/system/inputval"
	"github.com/dalemusser/saasgate/internal/app/system/navigation"
	"github.com/dalemusser/saasgate/internal/app/system/normalize"
	"github.com/dalemusser/saasgate/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const (
	modeSignIn   = "signin"
	modeRegister = "register"
)

type signInForm struct {
	Email    string `validate:"required,email" label:"Email"`
	Password string `validate:"required" label:"Password"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeAuth renders the sign-in form, or the registration form with
// ?mode=register. Signed-in users are sent on to their destination.
func (h *Handler) ServeAuth(w http.ResponseWriter, r *http.Request) {
	if auth.GuardFrom(r).State().Authenticated() {
		http.Redirect(w, r, navigation.SafeBackURL(r, navigation.AfterSignIn), http.StatusSeeOther)
		return
	}

	mode := modeSignIn
	if query.Get(r, "mode") == modeRegister {
		mode = modeRegister
	}
	h.render(w, r, http.StatusOK, authFormData{Mode: mode, ReturnURL: query.Get(r, "return")}, nil)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data authFormData, err error) {
	title := "Sign in"
	if data.Mode == modeRegister {
		title = "Create account"
	}
	formutil.SetBase(&data.Base, r, title, "/")
	if err != nil {
		formutil.SetError(&data.Base, err)
	}
	w.WriteHeader(status)
	templates.Render(w, r, "auth_page", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleSignIn exchanges the submitted credentials for tokens, starts the
// session and redirects to the return URL.
func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.HTML(w, r, "parse form failed", apperr.Invalid("", "Invalid form data."))
		return
	}
	form := signInForm{
		Email:    normalize.Email(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	data := authFormData{Mode: modeSignIn, Email: form.Email, ReturnURL: r.FormValue("return")}

	if res := inputval.Validate(form); res.HasErrors() {
		h.render(w, r, http.StatusBadRequest, data, apperr.Invalid("", res.First()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	tok, err := h.Provider.SignIn(ctx, form.Email, form.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthorized) {
			h.AuditLog.LoginFailed(ctx, r, form.Email, "invalid_credentials")
			h.render(w, r, http.StatusUnauthorized, data, apperr.Invalid("", "Invalid email or password."))
			return
		}
		h.Log.Error("sign-in: provider failed", zap.Error(err))
		h.render(w, r, apperr.Status(err), data, err)
		return
	}

	if !h.startSession(w, r, tok, data) {
		return
	}
	http.Redirect(w, r, navigation.SafeBackURL(r, navigation.AfterSignIn), http.StatusSeeOther)
}

// startSession signs the browser in with tok. On failure it renders the
// form and returns false.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, tok authprovider.Tokens, data authFormData) bool {
	g, err := h.Gate.SignIn(w, r, tok, data.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthorized) {
			h.AuditLog.LoginFailed(r.Context(), r, data.Email, "account_disabled")
			h.render(w, r, http.StatusUnauthorized, data, apperr.Invalid("", "This account is disabled."))
			return false
		}
		h.Log.Error("sign-in: session load failed", zap.Error(err))
		h.render(w, r, apperr.Status(err), data, err)
		return false
	}

	userID := ""
	if p, ok := g.Profile(); ok {
		userID = p.ID
	}
	h.AuditLog.LoginSuccess(r.Context(), r, userID, data.Email)
	return true
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/register                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleRegister creates the account, signs it in and continues to
// onboarding, since a new identity has no organization yet.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.HTML(w, r, "parse form failed", apperr.Invalid("", "Invalid form data."))
		return
	}
	req := authprovider.SignUpRequest{
		Email:           normalize.Email(r.FormValue("email")),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
		FirstName:       strings.TrimSpace(r.FormValue("first_name")),
		LastName:        strings.TrimSpace(r.FormValue("last_name")),
	}
	data := authFormData{
		Mode:      modeRegister,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ReturnURL: r.FormValue("return"),
	}

	if res := inputval.Validate(req); res.HasErrors() {
		h.render(w, r, http.StatusBadRequest, data, apperr.Invalid("", res.First()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	profile, err := authapi.Register(ctx, h.Provider, h.Profiles, req)
	if err != nil {
		if apperr.Status(err) >= http.StatusInternalServerError {
			h.Log.Error("register failed", zap.Error(err))
		}
		if errors.Is(err, apperr.ErrConflict) {
			err = apperr.Invalid("email", "An account with this email already exists.")
		}
		h.render(w, r, apperr.Status(err), data, err)
		return
	}
	h.AuditLog.Registered(ctx, r, profile.Email)

	tok, err := h.Provider.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		h.Log.Warn("sign-in after register failed", zap.String("user_id", profile.ID), zap.Error(err))
		http.Redirect(w, r, "/auth", http.StatusSeeOther)
		return
	}
	if !h.startSession(w, r, tok, data) {
		return
	}
	http.Redirect(w, r, "/onboarding", http.StatusSeeOther)
}

// rateLimited re-renders the form when a client submits too often.
func (h *Handler) rateLimited(w http.ResponseWriter, r *http.Request) {
	h.AuditLog.LoginRateLimited(r.Context(), r)
	mode := modeSignIn
	if strings.HasSuffix(r.URL.Path, "/register") {
		mode = modeRegister
	}
	h.render(w, r, http.StatusTooManyRequests, authFormData{Mode: mode},
		apperr.Invalid("", "Too many attempts. Try again in a minute."))
}
