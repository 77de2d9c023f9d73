// internal/app/features/authapi/auth.go
package authapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	userstore "github.com/dalemusser/saasgate/internal/app/store/users"
	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/auth"
	"github.com/dalemusser/saasgate/internal/app/system/authprovider"
	"github.com/dalemusser/saasgate/internal/app/system/formutil"
	"github.com/dalemusser/saasgate/internal/app/system/htmlsanitize"
	"github.com/dalemusser/saasgate/internal/app/system/normalize"
	"github.com/dalemusser/saasgate/internal/app/system/timeouts"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" label:"Refresh token"`
}

// loginResponse is the token set plus the signed-in profile.
type loginResponse struct {
	authprovider.Tokens
	User models.UserProfile `json:"user"`
}

// HandleLogin exchanges email and password for provider tokens. The profile
// is loaded before the tokens are returned so a deactivated profile cannot
// sign in.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.JSON(w, r, "login: bad request", err)
		return
	}
	email := normalize.Email(req.Email)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	tok, err := h.Provider.SignIn(ctx, email, req.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthorized) {
			h.Audit.LoginFailed(ctx, r, email, "invalid_credentials")
			apperr.WriteMessage(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		h.ErrLog.JSON(w, r, "login: provider sign-in failed", err)
		return
	}

	snap, err := h.Loader.Load(ctx, tok.AccessToken)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthorized) {
			h.Audit.LoginFailed(ctx, r, email, "account_disabled")
		}
		h.ErrLog.JSON(w, r, "login: load profile", err)
		return
	}

	h.Audit.LoginSuccess(ctx, r, snap.Profile.ID, email)
	apperr.WriteJSON(w, http.StatusOK, loginResponse{Tokens: tok, User: snap.Profile})
}

// HandleRegister creates an account at the provider and its profile here.
// The caller signs in separately.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authprovider.SignUpRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.JSON(w, r, "register: bad request", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	profile, err := Register(ctx, h.Provider, h.Profiles, req)
	if err != nil {
		h.ErrLog.JSON(w, r, "register failed", err)
		return
	}

	h.Audit.Registered(ctx, r, profile.Email)
	h.Log.Info("account registered", zap.String("user_id", profile.ID))
	apperr.WriteJSON(w, http.StatusCreated, map[string]any{"user": profile})
}

// Register signs req up with the provider and creates the matching
// profile. Names are sanitized before either sees them.
func Register(ctx context.Context, p Provider, profiles Profiles, req authprovider.SignUpRequest) (*models.UserProfile, error) {
	req.Email = normalize.Email(req.Email)
	req.FirstName = htmlsanitize.PlainText(normalize.Name(req.FirstName))
	req.LastName = htmlsanitize.PlainText(normalize.Name(req.LastName))

	acct, err := p.SignUp(ctx, req)
	if err != nil {
		return nil, err
	}

	profile, err := profiles.EnsureProfile(ctx, acct.ID, acct.Email)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	if req.FirstName == "" && req.LastName == "" {
		return profile, nil
	}
	profile, err = profiles.Update(ctx, acct.ID, userstore.ProfileUpdate{
		FirstName: &req.FirstName,
		LastName:  &req.LastName,
	})
	if err != nil {
		return nil, fmt.Errorf("name profile: %w", err)
	}
	return profile, nil
}

// HandleRefresh exchanges a refresh token for a new token pair.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.JSON(w, r, "refresh: bad request", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	tok, err := h.Provider.Refresh(ctx, req.RefreshToken)
	if err != nil {
		h.ErrLog.JSON(w, r, "refresh: provider refresh failed", err)
		return
	}
	snap, err := h.Loader.Load(ctx, tok.AccessToken)
	if err != nil {
		h.ErrLog.JSON(w, r, "refresh: load profile", err)
		return
	}

	h.Audit.TokenRefreshed(ctx, r, snap.Profile.ID)
	apperr.WriteJSON(w, http.StatusOK, tok)
}

// ServeMe returns the caller's profile and memberships. It runs behind
// BearerAuth, which has already loaded the snapshot.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	snap, ok := auth.SnapshotFrom(r.Context())
	if !ok {
		apperr.WriteError(w, apperr.ErrUnauthorized)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, snap)
}

// rateLimited answers requests refused by the limiter.
func (h *Handler) rateLimited(w http.ResponseWriter, r *http.Request) {
	h.Audit.LoginRateLimited(r.Context(), r)
	apperr.WriteMessage(w, http.StatusTooManyRequests, "Too many attempts. Try again in a minute.")
}
