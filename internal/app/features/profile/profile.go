// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"net/http"
	"net/url"

	userstore "github.com/dalemusser/saasgate/internal/app/store/users"
	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/auth"
	"github.com/dalemusser/saasgate/internal/app/system/formutil"
	"github.com/dalemusser/saasgate/internal/app/system/htmlsanitize"
	"github.com/dalemusser/saasgate/internal/app/system/timeouts"
)

// updateRequest is the PATCH body. Absent fields are left untouched.
type updateRequest struct {
	FirstName *string `json:"first_name" validate:"max=100" label:"First name"`
	LastName  *string `json:"last_name" validate:"max=100" label:"Last name"`
	AvatarURL *string `json:"avatar_url" validate:"max=2048" label:"Avatar URL"`
	Phone     *string `json:"phone" validate:"max=32" label:"Phone"`
	Timezone  *string `json:"timezone" validate:"required,timezone" label:"Time zone"`
}

// HandleUpdate applies the caller's own profile changes and returns the
// stored profile. Email and activation are owned elsewhere.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	snap, ok := auth.SnapshotFrom(r.Context())
	if !ok {
		apperr.WriteError(w, apperr.ErrUnauthorized)
		return
	}

	var req updateRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		h.ErrLog.JSON(w, r, "profile: bad request", err)
		return
	}
	if req.AvatarURL != nil && *req.AvatarURL != "" && !validAvatarURL(*req.AvatarURL) {
		h.ErrLog.JSON(w, r, "profile: bad request", apperr.Invalid("avatar_url", "Avatar URL must be an http or https address."))
		return
	}

	upd := userstore.ProfileUpdate{
		FirstName: plain(req.FirstName),
		LastName:  plain(req.LastName),
		AvatarURL: req.AvatarURL,
		Phone:     plain(req.Phone),
		Timezone:  req.Timezone,
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.Update(ctx, snap.Profile.ID, upd)
	if err != nil {
		h.ErrLog.JSON(w, r, "profile: update failed", err)
		return
	}

	h.Audit.ProfileUpdated(ctx, r, p.ID)
	apperr.WriteJSON(w, http.StatusOK, p)
}

func plain(s *string) *string {
	if s == nil {
		return nil
	}
	v := htmlsanitize.PlainText(*s)
	return &v
}

func validAvatarURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
