// internal/app/system/auth/bearer.go
package auth

import (
	"context"
	"net/http"

	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/authtoken"
	"github.com/dalemusser/saasgate/internal/app/system/authz"
	"github.com/dalemusser/saasgate/internal/app/system/loader"
	"github.com/dalemusser/saasgate/internal/app/system/resolver"
	"github.com/dalemusser/saasgate/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// MembershipHeader optionally selects the current membership for an API
// request. An unknown id is ignored and the default selection applies.
const MembershipHeader = "X-Membership-Id"

// BearerAuth authenticates API requests from their Authorization header.
type BearerAuth struct {
	Loader loader.Loader
	Log    *zap.Logger
}

// NewBearerAuth returns BearerAuth loading identities through l.
func NewBearerAuth(l loader.Loader, logger *zap.Logger) *BearerAuth {
	return &BearerAuth{Loader: l, Log: logger}
}

const (
	snapshotKey ctxKey = "snapshot"
	tokenKey    ctxKey = "token"
)

// SnapshotFrom returns the identity loaded for the request.
func SnapshotFrom(ctx context.Context) (loader.Snapshot, bool) {
	s, ok := ctx.Value(snapshotKey).(loader.Snapshot)
	return s, ok
}

// TokenFrom returns the request's bearer token.
func TokenFrom(ctx context.Context) string {
	s, _ := ctx.Value(tokenKey).(string)
	return s
}

// Require rejects requests without a valid bearer token with 401 and
// attaches the snapshot and an authz.Engine otherwise.
func (b *BearerAuth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := authtoken.FromHeader(r.Header.Get("Authorization"))
		if !ok {
			apperr.WriteMessage(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
		snap, err := b.Loader.Load(ctx, token)
		cancel()
		if err != nil {
			if apperr.Status(err) >= http.StatusInternalServerError {
				b.Log.Error("bearer load failed", zap.String("path", r.URL.Path), zap.Error(err))
			}
			apperr.WriteError(w, err)
			return
		}

		res := resolver.New(snap.Profile.ID, snap.Memberships)
		if id := r.Header.Get(MembershipHeader); id != "" {
			_, _ = res.SetCurrent(id)
		}

		rctx := context.WithValue(r.Context(), snapshotKey, snap)
		rctx = context.WithValue(rctx, tokenKey, token)
		rctx = authz.WithEngine(rctx, authz.New(res))
		next.ServeHTTP(w, r.WithContext(rctx))
	})
}

// WithSnapshot returns a copy of ctx carrying snap and an Engine over it,
// as Require would attach.
func WithSnapshot(ctx context.Context, snap loader.Snapshot) context.Context {
	ctx = context.WithValue(ctx, snapshotKey, snap)
	return authz.WithEngine(ctx, authz.New(resolver.New(snap.Profile.ID, snap.Memberships)))
}
