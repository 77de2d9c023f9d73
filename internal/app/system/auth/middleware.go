// internal/app/system/auth/middleware.go

// Package auth connects browser sessions and bearer tokens to the guard and
// the authz engine.
//
// The browser tier keeps one guard.Guard per session in a guard.Registry.
// LoadSession refreshes the access token when it is about to expire, reloads
// the guard when it is stale, and puts the guard and an authz.Engine on the
// request context. Require turns the guard's Decision into a response.
package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	sessionstore "github.com/dalemusser/saasgate/internal/app/store/sessions"
	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/auditlog"
	"github.com/dalemusser/saasgate/internal/app/system/authprovider"
	"github.com/dalemusser/saasgate/internal/app/system/authz"
	"github.com/dalemusser/saasgate/internal/app/system/guard"
	"github.com/dalemusser/saasgate/internal/app/system/ratelimit"
	"github.com/dalemusser/saasgate/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Refresher exchanges a refresh token. *authprovider.Client satisfies it.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (authprovider.Tokens, error)
}

// SessionRecorder keeps sign-outs durable across restarts and instances.
// *sessions.Store satisfies it.
type SessionRecorder interface {
	Open(ctx context.Context, sess sessionstore.Session) error
	Close(ctx context.Context, id, reason string) error
	IsClosed(ctx context.Context, id string) (bool, error)
}

const (
	// refreshSkew is how long before expiry a token is refreshed.
	refreshSkew = 30 * time.Second

	// revokeFor bounds how long a signed-out id is refused when the
	// cookie has no max age of its own.
	revokeFor = 24 * time.Hour
)

// Gate is the browser-tier auth middleware.
type Gate struct {
	Sessions   *SessionManager
	Guards     *guard.Registry
	Refresher  Refresher
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
	StaleAfter time.Duration

	// Records is optional. Without it sign-out is enforced by this
	// process's registry only.
	Records SessionRecorder

	now func() time.Time
}

// NewGate wires a Gate. Guards loaded longer than staleAfter ago are
// reloaded on the next request.
func NewGate(sm *SessionManager, reg *guard.Registry, ref Refresher, audit *auditlog.Logger, staleAfter time.Duration, logger *zap.Logger) *Gate {
	return &Gate{
		Sessions:   sm,
		Guards:     reg,
		Refresher:  ref,
		AuditLog:   audit,
		Log:        logger,
		StaleAfter: staleAfter,
		now:        time.Now,
	}
}

type ctxKey string

const guardKey ctxKey = "guard"

// WithGuard returns a copy of ctx carrying g.
func WithGuard(ctx context.Context, g *guard.Guard) context.Context {
	return context.WithValue(ctx, guardKey, g)
}

// GuardFrom returns the request's guard. Requests that did not pass through
// LoadSession get an unauthenticated guard.
func GuardFrom(r *http.Request) *guard.Guard {
	if g, ok := r.Context().Value(guardKey).(*guard.Guard); ok && g != nil {
		return g
	}
	return anonymous(nil)
}

func anonymous(log *zap.Logger) *guard.Guard {
	g := guard.New(nil, log)
	g.SignOut()
	return g
}

// LoadSession attaches the session's guard and an authz.Engine to every
// request.
func (gt *Gate) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st, ok := gt.Sessions.Load(r)
		if !ok {
			next.ServeHTTP(w, r.WithContext(WithGuard(r.Context(), anonymous(gt.Log))))
			return
		}

		if gt.Guards.Revoked(st.ID) {
			gt.reject(w, r, next)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
		defer cancel()

		refreshed := false
		if st.Expired(gt.now(), refreshSkew) && st.RefreshToken != "" && gt.Refresher != nil {
			tok, err := gt.Refresher.Refresh(ctx, st.RefreshToken)
			switch {
			case err == nil:
				if err := gt.Sessions.UpdateTokens(w, r, tok); err != nil {
					gt.Log.Warn("failed to store refreshed tokens", zap.Error(err))
				}
				st.AccessToken = tok.AccessToken
				refreshed = true
			case errors.Is(err, apperr.ErrUnauthorized):
				gt.endSession(ctx, w, r, st.ID)
				next.ServeHTTP(w, r.WithContext(WithGuard(r.Context(), anonymous(gt.Log))))
				return
			default:
				gt.Log.Warn("token refresh failed", zap.Error(err))
			}
		}

		g := gt.Guards.Get(st.ID)
		if gt.needsLoad(g, st, refreshed) {
			if gt.closedElsewhere(ctx, st.ID) {
				gt.Guards.Revoke(st.ID, gt.revokeUntil())
				gt.reject(w, r, next)
				return
			}
			var state guard.State
			if refreshed {
				state = g.Notify(ctx, guard.AuthEvent{Kind: guard.TokenRefreshed, Session: st.Session})
			} else {
				state = g.Sync(ctx, st.Session)
			}
			if state == guard.Unauthenticated {
				gt.endSession(ctx, w, r, st.ID)
			} else if refreshed {
				if p, ok := g.Profile(); ok {
					gt.AuditLog.TokenRefreshed(ctx, r, p.ID)
				}
			}
		}

		rctx := WithGuard(r.Context(), g)
		rctx = authz.WithEngine(rctx, g.Engine())
		next.ServeHTTP(w, r.WithContext(rctx))
	})
}

func (gt *Gate) needsLoad(g *guard.Guard, st StoredSession, refreshed bool) bool {
	if refreshed {
		return true
	}
	switch g.State() {
	case guard.Loading, guard.Failed, guard.Unauthenticated:
		return true
	}
	cur, ok := g.Session()
	if !ok || cur.AccessToken != st.AccessToken {
		return true
	}
	return gt.StaleAfter > 0 && gt.now().Sub(g.LoadedAt()) > gt.StaleAfter
}

// endSession drops a session the provider no longer accepts.
func (gt *Gate) endSession(ctx context.Context, w http.ResponseWriter, r *http.Request, sessionID string) {
	gt.Sessions.Clear(w, r)
	gt.Guards.Remove(sessionID)
	gt.closeRecord(ctx, sessionID, sessionstore.EndRejected)
}

// reject clears a revoked session's cookie and serves the request
// anonymously.
func (gt *Gate) reject(w http.ResponseWriter, r *http.Request, next http.Handler) {
	gt.Sessions.Clear(w, r)
	next.ServeHTTP(w, r.WithContext(WithGuard(r.Context(), anonymous(gt.Log))))
}

// closedElsewhere reports whether the session was signed out through
// another process. Lookup failures are logged and treated as open; the
// token is still verified by the load that follows.
func (gt *Gate) closedElsewhere(ctx context.Context, sessionID string) bool {
	if gt.Records == nil {
		return false
	}
	closed, err := gt.Records.IsClosed(ctx, sessionID)
	if err != nil {
		gt.Log.Warn("session record lookup failed", zap.Error(err))
		return false
	}
	return closed
}

func (gt *Gate) closeRecord(ctx context.Context, sessionID, reason string) {
	if gt.Records == nil || sessionID == "" {
		return
	}
	if err := gt.Records.Close(ctx, sessionID, reason); err != nil {
		gt.Log.Warn("failed to close session record", zap.Error(err))
	}
}

func (gt *Gate) revokeUntil() time.Time {
	d := gt.Sessions.MaxAge()
	if d <= 0 {
		d = revokeFor
	}
	return gt.now().Add(d)
}

// SignIn starts a session for freshly issued tokens and loads its guard.
func (gt *Gate) SignIn(w http.ResponseWriter, r *http.Request, tok authprovider.Tokens, email string) (*guard.Guard, error) {
	st, err := gt.Sessions.Begin(w, r, tok, email)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g := gt.Guards.Get(st.ID)
	if state := g.Notify(ctx, guard.AuthEvent{Kind: guard.SignedIn, Session: st.Session}); !state.Authenticated() {
		err := g.Err()
		if err == nil {
			err = apperr.ErrUnauthorized
		}
		gt.Sessions.Clear(w, r)
		gt.Guards.Remove(st.ID)
		return nil, err
	}

	if gt.Records != nil {
		p, _ := g.Profile()
		rec := sessionstore.Session{
			ID:        st.ID,
			UserID:    p.ID,
			LoginAt:   gt.now().UTC(),
			ExpiresAt: gt.revokeUntil().UTC(),
			IP:        ratelimit.ClientIP(r),
			UserAgent: r.UserAgent(),
		}
		if err := gt.Records.Open(ctx, rec); err != nil {
			gt.Log.Warn("failed to record session", zap.Error(err))
		}
	}
	return g, nil
}

// SignOut ends the request's session. The session id is refused from then
// on, so replaying the old cookie does not sign the user back in.
func (gt *Gate) SignOut(w http.ResponseWriter, r *http.Request) {
	id := gt.Sessions.Clear(w, r)
	if id == "" {
		return
	}
	if g := gt.Guards.Revoke(id, gt.revokeUntil()); g != nil {
		g.Notify(r.Context(), guard.AuthEvent{Kind: guard.SignedOut})
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	gt.closeRecord(ctx, id, sessionstore.EndLogout)
}

// Require guards a page with dest. Browser requests are redirected; API
// requests get a JSON error with the matching status.
func (gt *Gate) Require(dest guard.Destination) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g := GuardFrom(r)
			d := g.Decide(dest)

			switch d.Action {
			case guard.Render:
				next.ServeHTTP(w, r)
			case guard.RedirectSignIn:
				loc := d.Location + "?return=" + url.QueryEscape(currentURI(r))
				respond(w, r, loc, http.StatusUnauthorized, "Not authenticated")
			case guard.RedirectOnboarding:
				respond(w, r, d.Location, http.StatusForbidden, "No organization selected")
			case guard.RedirectDenied:
				userID, orgID := "", ""
				if p, ok := g.Profile(); ok {
					userID = p.ID
				}
				if m, ok := g.Current(); ok {
					orgID = m.OrganizationID
				}
				gt.AuditLog.AccessDenied(r.Context(), r, userID, orgID, dest.MinRole)
				respond(w, r, d.Location, http.StatusForbidden, "Insufficient permissions")
			case guard.Wait:
				w.Header().Set("Retry-After", "1")
				apperr.WriteMessage(w, http.StatusServiceUnavailable, "Session is loading")
			default:
				gt.Log.Error("guard failed", zap.String("path", dest.Path), zap.Error(d.Err))
				err := d.Err
				if err == nil {
					err = apperr.ErrNetwork
				}
				apperr.WriteError(w, err)
			}
		})
	}
}

// respond redirects browsers and answers API callers with status.
func respond(w http.ResponseWriter, r *http.Request, location string, status int, msg string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", location)
		w.WriteHeader(status)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, location, http.StatusSeeOther)
		return
	}
	apperr.WriteMessage(w, status, msg)
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}
