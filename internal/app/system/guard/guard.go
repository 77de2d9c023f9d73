// internal/app/system/guard/guard.go

// Package guard owns the authentication state of one browser session and
// decides what a navigation to a destination should do.
//
// A Guard is the only owner of the session, the loaded profile, the
// memberships and the current selection. Every mutation goes through a
// transition method serialized by the Guard's mutex. Loads run outside the
// lock; each carries a Ticket tagged with the session it was issued for, and
// a result whose tag no longer matches the Guard's session is discarded.
package guard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/authz"
	"github.com/dalemusser/saasgate/internal/app/system/loader"
	"github.com/dalemusser/saasgate/internal/app/system/resolver"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"go.uber.org/zap"
)

// State is the authentication state of a session.
type State int

const (
	Loading State = iota
	Unauthenticated
	AuthenticatedNoOrg
	AuthenticatedWithOrg
	Denied
	Failed
)

var stateNames = [...]string{
	Loading:              "loading",
	Unauthenticated:      "unauthenticated",
	AuthenticatedNoOrg:   "authenticated_no_org",
	AuthenticatedWithOrg: "authenticated_with_org",
	Denied:               "denied",
	Failed:               "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Authenticated reports whether s carries a loaded identity.
func (s State) Authenticated() bool {
	return s == AuthenticatedNoOrg || s == AuthenticatedWithOrg || s == Denied
}

// Session identifies a signed-in browser session. ID is the tag loads are
// matched against; it changes on every sign-in.
type Session struct {
	ID                  string
	AccessToken         string
	CurrentMembershipID string
}

// EventKind is the kind of an auth-state-change notification.
type EventKind int

const (
	SignedIn EventKind = iota
	SignedOut
	TokenRefreshed
)

func (k EventKind) String() string {
	switch k {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	case TokenRefreshed:
		return "token_refreshed"
	}
	return "unknown"
}

// AuthEvent is an auth-state-change notification. Session is ignored for
// SignedOut.
type AuthEvent struct {
	Kind    EventKind
	Session Session
}

// Ticket is issued by Begin and redeemed by Complete.
type Ticket struct {
	SessionID string
	Token     string
}

// Guard is the per-session state container. The zero value is not usable;
// construct with New.
type Guard struct {
	loader loader.Loader
	log    *zap.Logger

	mu       sync.Mutex
	state    State
	session  *Session
	profile  models.UserProfile
	res      *resolver.Resolver
	lastErr  error
	loadedAt time.Time

	now func() time.Time
}

// New returns a Guard in the Loading state.
func New(l loader.Loader, log *zap.Logger) *Guard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{loader: l, log: log, state: Loading, now: time.Now}
}

// State returns the current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Session returns a copy of the session, if one is held.
func (g *Guard) Session() (Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return Session{}, false
	}
	return *g.session, true
}

// Profile returns the loaded profile while authenticated.
func (g *Guard) Profile() (models.UserProfile, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.state.Authenticated() {
		return models.UserProfile{}, false
	}
	return g.profile, true
}

// Memberships returns every loaded membership in received order.
func (g *Guard) Memberships() []models.Membership {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.res == nil {
		return nil
	}
	return g.res.All()
}

// Current returns the current membership.
func (g *Guard) Current() (models.Membership, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.res == nil {
		return models.Membership{}, false
	}
	return g.res.Current()
}

// Err returns the error of the last failed load, or nil after a success.
func (g *Guard) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastErr
}

// LoadedAt returns when the last load was applied.
func (g *Guard) LoadedAt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loadedAt
}

// Engine returns an authz.Engine over a snapshot of the memberships and
// selection. Later transitions do not affect it.
func (g *Guard) Engine() *authz.Engine {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.res == nil || !g.state.Authenticated() {
		return authz.New(nil)
	}
	return authz.New(g.res.Clone())
}

// Begin adopts sess and issues a Ticket for loading it. Adopting a session
// with a new id drops everything loaded for the previous one and moves to
// Loading. Re-adopting the current id (a refreshed token) keeps the state
// until the load completes.
func (g *Guard) Begin(sess Session) Ticket {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session == nil || g.session.ID != sess.ID {
		g.res = nil
		g.profile = models.UserProfile{}
		g.state = Loading
	} else if sess.CurrentMembershipID == "" {
		sess.CurrentMembershipID = g.session.CurrentMembershipID
	}
	if !g.state.Authenticated() {
		g.state = Loading
	}
	s := sess
	g.session = &s
	return Ticket{SessionID: sess.ID, Token: sess.AccessToken}
}

// Complete applies the result of the load t was issued for. It reports
// false, leaving the Guard untouched, when the session has changed since
// Begin. Among results for the same session the last one received wins.
func (g *Guard) Complete(t Ticket, snap loader.Snapshot, err error) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session == nil || g.session.ID != t.SessionID {
		g.log.Debug("discarding stale load", zap.String("session_id", t.SessionID))
		return false
	}

	if err != nil {
		g.fail(err)
		return true
	}

	prev := ""
	if g.res != nil && g.res.UserID() == snap.Profile.ID {
		if m, ok := g.res.Current(); ok {
			prev = m.ID
		}
	}

	g.profile = snap.Profile
	g.res = resolver.New(snap.Profile.ID, snap.Memberships)
	g.lastErr = nil
	g.loadedAt = g.now()

	// Keep the user's explicit choice across reloads when it is still valid.
	for _, id := range []string{g.session.CurrentMembershipID, prev} {
		if id == "" {
			continue
		}
		if _, err := g.res.SetCurrent(id); err == nil {
			break
		}
	}
	if m, ok := g.res.Current(); ok {
		g.session.CurrentMembershipID = m.ID
		g.state = AuthenticatedWithOrg
	} else {
		g.session.CurrentMembershipID = ""
		g.state = AuthenticatedNoOrg
	}
	return true
}

// fail applies a load error. Caller holds mu.
func (g *Guard) fail(err error) {
	g.lastErr = err
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		g.log.Info("session rejected", zap.Error(err))
		g.clear()
	case g.state.Authenticated():
		g.log.Warn("reload failed; keeping previous identity", zap.Error(err))
	default:
		g.log.Error("load failed", zap.Error(err))
		g.state = Failed
	}
}

// clear drops the session. Caller holds mu.
func (g *Guard) clear() {
	g.session = nil
	g.res = nil
	g.profile = models.UserProfile{}
	g.state = Unauthenticated
}

// SignOut drops the session and everything loaded for it. Loads still in
// flight for the old session will be discarded.
func (g *Guard) SignOut() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clear()
	g.lastErr = nil
}

// Sync loads sess in the calling goroutine and returns the resulting state.
// An empty session id means there is no session.
func (g *Guard) Sync(ctx context.Context, sess Session) State {
	if sess.ID == "" || sess.AccessToken == "" {
		g.SignOut()
		return Unauthenticated
	}
	t := g.Begin(sess)
	snap, err := g.loader.Load(ctx, t.Token)
	g.Complete(t, snap, err)
	return g.State()
}

// Notify applies an auth-state-change notification and returns the
// resulting state. SignedOut applies immediately. SignedIn and
// TokenRefreshed load ev.Session in the calling goroutine; a SignedOut that
// lands while such a load is in flight wins, and the load is discarded.
func (g *Guard) Notify(ctx context.Context, ev AuthEvent) State {
	g.log.Debug("auth event", zap.Stringer("event", ev.Kind))
	if ev.Kind == SignedOut {
		g.SignOut()
		return Unauthenticated
	}
	return g.Sync(ctx, ev.Session)
}

// SetCurrent switches the current organization to the membership with the
// given id. On failure the selection is unchanged and the error wraps
// apperr.ErrNotFound.
func (g *Guard) SetCurrent(membershipID string) (models.Membership, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.res == nil || !g.state.Authenticated() {
		return models.Membership{}, apperr.ErrNotFound
	}
	m, err := g.res.SetCurrent(membershipID)
	if err != nil {
		return models.Membership{}, err
	}
	g.session.CurrentMembershipID = m.ID
	if g.state == AuthenticatedNoOrg {
		g.state = AuthenticatedWithOrg
	}
	return m, nil
}
