// internal/app/system/auth/session.go
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/saasgate/internal/app/system/authprovider"
	"github.com/dalemusser/saasgate/internal/app/system/guard"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Session value keys.
const (
	sessionIDKey    = "session_id"
	accessTokenKey  = "access_token"
	refreshTokenKey = "refresh_token"
	expiresAtKey    = "expires_at"
	currentMemKey   = "current_membership_id"
	emailKey        = "email"
)

const maxCookieLength = 8192

// StoredSession is what the browser's cookie carries.
type StoredSession struct {
	guard.Session
	RefreshToken string
	Expiry       time.Time
	Email        string
}

// Expired reports whether the access token expires within skew of now.
func (s StoredSession) Expired(now time.Time, skew time.Duration) bool {
	return !s.Expiry.IsZero() && !now.Add(skew).Before(s.Expiry)
}

// SessionManager reads and writes the signed session cookie.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewSessionManager builds the cookie store. In production (secure=true)
// cookies are Secure with SameSite=None; in development they are Lax so
// http://localhost works.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "saasgate-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	// An access JWT plus a refresh token overflow the default 4096 byte limit.
	for _, c := range store.Codecs {
		if sc, ok := c.(*securecookie.SecureCookie); ok {
			sc.MaxLength(maxCookieLength)
		}
	}
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// Name returns the cookie name.
func (sm *SessionManager) Name() string { return sm.name }

// MaxAge returns the cookie lifetime; zero for a browser-session cookie.
func (sm *SessionManager) MaxAge() time.Duration {
	if sm.store.Options.MaxAge <= 0 {
		return 0
	}
	return time.Duration(sm.store.Options.MaxAge) * time.Second
}

// get returns the session for r. A cookie that fails to decode (rotated key,
// tampering) yields a fresh session.
func (sm *SessionManager) get(r *http.Request) *sessions.Session {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		var cerr securecookie.Error
		if errors.As(err, &cerr) && cerr.IsDecode() {
			sm.log.Debug("discarding undecodable session cookie", zap.Error(err))
		} else {
			sm.log.Warn("session cookie read failed", zap.Error(err))
		}
		sess, _ = sm.store.New(r, sm.name)
	}
	return sess
}

// Load returns the stored session, if the cookie carries one.
func (sm *SessionManager) Load(r *http.Request) (StoredSession, bool) {
	sess := sm.get(r)
	st := StoredSession{
		Session: guard.Session{
			ID:                  getString(sess, sessionIDKey),
			AccessToken:         getString(sess, accessTokenKey),
			CurrentMembershipID: getString(sess, currentMemKey),
		},
		RefreshToken: getString(sess, refreshTokenKey),
		Email:        getString(sess, emailKey),
	}
	if exp, ok := sess.Values[expiresAtKey].(int64); ok && exp > 0 {
		st.Expiry = time.Unix(exp, 0)
	}
	if st.ID == "" || st.AccessToken == "" {
		return StoredSession{}, false
	}
	return st, true
}

// Begin starts a new session from freshly issued tokens. Every sign-in gets
// a new session id so loads issued for an earlier session are discarded.
func (sm *SessionManager) Begin(w http.ResponseWriter, r *http.Request, tok authprovider.Tokens, email string) (StoredSession, error) {
	sess := sm.get(r)
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	id := uuid.NewString()
	sess.Values[sessionIDKey] = id
	sess.Values[emailKey] = email
	setTokens(sess, tok)
	if err := sess.Save(r, w); err != nil {
		return StoredSession{}, fmt.Errorf("save session: %w", err)
	}
	return StoredSession{
		Session:      guard.Session{ID: id, AccessToken: tok.AccessToken},
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
		Email:        email,
	}, nil
}

// UpdateTokens stores a refreshed token pair, keeping the session id.
func (sm *SessionManager) UpdateTokens(w http.ResponseWriter, r *http.Request, tok authprovider.Tokens) error {
	sess := sm.get(r)
	setTokens(sess, tok)
	return sess.Save(r, w)
}

// SetCurrentMembership remembers the user's organization choice.
func (sm *SessionManager) SetCurrentMembership(w http.ResponseWriter, r *http.Request, membershipID string) error {
	sess := sm.get(r)
	sess.Values[currentMemKey] = membershipID
	return sess.Save(r, w)
}

// Clear expires the cookie and returns the id of the session it held.
func (sm *SessionManager) Clear(w http.ResponseWriter, r *http.Request) string {
	sess := sm.get(r)
	id := getString(sess, sessionIDKey)
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		sm.log.Warn("failed to clear session cookie", zap.Error(err))
	}
	return id
}

func setTokens(sess *sessions.Session, tok authprovider.Tokens) {
	sess.Values[accessTokenKey] = tok.AccessToken
	if tok.RefreshToken != "" {
		sess.Values[refreshTokenKey] = tok.RefreshToken
	}
	if !tok.Expiry.IsZero() {
		sess.Values[expiresAtKey] = tok.Expiry.Unix()
	} else {
		delete(sess.Values, expiresAtKey)
	}
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
