// internal/app/system/guard/registry.go
package guard

import (
	"sync"
	"time"

	"github.com/dalemusser/saasgate/internal/app/system/loader"
	"go.uber.org/zap"
)

// Registry keeps one Guard per session id for the web tier.
type Registry struct {
	loader loader.Loader
	log    *zap.Logger
	idle   time.Duration

	mu      sync.Mutex
	guards  map[string]*entry
	revoked map[string]time.Time // session id -> forget after
	now     func() time.Time
}

type entry struct {
	guard    *Guard
	lastSeen time.Time
}

// NewRegistry returns a Registry whose guards load through l. Guards unused
// for longer than idle are dropped by Sweep.
func NewRegistry(l loader.Loader, log *zap.Logger, idle time.Duration) *Registry {
	return &Registry{
		loader:  l,
		log:     log,
		idle:    idle,
		guards:  make(map[string]*entry),
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Get returns the Guard for sessionID, creating it in the Loading state on
// first use.
func (r *Registry) Get(sessionID string) *Guard {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.guards[sessionID]
	if !ok {
		e = &entry{guard: New(r.loader, r.log.With(zap.String("session_id", sessionID)))}
		r.guards[sessionID] = e
	}
	e.lastSeen = r.now()
	return e.guard
}

// Remove signs the session's Guard out and forgets it.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	e, ok := r.guards[sessionID]
	delete(r.guards, sessionID)
	r.mu.Unlock()

	if ok {
		e.guard.SignOut()
	}
}

// Revoke forgets the session's Guard and refuses the id until the given
// time, so a replayed cookie cannot bring the session back. It returns the
// Guard that was tracked, or nil.
func (r *Registry) Revoke(sessionID string, until time.Time) *Guard {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.revoked[sessionID] = until
	e, ok := r.guards[sessionID]
	if !ok {
		return nil
	}
	delete(r.guards, sessionID)
	return e.guard
}

// Revoked reports whether sessionID was revoked and is still refused.
func (r *Registry) Revoked(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	until, ok := r.revoked[sessionID]
	return ok && r.now().Before(until)
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.guards)
}

// Sweep drops guards idle for longer than the registry's idle period and
// returns how many were dropped. Expired revocations are forgotten too.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for id, until := range r.revoked {
		if !now.Before(until) {
			delete(r.revoked, id)
		}
	}

	cutoff := now.Add(-r.idle)
	n := 0
	for id, e := range r.guards {
		if e.lastSeen.Before(cutoff) {
			delete(r.guards, id)
			n++
		}
	}
	return n
}
