// internal/app/system/loader/loader.go

// Package loader fetches the profile and memberships behind a bearer token.
//
// StoreLoader reads MongoDB in-process; HTTPLoader calls GET /api/auth/me on
// a remote API. Both classify failures with apperr: an invalid or expired
// token is ErrUnauthorized, an unreachable backend is ErrNetwork. Loads are
// never retried.
package loader

import (
	"context"

	"github.com/dalemusser/saasgate/internal/domain/models"
)

// Snapshot is everything the guard needs about one identity. It is also the
// body of GET /api/auth/me.
type Snapshot struct {
	Profile     models.UserProfile  `json:"user"`
	Memberships []models.Membership `json:"memberships"`
}

// Loader loads a Snapshot for a bearer token.
type Loader interface {
	Load(ctx context.Context, token string) (Snapshot, error)
}

// Func adapts a function to Loader.
type Func func(ctx context.Context, token string) (Snapshot, error)

// Load calls f.
func (f Func) Load(ctx context.Context, token string) (Snapshot, error) {
	return f(ctx, token)
}
