// internal/app/system/loader/store.go
package loader

import (
	"context"
	"fmt"

	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/authtoken"
	"github.com/dalemusser/saasgate/internal/app/system/roles"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"go.uber.org/zap"
)

// TokenVerifier checks a bearer token. *authtoken.Verifier satisfies it.
type TokenVerifier interface {
	Verify(token string) (authtoken.Identity, error)
}

// ProfileStore creates or refreshes a profile on sign-in.
type ProfileStore interface {
	EnsureProfile(ctx context.Context, id, email string) (*models.UserProfile, error)
}

// MembershipStore lists an identity's memberships in received order.
type MembershipStore interface {
	ListForUser(ctx context.Context, userID string) ([]models.Membership, error)
	Accept(ctx context.Context, id string) error
}

// StoreLoader loads snapshots from the application's own stores.
type StoreLoader struct {
	verifier    TokenVerifier
	profiles    ProfileStore
	memberships MembershipStore
	log         *zap.Logger
}

// NewStoreLoader wires a StoreLoader.
func NewStoreLoader(v TokenVerifier, p ProfileStore, m MembershipStore, log *zap.Logger) *StoreLoader {
	return &StoreLoader{verifier: v, profiles: p, memberships: m, log: log}
}

// Load verifies token, ensures the profile exists with id == identity id,
// and returns every membership of the identity. Memberships whose stored
// role is not a known role are dropped and logged. Pending invitations are
// marked accepted on the first load after they were issued.
func (l *StoreLoader) Load(ctx context.Context, token string) (Snapshot, error) {
	id, err := l.verifier.Verify(token)
	if err != nil {
		return Snapshot{}, err
	}

	profile, err := l.profiles.EnsureProfile(ctx, id.ID, id.Email)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load profile: %w", err)
	}
	if !profile.IsActive {
		return Snapshot{}, fmt.Errorf("profile %s is deactivated: %w", id.ID, apperr.ErrUnauthorized)
	}

	all, err := l.memberships.ListForUser(ctx, id.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load memberships: %w", err)
	}

	kept := make([]models.Membership, 0, len(all))
	for _, m := range all {
		if !roles.Valid(m.Role) {
			l.log.Warn("dropping membership with unknown role",
				zap.String("membership_id", m.ID),
				zap.String("user_id", m.UserID),
				zap.String("role", string(m.Role)))
			continue
		}
		if m.IsActive && m.AcceptedAt == nil {
			if err := l.memberships.Accept(ctx, m.ID); err != nil {
				l.log.Warn("failed to mark membership accepted",
					zap.String("membership_id", m.ID), zap.Error(err))
			}
		}
		kept = append(kept, m)
	}

	return Snapshot{Profile: *profile, Memberships: kept}, nil
}
