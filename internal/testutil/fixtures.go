package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/saasgate/internal/app/system/roles"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db  *mongo.Database
	t   *testing.T
	seq int
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateOrganization inserts an active free-tier organization.
func (f *Fixtures) CreateOrganization(ctx context.Context, name string) models.Organization {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organization{
		ID:               uuid.NewString(),
		Name:             name,
		NameCI:           text.Fold(name),
		IsActive:         true,
		SubscriptionTier: models.TierFree,
		MaxUsers:         models.DefaultMaxUsers,
		Settings:         map[string]string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if _, err := f.db.Collection("organizations").InsertOne(ctx, org); err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}

// CreateProfile inserts an active profile with a fresh identity id.
func (f *Fixtures) CreateProfile(ctx context.Context, email, first, last string) models.UserProfile {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.UserProfile{
		ID:        uuid.NewString(),
		Email:     email,
		FirstName: first,
		LastName:  last,
		Timezone:  models.DefaultTimezone,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("user_profiles").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test profile: %v", err)
	}
	return p
}

// CreateMembership inserts a membership of userID in orgID. Successive
// memberships get strictly increasing CreatedAt so load order is stable.
func (f *Fixtures) CreateMembership(ctx context.Context, userID, orgID string, role roles.Role, active bool) models.Membership {
	f.t.Helper()

	f.seq++
	now := time.Now().UTC().Truncate(time.Millisecond).Add(time.Duration(f.seq) * time.Millisecond)
	m := models.Membership{
		ID:             uuid.NewString(),
		UserID:         userID,
		OrganizationID: orgID,
		Role:           role,
		InvitedAt:      now,
		AcceptedAt:     &now,
		IsActive:       active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}
