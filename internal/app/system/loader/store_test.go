package loader_test

import (
	"context"
	"errors"
	"testing"
	"time"

	membershipstore "github.com/dalemusser/saasgate/internal/app/store/memberships"
	userstore "github.com/dalemusser/saasgate/internal/app/store/users"
	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/authtoken"
	"github.com/dalemusser/saasgate/internal/app/system/loader"
	"github.com/dalemusser/saasgate/internal/app/system/roles"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"github.com/dalemusser/saasgate/internal/testutil"
	"go.uber.org/zap"
)

const secret = "loader-test-secret-loader-test-secret"

type fakeProfiles struct {
	profile *models.UserProfile
	err     error
	calls   int
}

func (f *fakeProfiles) EnsureProfile(_ context.Context, id, email string) (*models.UserProfile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.profile != nil {
		return f.profile, nil
	}
	return &models.UserProfile{ID: id, Email: email, IsActive: true}, nil
}

type fakeMemberships struct {
	list     []models.Membership
	err      error
	accepted []string
}

func (f *fakeMemberships) ListForUser(context.Context, string) ([]models.Membership, error) {
	return f.list, f.err
}

func (f *fakeMemberships) Accept(_ context.Context, id string) error {
	f.accepted = append(f.accepted, id)
	return nil
}

func token(t *testing.T, id, email string) string {
	t.Helper()
	tok, err := authtoken.Issue(secret, "", authtoken.Identity{ID: id, Email: email}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok
}

func TestStoreLoader_InvalidToken(t *testing.T) {
	profiles := &fakeProfiles{}
	l := loader.NewStoreLoader(authtoken.NewVerifier(secret, ""), profiles, &fakeMemberships{}, zap.NewNop())

	_, err := l.Load(context.Background(), "garbage")
	if !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if profiles.calls != 0 {
		t.Error("stores must not be touched for an invalid token")
	}
}

func TestStoreLoader_DropsUnknownRolesAndAccepts(t *testing.T) {
	now := time.Now()
	ms := &fakeMemberships{list: []models.Membership{
		{ID: "m1", UserID: "u1", OrganizationID: "o1", Role: roles.OrganizationOwner, IsActive: true, AcceptedAt: &now},
		{ID: "bad", UserID: "u1", OrganizationID: "o2", Role: "root", IsActive: true},
		{ID: "m3", UserID: "u1", OrganizationID: "o3", Role: roles.OrganizationUser, IsActive: true},
		{ID: "m4", UserID: "u1", OrganizationID: "o4", Role: roles.OrganizationUser, IsActive: false},
	}}
	l := loader.NewStoreLoader(authtoken.NewVerifier(secret, ""), &fakeProfiles{}, ms, zap.NewNop())

	snap, err := l.Load(context.Background(), token(t, "u1", "a@example.com"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.Profile.ID != "u1" {
		t.Errorf("profile id = %q, want u1", snap.Profile.ID)
	}
	if len(snap.Memberships) != 3 {
		t.Fatalf("got %d memberships, want 3", len(snap.Memberships))
	}
	for _, m := range snap.Memberships {
		if m.ID == "bad" {
			t.Error("membership with unknown role must be dropped")
		}
	}
	if len(ms.accepted) != 1 || ms.accepted[0] != "m3" {
		t.Errorf("accepted = %v, want [m3]", ms.accepted)
	}
}

func TestStoreLoader_DeactivatedProfile(t *testing.T) {
	profiles := &fakeProfiles{profile: &models.UserProfile{ID: "u1", IsActive: false}}
	l := loader.NewStoreLoader(authtoken.NewVerifier(secret, ""), profiles, &fakeMemberships{}, zap.NewNop())

	_, err := l.Load(context.Background(), token(t, "u1", "a@example.com"))
	if !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestStoreLoader_StoreUnavailable(t *testing.T) {
	ms := &fakeMemberships{err: apperr.ErrNetwork}
	l := loader.NewStoreLoader(authtoken.NewVerifier(secret, ""), &fakeProfiles{}, ms, zap.NewNop())

	_, err := l.Load(context.Background(), token(t, "u1", "a@example.com"))
	if !errors.Is(err, apperr.ErrNetwork) {
		t.Errorf("expected ErrNetwork, got %v", err)
	}
}

func TestStoreLoader_Mongo_DemoCompany(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Demo Company")
	fx.CreateMembership(ctx, "u1", org.ID, roles.OrganizationOwner, true)

	l := loader.NewStoreLoader(
		authtoken.NewVerifier(secret, ""),
		userstore.New(db),
		membershipstore.New(db),
		zap.NewNop(),
	)

	snap, err := l.Load(ctx, token(t, "u1", "owner@example.com"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.Profile.ID != "u1" || snap.Profile.Email != "owner@example.com" {
		t.Errorf("profile = %+v", snap.Profile)
	}
	if len(snap.Memberships) != 1 || snap.Memberships[0].Organization == nil ||
		snap.Memberships[0].Organization.Name != "Demo Company" {
		t.Errorf("memberships = %+v", snap.Memberships)
	}

	stored, err := userstore.New(db).GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("profile should have been created: %v", err)
	}
	if stored.LastLogin == nil {
		t.Error("expected LastLogin to be stamped")
	}
}
