package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/saasgate/internal/app/system/roles"
	"github.com/dalemusser/saasgate/internal/app/system/validators"
	"github.com/dalemusser/saasgate/internal/testutil"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := make(map[string]bool)
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{
		validators.CollUserProfiles,
		validators.CollOrganizations,
		validators.CollMemberships,
		validators.CollAuditEvents,
		validators.CollSessions,
	} {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestFixturesPassValidators(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	// Fixtures call t.Fatal on insert errors.
	fx := testutil.NewFixtures(t, db)
	org := fx.CreateOrganization(ctx, "Acme")
	p := fx.CreateProfile(ctx, "ada@example.com", "Ada", "Lovelace")
	for _, r := range roles.All() {
		fx.CreateMembership(ctx, p.ID, org.ID, r, false)
	}
}

func TestOrganizationsValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	coll := db.Collection(validators.CollOrganizations)

	tests := []struct {
		name    string
		doc     bson.M
		wantErr bool
	}{
		{"valid", bson.M{"name": "Acme", "name_ci": "acme", "is_active": true, "subscription_tier": "free", "max_users": 5}, false},
		{"missing name", bson.M{"name_ci": "acme", "is_active": true, "subscription_tier": "free", "max_users": 5}, true},
		{"blank name", bson.M{"name": "   ", "name_ci": "acme", "is_active": true, "subscription_tier": "free", "max_users": 5}, true},
		{"unknown tier", bson.M{"name": "Acme", "name_ci": "acme", "is_active": true, "subscription_tier": "gold", "max_users": 5}, true},
		{"zero max users", bson.M{"name": "Acme", "name_ci": "acme", "is_active": true, "subscription_tier": "free", "max_users": 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.doc["_id"] = uuid.NewString()
			_, err := coll.InsertOne(ctx, tt.doc)
			if (err != nil) != tt.wantErr {
				t.Errorf("InsertOne err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMembershipsValidator_Role(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	coll := db.Collection(validators.CollMemberships)

	doc := func(role string) bson.M {
		return bson.M{
			"_id":             uuid.NewString(),
			"user_id":         "u1",
			"organization_id": "o1",
			"role":            role,
			"is_active":       false,
			"invited_at":      time.Now(),
		}
	}

	if _, err := coll.InsertOne(ctx, doc(string(roles.OrganizationAdmin))); err != nil {
		t.Fatalf("known role rejected: %v", err)
	}
	if _, err := coll.InsertOne(ctx, doc("superuser")); err == nil {
		t.Error("expected unknown role to be rejected")
	}
}

func TestAuditValidator_Category(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	coll := db.Collection(validators.CollAuditEvents)

	ok := bson.M{"_id": uuid.NewString(), "timestamp": time.Now(), "category": "auth", "event_type": "login_success"}
	if _, err := coll.InsertOne(ctx, ok); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}
	bad := bson.M{"_id": uuid.NewString(), "timestamp": time.Now(), "category": "billing", "event_type": "x"}
	if _, err := coll.InsertOne(ctx, bad); err == nil {
		t.Error("expected unknown category to be rejected")
	}
}
