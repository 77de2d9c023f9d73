package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/saasgate/internal/app/store/sessions"
	"github.com/dalemusser/saasgate/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func record(t *testing.T, ctx context.Context, db *mongo.Database, id string) sessions.Session {
	t.Helper()
	var s sessions.Session
	if err := db.Collection("sessions").FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		t.Fatalf("find session %s: %v", id, err)
	}
	return s
}

func TestStore_OpenAndClose(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	loginAt := time.Now().UTC().Add(-10 * time.Minute)
	err := store.Open(ctx, sessions.Session{
		ID:        "s1",
		UserID:    "u1",
		LoginAt:   loginAt,
		ExpiresAt: loginAt.Add(24 * time.Hour),
		IP:        "10.0.0.1",
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	closed, err := store.IsClosed(ctx, "s1")
	if err != nil || closed {
		t.Fatalf("IsClosed(open) = %v, %v; want false", closed, err)
	}

	if err := store.Close(ctx, "s1", sessions.EndLogout); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	closed, err = store.IsClosed(ctx, "s1")
	if err != nil || !closed {
		t.Fatalf("IsClosed(closed) = %v, %v; want true", closed, err)
	}

	got := record(t, ctx, db, "s1")
	if got.EndReason != sessions.EndLogout {
		t.Errorf("EndReason = %q, want logout", got.EndReason)
	}
	if got.DurationSecs < 600 {
		t.Errorf("DurationSecs = %d, want at least 600", got.DurationSecs)
	}

	// A second close keeps the first reason.
	if err := store.Close(ctx, "s1", sessions.EndRejected); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if again := record(t, ctx, db, "s1"); again.EndReason != sessions.EndLogout {
		t.Errorf("EndReason after second close = %q", again.EndReason)
	}
}

func TestStore_UnknownSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if closed, err := store.IsClosed(ctx, "missing"); err != nil || closed {
		t.Errorf("IsClosed(missing) = %v, %v; want false, nil", closed, err)
	}
	if err := store.Close(ctx, "missing", sessions.EndLogout); err != nil {
		t.Errorf("Close(missing) = %v, want nil", err)
	}
}
