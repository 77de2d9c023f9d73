package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/saasgate/internal/app/store/audit"
	"github.com/dalemusser/saasgate/internal/testutil"
)

func TestStore_LogAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-time.Hour)
	events := []audit.Event{
		{Timestamp: base, Category: audit.CategoryAdmin, EventType: audit.EventOrgCreated, OrganizationID: "o1", ActorID: "u1", Success: true},
		{Timestamp: base.Add(time.Minute), Category: audit.CategoryAdmin, EventType: audit.EventMemberInvited, OrganizationID: "o1", UserID: "u2", Success: true},
		{Timestamp: base.Add(2 * time.Minute), Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: "u2", Success: true},
		{Timestamp: base.Add(3 * time.Minute), Category: audit.CategoryAdmin, EventType: audit.EventOrgCreated, OrganizationID: "o2", Success: true},
	}
	for _, e := range events {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	got, err := store.Query(ctx, audit.QueryFilter{OrganizationID: "o1"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events for o1, want 2", len(got))
	}
	if got[0].EventType != audit.EventMemberInvited {
		t.Errorf("expected newest first, got %s", got[0].EventType)
	}
	if got[0].ID == "" {
		t.Error("expected ID to be assigned")
	}

	byUser, err := store.Query(ctx, audit.QueryFilter{UserID: "u2", Category: audit.CategoryAuth})
	if err != nil || len(byUser) != 1 {
		t.Errorf("Query by user/category = %d, %v; want 1", len(byUser), err)
	}

	since := base.Add(90 * time.Second)
	n, err := store.CountByFilter(ctx, audit.QueryFilter{StartTime: &since})
	if err != nil || n != 2 {
		t.Errorf("CountByFilter(since) = %d, %v; want 2", n, err)
	}

	page, err := store.Query(ctx, audit.QueryFilter{Limit: 1, Offset: 1})
	if err != nil || len(page) != 1 || page[0].EventType != audit.EventLoginSuccess {
		t.Errorf("paged query = %+v, %v", page, err)
	}
}
