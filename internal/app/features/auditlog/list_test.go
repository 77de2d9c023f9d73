package auditlog

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/saasgate/internal/app/store/audit"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantCat   string
		wantType  string
		wantStart bool
		wantEnd   bool
		wantSkip  int64
	}{
		{"empty", "/audit", "", "", false, false, 0},
		{"category and type", "/audit?category=auth&event_type=logout", "auth", "logout", false, false, 0},
		{"type outside category", "/audit?category=admin&event_type=logout", "admin", "", false, false, 0},
		{"unknown category", "/audit?category=billing", "", "", false, false, 0},
		{"dates", "/audit?start_date=2026-01-01&end_date=2026-01-31", "", "", true, true, 0},
		{"bad date", "/audit?start_date=yesterday", "", "", false, false, 0},
		{"page three", "/audit?page=3", "", "", false, false, 2 * pageSize},
		{"negative page", "/audit?page=-2", "", "", false, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data listData
			f := parseFilter(httptest.NewRequest("GET", tt.url, nil), "org-1", &data)

			if f.OrganizationID != "org-1" {
				t.Errorf("OrganizationID = %q, want org-1", f.OrganizationID)
			}
			if f.Category != tt.wantCat || data.Category != tt.wantCat {
				t.Errorf("category = %q/%q, want %q", f.Category, data.Category, tt.wantCat)
			}
			if f.EventType != tt.wantType {
				t.Errorf("event type = %q, want %q", f.EventType, tt.wantType)
			}
			if (f.StartTime != nil) != tt.wantStart || (f.EndTime != nil) != tt.wantEnd {
				t.Errorf("start/end = %v/%v", f.StartTime, f.EndTime)
			}
			if f.Offset != tt.wantSkip {
				t.Errorf("Offset = %d, want %d", f.Offset, tt.wantSkip)
			}
			if f.Limit != pageSize {
				t.Errorf("Limit = %d, want %d", f.Limit, pageSize)
			}
		})
	}
}

func TestParseFilter_EndDateCoversWholeDay(t *testing.T) {
	var data listData
	f := parseFilter(httptest.NewRequest("GET", "/audit?end_date=2026-03-04", nil), "o", &data)
	late := time.Date(2026, 3, 4, 23, 59, 59, 0, time.UTC)
	if f.EndTime == nil || f.EndTime.Before(late) {
		t.Fatalf("EndTime = %v, want at or after %v", f.EndTime, late)
	}
}

func TestBuildItems_ResolvesNames(t *testing.T) {
	ts := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	events := []audit.Event{
		{ID: "e1", Timestamp: ts, Category: audit.CategoryAdmin, EventType: audit.EventMemberRemoved, ActorID: "u1", UserID: "u2", Success: true},
		{ID: "e2", Timestamp: ts, Category: audit.CategoryAuth, EventType: audit.EventLoginFailed, UserID: "ghost", FailureReason: "bad password"},
	}
	items := buildItems(events, map[string]string{"u1": "Ada Lovelace", "u2": "Grace Hopper"}, time.UTC)

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ActorName != "Ada Lovelace" || items[0].TargetName != "Grace Hopper" {
		t.Errorf("names = %q/%q", items[0].ActorName, items[0].TargetName)
	}
	if items[1].TargetName != "ghost" {
		t.Errorf("unresolved id should pass through, got %q", items[1].TargetName)
	}
	if items[1].Reason != "bad password" || items[1].Success {
		t.Errorf("failure not carried: %+v", items[1])
	}
	if items[0].Timestamp != "May 1, 2026 12:00 UTC" {
		t.Errorf("Timestamp = %q", items[0].Timestamp)
	}
}

func TestNewPager(t *testing.T) {
	p := newPager(1, 0, 0)
	if p.TotalPages != 1 || p.HasPrev || p.HasNext {
		t.Errorf("empty pager = %+v", p)
	}

	p = newPager(2, 2*pageSize+1, pageSize)
	if p.TotalPages != 3 || !p.HasPrev || !p.HasNext || p.PrevPage != 1 || p.NextPage != 3 {
		t.Errorf("middle pager = %+v", p)
	}

	p = newPager(3, 2*pageSize+1, 1)
	if p.HasNext || p.NextPage != 3 {
		t.Errorf("last pager = %+v", p)
	}
}

func TestEventTypesForCategory(t *testing.T) {
	if got := len(eventTypesForCategory("")); got != len(authEvents)+len(adminEvents) {
		t.Errorf("all event types = %d", got)
	}
	if eventTypesForCategory("billing") != nil {
		t.Error("unknown category should have no event types")
	}
}
