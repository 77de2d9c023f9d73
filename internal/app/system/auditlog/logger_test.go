package auditlog_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/saasgate/internal/app/store/audit"
	"github.com/dalemusser/saasgate/internal/app/system/auditlog"
	"github.com/dalemusser/saasgate/internal/app/system/roles"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type memSink struct {
	events []audit.Event
	err    error
}

func (m *memSink) Log(_ context.Context, e audit.Event) error {
	m.events = append(m.events, e)
	return m.err
}

func newLogger(cfg auditlog.Config) (*auditlog.Logger, *memSink, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := &memSink{}
	return auditlog.New(sink, zap.New(core), cfg), sink, logs
}

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(context.Background(), audit.Event{EventType: "test"})
	logger.LoginSuccess(context.Background(), req, "u1", "a@example.com")
	logger.Logout(context.Background(), req, "u1")
}

func TestLogger_Modes(t *testing.T) {
	tests := []struct {
		mode     string
		wantDB   int
		wantLogs int
	}{
		{auditlog.ModeAll, 1, 1},
		{auditlog.ModeDB, 1, 0},
		{auditlog.ModeLog, 0, 1},
		{auditlog.ModeOff, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.mode, func(t *testing.T) {
			logger, sink, logs := newLogger(auditlog.Config{Auth: tc.mode, Admin: tc.mode})
			req := httptest.NewRequest("POST", "/api/auth/login", nil)

			logger.LoginSuccess(context.Background(), req, "u1", "a@example.com")

			if len(sink.events) != tc.wantDB {
				t.Errorf("stored %d events, want %d", len(sink.events), tc.wantDB)
			}
			if logs.Len() != tc.wantLogs {
				t.Errorf("logged %d entries, want %d", logs.Len(), tc.wantLogs)
			}
		})
	}
}

func TestLogger_CategoriesUseTheirOwnSetting(t *testing.T) {
	logger, sink, _ := newLogger(auditlog.Config{Auth: auditlog.ModeOff, Admin: auditlog.ModeDB})
	req := httptest.NewRequest("POST", "/", nil)

	logger.LoginFailed(context.Background(), req, "a@example.com", "bad credentials")
	logger.OrgCreated(context.Background(), req, "u1", "o1", "Demo Company")

	if len(sink.events) != 1 {
		t.Fatalf("stored %d events, want 1", len(sink.events))
	}
	e := sink.events[0]
	if e.Category != audit.CategoryAdmin || e.EventType != audit.EventOrgCreated {
		t.Errorf("stored %s/%s, want admin/org_created", e.Category, e.EventType)
	}
	if e.ActorID != "u1" || e.OrganizationID != "o1" || e.Details["name"] != "Demo Company" {
		t.Errorf("unexpected event %+v", e)
	}
	if e.IP != "192.0.2.1" {
		t.Errorf("IP = %q, want host of RemoteAddr", e.IP)
	}
}

func TestLogger_FailedEventsWarn(t *testing.T) {
	logger, _, logs := newLogger(auditlog.Config{Auth: auditlog.ModeLog})
	req := httptest.NewRequest("GET", "/members", nil)

	logger.AccessDenied(context.Background(), req, "u1", "o1", roles.OrganizationAdmin)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("level = %v, want warn", entries[0].Level)
	}
	fields := entries[0].ContextMap()
	if fields["detail_required_role"] != "organization_admin" || fields["detail_path"] != "/members" {
		t.Errorf("unexpected fields %v", fields)
	}
}

func TestLogger_StoreErrorIsLogged(t *testing.T) {
	logger, sink, logs := newLogger(auditlog.Config{Admin: auditlog.ModeDB})
	sink.err = errors.New("db down")

	logger.MemberInvited(context.Background(), nil, "u1", "o1", "u2", roles.OrganizationUser)

	if logs.FilterMessage("failed to store audit event").Len() != 1 {
		t.Error("expected store failure to be logged")
	}
}

func TestValidMode(t *testing.T) {
	for _, m := range []string{"all", "db", "log", "off"} {
		if !auditlog.ValidMode(m) {
			t.Errorf("ValidMode(%q) = false", m)
		}
	}
	if auditlog.ValidMode("verbose") {
		t.Error("ValidMode(verbose) = true")
	}
}
