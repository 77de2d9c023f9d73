package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/auth"
	"github.com/dalemusser/saasgate/internal/app/system/authz"
	"github.com/dalemusser/saasgate/internal/app/system/loader"
	"github.com/dalemusser/saasgate/internal/app/system/roles"
	"go.uber.org/zap"
)

func TestBearerAuth(t *testing.T) {
	b := auth.NewBearerAuth(tokenLoader(roles.OrganizationAdmin, nil), zap.NewNop())

	var engine *authz.Engine
	var token string
	h := b.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		engine = authz.FromRequest(r)
		token = auth.TokenFrom(r.Context())
		if _, ok := auth.SnapshotFrom(r.Context()); !ok {
			t.Error("expected a snapshot on the context")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"rejected", "Bearer bad", http.StatusUnauthorized},
		{"ok", "Bearer good", http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/organizations", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}

	if token != "good" {
		t.Errorf("token = %q", token)
	}
	if !engine.HasMinimumRole(roles.OrganizationAdmin) {
		t.Error("engine should default to the admin membership")
	}
}

func TestBearerAuth_NetworkFailure(t *testing.T) {
	b := auth.NewBearerAuth(tokenLoaderErr(apperr.ErrNetwork), zap.NewNop())
	h := b.Require(http.NotFoundHandler())

	req := httptest.NewRequest("GET", "/api/organizations", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func tokenLoaderErr(err error) loader.Loader {
	return loader.Func(func(context.Context, string) (loader.Snapshot, error) {
		return loader.Snapshot{}, err
	})
}
