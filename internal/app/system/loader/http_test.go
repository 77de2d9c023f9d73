package loader_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/loader"
	"github.com/dalemusser/saasgate/internal/app/system/roles"
	"go.uber.org/zap"
)

func TestHTTPLoader_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/me" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"user": {"id": "u1", "email": "a@example.com", "timezone": "UTC", "is_active": true},
			"memberships": [
				{"id": "m1", "user_id": "u1", "organization_id": "o1", "role": "organization_owner", "is_active": true},
				{"id": "m2", "user_id": "u1", "organization_id": "o2", "role": "emperor", "is_active": true}
			]
		}`))
	}))
	defer srv.Close()

	snap, err := loader.NewHTTPLoader(srv.URL+"/", nil, zap.NewNop()).Load(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.Profile.ID != "u1" {
		t.Errorf("profile id = %q", snap.Profile.ID)
	}
	if len(snap.Memberships) != 1 || snap.Memberships[0].Role != roles.OrganizationOwner {
		t.Errorf("memberships = %+v; the unknown role should be dropped", snap.Memberships)
	}
}

func TestHTTPLoader_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, apperr.ErrUnauthorized},
		{http.StatusBadGateway, apperr.ErrNetwork},
		{http.StatusServiceUnavailable, apperr.ErrNetwork},
	}
	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			_, err := loader.NewHTTPLoader(srv.URL, nil, zap.NewNop()).Load(context.Background(), "tok")
			if !errors.Is(err, tc.want) {
				t.Errorf("error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestHTTPLoader_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := loader.NewHTTPLoader(url, nil, zap.NewNop()).Load(context.Background(), "tok")
	if !errors.Is(err, apperr.ErrNetwork) {
		t.Errorf("expected ErrNetwork, got %v", err)
	}
}

func TestHTTPLoader_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.NewHTTPLoader(srv.URL, nil, zap.NewNop()).Load(ctx, "tok")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, apperr.ErrNetwork) {
		t.Error("a cancelled load is not a network failure")
	}
}

func TestFunc(t *testing.T) {
	var l loader.Loader = loader.Func(func(context.Context, string) (loader.Snapshot, error) {
		return loader.Snapshot{}, apperr.ErrUnauthorized
	})
	if _, err := l.Load(context.Background(), ""); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("unexpected error %v", err)
	}
}
