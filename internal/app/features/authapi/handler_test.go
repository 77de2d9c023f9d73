package authapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/saasgate/internal/app/features/authapi"
	uierrors "github.com/dalemusser/saasgate/internal/app/features/errors"
	userstore "github.com/dalemusser/saasgate/internal/app/store/users"
	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/auth"
	"github.com/dalemusser/saasgate/internal/app/system/authprovider"
	"github.com/dalemusser/saasgate/internal/app/system/loader"
	"github.com/dalemusser/saasgate/internal/app/system/ratelimit"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"go.uber.org/zap"
)

type fakeProvider struct {
	signIn  func(email, password string) (authprovider.Tokens, error)
	refresh func(rt string) (authprovider.Tokens, error)
	signUp  func(req authprovider.SignUpRequest) (authprovider.Account, error)
}

func (f *fakeProvider) SignIn(_ context.Context, email, password string) (authprovider.Tokens, error) {
	return f.signIn(email, password)
}

func (f *fakeProvider) Refresh(_ context.Context, rt string) (authprovider.Tokens, error) {
	return f.refresh(rt)
}

func (f *fakeProvider) SignUp(_ context.Context, req authprovider.SignUpRequest) (authprovider.Account, error) {
	return f.signUp(req)
}

type fakeProfiles struct {
	profiles map[string]*models.UserProfile
}

func (f *fakeProfiles) EnsureProfile(_ context.Context, id, email string) (*models.UserProfile, error) {
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	p := &models.UserProfile{ID: id, Email: email, IsActive: true, Timezone: models.DefaultTimezone}
	f.profiles[id] = p
	return p, nil
}

func (f *fakeProfiles) Update(_ context.Context, id string, upd userstore.ProfileUpdate) (*models.UserProfile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if upd.FirstName != nil {
		p.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		p.LastName = *upd.LastName
	}
	return p, nil
}

func goodProvider() *fakeProvider {
	return &fakeProvider{
		signIn: func(email, password string) (authprovider.Tokens, error) {
			if email == "ada@example.com" && password == "correct horse" {
				return authprovider.Tokens{AccessToken: "good", TokenType: "bearer", ExpiresIn: 3600, RefreshToken: "rt1"}, nil
			}
			return authprovider.Tokens{}, apperr.ErrUnauthorized
		},
		refresh: func(rt string) (authprovider.Tokens, error) {
			if rt == "rt1" {
				return authprovider.Tokens{AccessToken: "good", TokenType: "bearer", ExpiresIn: 3600, RefreshToken: "rt2"}, nil
			}
			return authprovider.Tokens{}, apperr.ErrUnauthorized
		},
		signUp: func(req authprovider.SignUpRequest) (authprovider.Account, error) {
			if req.Password != req.ConfirmPassword {
				return authprovider.Account{}, apperr.Invalid("confirm_password", "Passwords do not match.")
			}
			if req.Email == "taken@example.com" {
				return authprovider.Account{}, apperr.ErrConflict
			}
			return authprovider.Account{ID: "new-user", Email: req.Email}, nil
		},
	}
}

func snapshotLoader(active bool) loader.Loader {
	return loader.Func(func(_ context.Context, token string) (loader.Snapshot, error) {
		if token != "good" {
			return loader.Snapshot{}, apperr.ErrUnauthorized
		}
		if !active {
			return loader.Snapshot{}, apperr.ErrUnauthorized
		}
		return loader.Snapshot{
			Profile:     models.UserProfile{ID: "u1", Email: "ada@example.com", IsActive: true},
			Memberships: []models.Membership{},
		}, nil
	})
}

func newHandler(p authapi.Provider, l loader.Loader, lim *ratelimit.Limiter) (*authapi.Handler, *fakeProfiles) {
	profiles := &fakeProfiles{profiles: map[string]*models.UserProfile{}}
	logger := zap.NewNop()
	return authapi.NewHandler(p, l, profiles, lim, nil, uierrors.NewErrorLogger(logger), logger), profiles
}

func newRouter(h *authapi.Handler) http.Handler {
	return authapi.Routes(h, auth.NewBearerAuth(h.Loader, zap.NewNop()).Require)
}

func post(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	h, _ := newHandler(goodProvider(), snapshotLoader(true), nil)
	router := newRouter(h)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"success", `{"email":" Ada@Example.com ","password":"correct horse"}`, http.StatusOK},
		{"wrong password", `{"email":"ada@example.com","password":"nope"}`, http.StatusUnauthorized},
		{"missing password", `{"email":"ada@example.com"}`, http.StatusBadRequest},
		{"bad email", `{"email":"ada","password":"x"}`, http.StatusBadRequest},
		{"not json", `email=ada`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(router, "/login", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}
			var body struct {
				authprovider.Tokens
				User models.UserProfile `json:"user"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.AccessToken != "good" || body.RefreshToken != "rt1" || body.ExpiresIn != 3600 {
				t.Errorf("tokens = %+v", body.Tokens)
			}
			if body.User.ID != "u1" || body.User.Email != "ada@example.com" {
				t.Errorf("user = %+v", body.User)
			}
		})
	}
}

func TestLogin_DeactivatedProfile(t *testing.T) {
	h, _ := newHandler(goodProvider(), snapshotLoader(false), nil)
	rec := post(newRouter(h), "/login", `{"email":"ada@example.com","password":"correct horse"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestLogin_ProviderDown(t *testing.T) {
	p := goodProvider()
	p.signIn = func(string, string) (authprovider.Tokens, error) {
		return authprovider.Tokens{}, apperr.ErrNetwork
	}
	h, _ := newHandler(p, snapshotLoader(true), nil)
	rec := post(newRouter(h), "/login", `{"email":"ada@example.com","password":"x"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestLogin_RateLimited(t *testing.T) {
	h, _ := newHandler(goodProvider(), snapshotLoader(true), ratelimit.New(1, 2))
	router := newRouter(h)

	body := `{"email":"ada@example.com","password":"nope"}`
	for i := 0; i < 2; i++ {
		if rec := post(router, "/login", body); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i, rec.Code)
		}
	}
	rec := post(router, "/login", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After")
	}

	// refresh is not limited
	if rec := post(router, "/refresh", `{"refresh_token":"rt1"}`); rec.Code != http.StatusOK {
		t.Errorf("refresh status = %d, want 200", rec.Code)
	}
}

func TestRegister(t *testing.T) {
	h, profiles := newHandler(goodProvider(), snapshotLoader(true), nil)
	router := newRouter(h)

	rec := post(router, "/register", `{"email":"new@example.com","password":"longenough","confirm_password":"longenough","first_name":"  Grace ","last_name":"<b>Hopper</b>"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	p := profiles.profiles["new-user"]
	if p == nil {
		t.Fatal("profile not created")
	}
	if p.FirstName != "Grace" || p.LastName != "Hopper" {
		t.Errorf("name = %q %q", p.FirstName, p.LastName)
	}
}

func TestRegister_Rejections(t *testing.T) {
	h, profiles := newHandler(goodProvider(), snapshotLoader(true), nil)
	router := newRouter(h)

	tests := []struct {
		name   string
		body   string
		status int
		detail string
	}{
		{"confirm mismatch", `{"email":"a@example.com","password":"longenough","confirm_password":"different1"}`, http.StatusBadRequest, "Passwords do not match."},
		{"short password", `{"email":"a@example.com","password":"short","confirm_password":"short"}`, http.StatusBadRequest, "Password must be at least 8 characters."},
		{"email taken", `{"email":"taken@example.com","password":"longenough","confirm_password":"longenough"}`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(router, "/register", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.detail != "" && !strings.Contains(rec.Body.String(), tt.detail) {
				t.Errorf("body %q does not mention %q", rec.Body.String(), tt.detail)
			}
		})
	}
	if len(profiles.profiles) != 0 {
		t.Errorf("rejected registrations created %d profiles", len(profiles.profiles))
	}
}

func TestRefresh(t *testing.T) {
	h, _ := newHandler(goodProvider(), snapshotLoader(true), nil)
	router := newRouter(h)

	rec := post(router, "/refresh", `{"refresh_token":"rt1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"refresh_token":"rt2"`) {
		t.Errorf("body = %s", rec.Body.String())
	}

	if rec := post(router, "/refresh", `{"refresh_token":"stale"}`); rec.Code != http.StatusUnauthorized {
		t.Errorf("stale refresh status = %d, want 401", rec.Code)
	}
}

func TestMe(t *testing.T) {
	h, _ := newHandler(goodProvider(), snapshotLoader(true), nil)
	router := newRouter(h)

	req := httptest.NewRequest("GET", "/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		User        models.UserProfile  `json:"user"`
		Memberships []models.Membership `json:"memberships"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.User.ID != "u1" || body.Memberships == nil {
		t.Errorf("body = %+v", body)
	}
}
