package bootstrap

import (
	"strings"
	"testing"

	"github.com/dalemusser/saasgate/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "saasgate_test",
		SessionKey:      "a-strong-session-key-of-at-least-32-bytes",
		JWTSecret:       "secret",
		JWTAudience:     "authenticated",
		AuthProviderURL: "https://id.example.com",
		AuthRateLimit:   10,
		AuthRateBurst:   5,
		AuditLogAuth:    "all",
		AuditLogAdmin:   "db",
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid", "dev", func(*AppConfig) {}, ""},
		{"remote loader without jwt secret", "dev", func(c *AppConfig) {
			c.JWTSecret = ""
			c.APIBaseURL = "https://api.example.com"
		}, ""},
		{"bad mongo uri", "dev", func(c *AppConfig) { c.MongoURI = "postgres://x" }, "MongoDB URI"},
		{"short session key", "dev", func(c *AppConfig) { c.SessionKey = "short" }, "session_key must be at least 32 bytes"},
		{"dev key in prod", "prod", func(c *AppConfig) { c.SessionKey = devSessionKey }, "development default"},
		{"no jwt secret", "dev", func(c *AppConfig) { c.JWTSecret = "" }, "jwt_secret is required"},
		{"no provider", "dev", func(c *AppConfig) { c.AuthProviderURL = "" }, "auth_provider_url is required"},
		{"provider not http", "dev", func(c *AppConfig) { c.AuthProviderURL = "ftp://id.example.com" }, "must be an http(s) URL"},
		{"bad api base", "dev", func(c *AppConfig) { c.APIBaseURL = "not a url" }, "api_base_url"},
		{"zero rate", "dev", func(c *AppConfig) { c.AuthRateLimit = 0 }, "auth_rate_limit"},
		{"bad audit mode", "dev", func(c *AppConfig) { c.AuditLogAuth = "everything" }, "audit_log_auth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{Env: tt.env}, cfg, zap.NewNop())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfig_ReportsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.SessionKey = "short"
	cfg.AuthProviderURL = ""
	err := ValidateConfig(&config.CoreConfig{Env: "dev"}, cfg, zap.NewNop())
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, want := range []string{"session_key", "auth_provider_url"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" https://a.example.com, ,https://b.example.com ")
	if len(got) != 2 || got[0] != "https://a.example.com" || got[1] != "https://b.example.com" {
		t.Errorf("splitList = %q", got)
	}
	if splitList("") != nil {
		t.Error("empty input should give nil")
	}
}

func TestEnsureSchema(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	for i := 0; i < 2; i++ {
		if err := EnsureSchema(ctx, nil, AppConfig{}, deps, zap.NewNop()); err != nil {
			t.Fatalf("EnsureSchema run %d: %v", i+1, err)
		}
	}
}

func TestHooks_AllStagesSet(t *testing.T) {
	if Hooks.Name != "saasgate" {
		t.Errorf("Name = %q, want saasgate", Hooks.Name)
	}
	if Hooks.LoadConfig == nil || Hooks.ValidateConfig == nil || Hooks.ConnectDB == nil ||
		Hooks.EnsureSchema == nil || Hooks.Startup == nil || Hooks.BuildHandler == nil || Hooks.Shutdown == nil {
		t.Error("every lifecycle stage should be wired")
	}
}
