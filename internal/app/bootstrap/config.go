// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/saasgate/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// devSessionKey is the development default; ValidateConfig rejects it in
// production.
const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for SaaSGate.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: SAASGATE_MONGO_URI, SAASGATE_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "saasgate", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (at least 32 bytes; must be strong in production)"},
	{Name: "session_name", Default: "saasgate-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "168h", Desc: "Session cookie lifetime"},
	{Name: "guard_stale_after", Default: "5m", Desc: "Reload a session's profile and memberships after this long"},
	{Name: "guard_idle", Default: "1h", Desc: "Drop in-memory session state unused for this long"},

	{Name: "jwt_secret", Default: "", Desc: "HS256 secret the identity provider signs access tokens with"},
	{Name: "jwt_audience", Default: "authenticated", Desc: "Required access token audience"},
	{Name: "auth_provider_url", Default: "", Desc: "Identity provider base URL"},
	{Name: "auth_provider_key", Default: "", Desc: "Identity provider API key"},
	{Name: "api_base_url", Default: "", Desc: "Load browser sessions from this API instead of the local stores"},

	{Name: "auth_rate_limit", Default: 10, Desc: "Sign-in/register attempts per minute per client IP"},
	{Name: "auth_rate_burst", Default: 5, Desc: "Sign-in/register burst per client IP"},

	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "cors_origins", Default: "", Desc: "Comma-separated origins allowed to call /api (blank disables CORS)"},

	{Name: "timeout_ping", Default: "2s", Desc: "Timeout for health check pings"},
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document reads and writes"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for multi-document operations and provider calls"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for schema setup and bulk work"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, SAASGATE_* for app) and flags,
// merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SAASGATE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:      appValues.String("session_key"),
		SessionName:     appValues.String("session_name"),
		SessionDomain:   appValues.String("session_domain"),
		SessionMaxAge:   appValues.Duration("session_max_age", 7*24*time.Hour),
		GuardStaleAfter: appValues.Duration("guard_stale_after", 5*time.Minute),
		GuardIdle:       appValues.Duration("guard_idle", time.Hour),

		JWTSecret:       appValues.String("jwt_secret"),
		JWTAudience:     appValues.String("jwt_audience"),
		AuthProviderURL: strings.TrimRight(appValues.String("auth_provider_url"), "/"),
		AuthProviderKey: appValues.String("auth_provider_key"),
		APIBaseURL:      strings.TrimRight(appValues.String("api_base_url"), "/"),

		AuthRateLimit: appValues.Int("auth_rate_limit"),
		AuthRateBurst: appValues.Int("auth_rate_burst"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		CORSOrigins: splitList(appValues.String("cors_origins")),

		TimeoutPing:   appValues.Duration("timeout_ping", 0),
		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),
	}
	return coreCfg, appCfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation. Every problem is
// reported, not just the first.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	var errs []error

	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		errs = append(errs, fmt.Errorf("invalid MongoDB URI: %w", err))
	}
	if len(appCfg.SessionKey) < 32 {
		errs = append(errs, errors.New("session_key must be at least 32 bytes"))
	}
	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.SessionKey == devSessionKey {
		errs = append(errs, errors.New("session_key must be changed from the development default in production"))
	}
	if appCfg.JWTSecret == "" && appCfg.APIBaseURL == "" {
		errs = append(errs, errors.New("jwt_secret is required unless api_base_url is set"))
	}
	if err := checkURL("auth_provider_url", appCfg.AuthProviderURL, true); err != nil {
		errs = append(errs, err)
	}
	if err := checkURL("api_base_url", appCfg.APIBaseURL, false); err != nil {
		errs = append(errs, err)
	}
	if appCfg.AuthRateLimit < 1 {
		errs = append(errs, errors.New("auth_rate_limit must be at least 1"))
	}
	if !auditlog.ValidMode(appCfg.AuditLogAuth) {
		errs = append(errs, fmt.Errorf("audit_log_auth %q must be all, db, log or off", appCfg.AuditLogAuth))
	}
	if !auditlog.ValidMode(appCfg.AuditLogAdmin) {
		errs = append(errs, fmt.Errorf("audit_log_admin %q must be all, db, log or off", appCfg.AuditLogAdmin))
	}

	if err := errors.Join(errs...); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return err
	}
	return nil
}

func checkURL(key, raw string, required bool) error {
	if raw == "" {
		if required {
			return fmt.Errorf("%s is required", key)
		}
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s %q must be an http(s) URL", key, raw)
	}
	return nil
}
