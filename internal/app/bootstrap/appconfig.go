// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (SAASGATE_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers ports, TLS, logging and request limits; everything specific to
// SaaSGate lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Browser session cookie
	SessionKey    string // signs and encrypts the cookie; at least 32 bytes
	SessionName   string
	SessionDomain string // blank means current host
	SessionMaxAge time.Duration

	// Session guards
	GuardStaleAfter time.Duration // reload a guard's snapshot after this long
	GuardIdle       time.Duration // drop guards unused for this long

	// Bearer tokens issued by the identity provider
	JWTSecret   string
	JWTAudience string

	// Identity provider
	AuthProviderURL string
	AuthProviderKey string

	// APIBaseURL, when set, makes the browser tier load snapshots from a
	// remote /api/auth/me instead of the local stores.
	APIBaseURL string

	// Sign-in and registration rate limit, per client IP
	AuthRateLimit int // requests per minute
	AuthRateBurst int

	// Audit logging destinations: all, db, log or off
	AuditLogAuth  string
	AuditLogAdmin string

	// Allowed origins for the JSON API
	CORSOrigins []string

	// Store timeouts
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
