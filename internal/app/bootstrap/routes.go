// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"crypto/sha256"
	"net/http"
	"sync"
	"time"

	auditlogfeature "github.com/dalemusser/saasgate/internal/app/features/auditlog"
	authapifeature "github.com/dalemusser/saasgate/internal/app/features/authapi"
	dashboardfeature "github.com/dalemusser/saasgate/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/saasgate/internal/app/features/errors"
	healthfeature "github.com/dalemusser/saasgate/internal/app/features/health"
	loginfeature "github.com/dalemusser/saasgate/internal/app/features/login"
	logoutfeature "github.com/dalemusser/saasgate/internal/app/features/logout"
	membersfeature "github.com/dalemusser/saasgate/internal/app/features/members"
	onboardingfeature "github.com/dalemusser/saasgate/internal/app/features/onboarding"
	organizationsfeature "github.com/dalemusser/saasgate/internal/app/features/organizations"
	orgswitchfeature "github.com/dalemusser/saasgate/internal/app/features/orgswitch"
	plansfeature "github.com/dalemusser/saasgate/internal/app/features/plans"
	profilefeature "github.com/dalemusser/saasgate/internal/app/features/profile"
	whatsappfeature "github.com/dalemusser/saasgate/internal/app/features/whatsapp"
	"github.com/dalemusser/saasgate/internal/app/store/audit"
	membershipstore "github.com/dalemusser/saasgate/internal/app/store/memberships"
	sessionstore "github.com/dalemusser/saasgate/internal/app/store/sessions"
	userstore "github.com/dalemusser/saasgate/internal/app/store/users"
	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/auditlog"
	"github.com/dalemusser/saasgate/internal/app/system/auth"
	"github.com/dalemusser/saasgate/internal/app/system/authprovider"
	"github.com/dalemusser/saasgate/internal/app/system/authtoken"
	"github.com/dalemusser/saasgate/internal/app/system/guard"
	"github.com/dalemusser/saasgate/internal/app/system/loader"
	"github.com/dalemusser/saasgate/internal/app/system/ratelimit"
	"github.com/dalemusser/saasgate/internal/app/system/roles"
	"github.com/dalemusser/saasgate/internal/app/system/timeouts"
	"github.com/dalemusser/saasgate/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Version is reported by /api/health. Release builds set it with
// -ldflags "-X github.com/dalemusser/saasgate/internal/app/bootstrap.Version=...".
var Version = "dev"

var (
	workersMu sync.Mutex
	running   []interface{ Stop() }
)

func startWorker(w interface {
	Start()
	Stop()
}) {
	workersMu.Lock()
	defer workersMu.Unlock()
	w.Start()
	running = append(running, w)
}

func stopWorkers() {
	workersMu.Lock()
	defer workersMu.Unlock()
	for _, w := range running {
		w.Stop()
	}
	running = nil
}

// BuildHandler constructs the root HTTP handler.
//
// Two tiers share one router:
//   - /api/* is the JSON API. Callers authenticate with a bearer token;
//     CORS applies, CSRF does not.
//   - everything else is the browser tier. A cookie session holds the
//     provider tokens and a per-session guard tracks the loaded identity;
//     state-changing forms are CSRF protected.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	db := deps.MongoDatabase

	// Template engine; dev mode reloads templates from disk.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	auditLogger := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
	limiter := ratelimit.New(appCfg.AuthRateLimit, appCfg.AuthRateBurst)

	users := userstore.New(db)
	memberships := membershipstore.New(db)
	provider := authprovider.New(appCfg.AuthProviderURL, appCfg.AuthProviderKey, nil, logger)

	// The API tier always reads the local stores. The browser tier does too,
	// unless it is configured to load through a remote API.
	var apiLoader loader.Loader
	if appCfg.JWTSecret != "" {
		verifier := authtoken.NewVerifier(appCfg.JWTSecret, appCfg.JWTAudience)
		apiLoader = loader.NewStoreLoader(verifier, users, memberships, logger)
	}
	webLoader := apiLoader
	if appCfg.APIBaseURL != "" {
		webLoader = loader.NewHTTPLoader(appCfg.APIBaseURL, nil, logger)
		logger.Info("browser sessions load through remote API", zap.String("api_base_url", appCfg.APIBaseURL))
	}

	sessions, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	registry := guard.NewRegistry(webLoader, logger, appCfg.GuardIdle)
	gate := auth.NewGate(sessions, registry, provider, auditLogger, appCfg.GuardStaleAfter, logger)
	gate.Records = sessionstore.New(db)
	startWorker(workers.NewGuardSweep(registry, logger, time.Minute))

	orgHandler := organizationsfeature.NewHandler(db, auditLogger, errLog, logger)
	dashHandler := dashboardfeature.NewHandler(db, errLog, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// ── JSON API ─────────────────────────────────────────────────────────
	plansHandler, err := plansfeature.NewHandler(logger)
	if err != nil {
		return nil, err
	}
	healthHandler := healthfeature.NewHandler(healthfeature.PingFunc(func(ctx context.Context) error {
		return deps.MongoClient.Ping(ctx, readpref.Primary())
	}), Version, logger)

	r.Route("/api", func(api chi.Router) {
		api.Use(corsMiddleware(appCfg.CORSOrigins, logger))
		api.NotFound(func(w http.ResponseWriter, r *http.Request) {
			apperr.WriteMessage(w, http.StatusNotFound, "Not found")
		})

		api.Mount("/health", healthfeature.Routes(healthHandler))
		api.Mount("/plans", plansfeature.Routes(plansHandler))

		if apiLoader == nil {
			logger.Warn("jwt_secret not set; API routes other than health and plans are disabled")
			return
		}
		bearer := auth.NewBearerAuth(apiLoader, logger)

		authHandler := authapifeature.NewHandler(provider, apiLoader, users, limiter, auditLogger, errLog, logger)
		api.Mount("/auth", authapifeature.Routes(authHandler, bearer.Require))

		api.Group(func(pr chi.Router) {
			pr.Use(bearer.Require)
			pr.Mount("/profile", profilefeature.Routes(profilefeature.NewHandler(users, auditLogger, errLog, logger)))
			pr.Mount("/organizations", organizationsfeature.Routes(orgHandler))
			pr.Mount("/dashboard", dashboardfeature.APIRoutes(dashHandler))
			pr.Mount("/whatsapp", whatsappfeature.Routes(whatsappfeature.NewHandler(logger)))
		})
	})

	// ── Browser tier ─────────────────────────────────────────────────────
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	errorsHandler := errorsfeature.NewHandler()
	r.Group(func(web chi.Router) {
		web.Use(csrfMiddleware(appCfg.SessionKey, secure, errorsHandler))
		web.Use(gate.LoadSession)

		web.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		})
		web.Get("/unauthorized", errorsHandler.Unauthorized)

		loginHandler := loginfeature.NewHandler(gate, provider, users, limiter, auditLogger, errLog, logger)
		web.Mount("/auth", loginfeature.Routes(loginHandler))
		web.Mount("/logout", logoutfeature.Routes(logoutfeature.NewHandler(gate, auditLogger, logger)))

		web.With(gate.Require(guard.Destination{Path: "/onboarding"})).
			Mount("/onboarding", onboardingfeature.Routes(onboardingfeature.NewHandler(gate, orgHandler, auditLogger, errLog, logger)))

		web.With(gate.Require(guard.Destination{Path: "/organization/current"})).
			Mount("/organization/current", orgswitchfeature.Routes(orgswitchfeature.NewHandler(gate, auditLogger, logger)))

		web.With(gate.Require(guard.Destination{Path: "/dashboard", RequireOrg: true})).
			Mount("/dashboard", dashboardfeature.Routes(dashHandler))

		web.With(gate.Require(guard.Destination{Path: "/members", MinRole: roles.OrganizationAdmin})).
			Mount("/members", membersfeature.Routes(membersfeature.NewHandler(db, errLog, logger)))
		web.With(gate.Require(guard.Destination{Path: "/audit", MinRole: roles.OrganizationAdmin})).
			Mount("/audit", auditlogfeature.Routes(auditlogfeature.NewHandler(db, errLog, logger)))
	})
	r.NotFound(errorsHandler.NotFound)

	logger.Info("handler built",
		zap.Bool("secure_cookies", secure),
		zap.Duration("store_timeout", timeouts.Short()),
		zap.Int("cors_origins", len(appCfg.CORSOrigins)))
	return r, nil
}

// corsMiddleware allows the configured origins to call the API with a
// bearer token. With no origins it is a pass-through.
func corsMiddleware(origins []string, logger *zap.Logger) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", auth.MembershipHeader},
		MaxAge:         600,
	})
	logger.Info("CORS enabled for API", zap.Strings("origins", origins))
	return c.Handler
}

// csrfMiddleware protects browser forms. The token key is derived from the
// session key. Plain-HTTP deployments (dev) must say so, or the origin
// check expects https.
func csrfMiddleware(sessionKey string, secure bool, errs *errorsfeature.Handler) func(http.Handler) http.Handler {
	key := sha256.Sum256([]byte("csrf:" + sessionKey))
	protect := csrf.Protect(key[:],
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(errs.Forbidden)),
	)
	return func(next http.Handler) http.Handler {
		h := protect(next)
		if secure {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}
