// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net"
	"net/http"

	"github.com/dalemusser/saasgate/internal/app/store/audit"
	"github.com/dalemusser/saasgate/internal/app/system/roles"
	"go.uber.org/zap"
)

// Destinations for a category of audit events.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off"
)

// ValidMode reports whether m is one of the destination settings.
func ValidMode(m string) bool {
	switch m {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// Config holds audit logging configuration.
type Config struct {
	Auth  string // sign-in, sign-out, organization switches, denials
	Admin string // organization and membership changes
}

// Sink persists audit events. *audit.Store satisfies it.
type Sink interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger writes audit events to a Sink and to zap according to Config.
type Logger struct {
	store  Sink
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store Sink, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

// clientIP returns the host part of RemoteAddr. The router's RealIP
// middleware has already applied proxy headers.
func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.OrganizationID != "" {
		fields = append(fields, zap.String("organization_id", event.OrganizationID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the setting for its category. A nil
// Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = ModeAll
	}

	if setting == ModeOff {
		return
	}
	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}
	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func (l *Logger) auth(ctx context.Context, r *http.Request, eventType string, success bool, e audit.Event) {
	e.Category = audit.CategoryAuth
	e.EventType = eventType
	e.Success = success
	e.IP = clientIP(r)
	if r != nil {
		e.UserAgent = r.UserAgent()
	}
	l.Log(ctx, e)
}

func (l *Logger) admin(ctx context.Context, r *http.Request, eventType string, e audit.Event) {
	e.Category = audit.CategoryAdmin
	e.EventType = eventType
	e.Success = true
	e.IP = clientIP(r)
	if r != nil {
		e.UserAgent = r.UserAgent()
	}
	l.Log(ctx, e)
}

// --- Authentication Events ---

// LoginSuccess logs a successful password sign-in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID, email string) {
	l.auth(ctx, r, audit.EventLoginSuccess, true, audit.Event{
		UserID:  userID,
		Details: map[string]string{"email": email},
	})
}

// LoginFailed logs a rejected sign-in attempt.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, email, reason string) {
	l.auth(ctx, r, audit.EventLoginFailed, false, audit.Event{
		FailureReason: reason,
		Details:       map[string]string{"email": email},
	})
}

// LoginRateLimited logs a sign-in or sign-up refused by the rate limiter.
func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request) {
	l.auth(ctx, r, audit.EventLoginRateLimited, false, audit.Event{
		FailureReason: "rate limit exceeded",
	})
}

// Registered logs a new sign-up.
func (l *Logger) Registered(ctx context.Context, r *http.Request, email string) {
	l.auth(ctx, r, audit.EventRegistered, true, audit.Event{
		Details: map[string]string{"email": email},
	})
}

// TokenRefreshed logs a refresh-token exchange.
func (l *Logger) TokenRefreshed(ctx context.Context, r *http.Request, userID string) {
	l.auth(ctx, r, audit.EventTokenRefreshed, true, audit.Event{UserID: userID})
}

// Logout logs a sign-out.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID string) {
	l.auth(ctx, r, audit.EventLogout, true, audit.Event{UserID: userID})
}

// OrganizationSwitched logs a change of current organization.
func (l *Logger) OrganizationSwitched(ctx context.Context, r *http.Request, userID, orgID string) {
	l.auth(ctx, r, audit.EventOrganizationSwitch, true, audit.Event{
		UserID:         userID,
		OrganizationID: orgID,
	})
}

// AccessDenied logs a request refused for insufficient role.
func (l *Logger) AccessDenied(ctx context.Context, r *http.Request, userID, orgID string, required roles.Role) {
	path := ""
	if r != nil {
		path = r.URL.Path
	}
	l.auth(ctx, r, audit.EventAccessDenied, false, audit.Event{
		UserID:         userID,
		OrganizationID: orgID,
		FailureReason:  "insufficient role",
		Details:        map[string]string{"path": path, "required_role": string(required)},
	})
}

// --- Admin Events ---

// OrgCreated logs creation of an organization.
func (l *Logger) OrgCreated(ctx context.Context, r *http.Request, actorID, orgID, name string) {
	l.admin(ctx, r, audit.EventOrgCreated, audit.Event{
		ActorID:        actorID,
		OrganizationID: orgID,
		Details:        map[string]string{"name": name},
	})
}

// OrgUpdated logs an organization edit; fields names what changed.
func (l *Logger) OrgUpdated(ctx context.Context, r *http.Request, actorID, orgID string, fields []string) {
	details := make(map[string]string, len(fields))
	for _, f := range fields {
		details[f] = "changed"
	}
	l.admin(ctx, r, audit.EventOrgUpdated, audit.Event{
		ActorID:        actorID,
		OrganizationID: orgID,
		Details:        details,
	})
}

// OrgDeactivated logs soft-deactivation of an organization.
func (l *Logger) OrgDeactivated(ctx context.Context, r *http.Request, actorID, orgID string) {
	l.admin(ctx, r, audit.EventOrgDeactivated, audit.Event{
		ActorID:        actorID,
		OrganizationID: orgID,
	})
}

// MemberInvited logs a membership granted by invitation.
func (l *Logger) MemberInvited(ctx context.Context, r *http.Request, actorID, orgID, userID string, role roles.Role) {
	l.admin(ctx, r, audit.EventMemberInvited, audit.Event{
		ActorID:        actorID,
		OrganizationID: orgID,
		UserID:         userID,
		Details:        map[string]string{"role": string(role)},
	})
}

// MemberRemoved logs a membership deactivation.
func (l *Logger) MemberRemoved(ctx context.Context, r *http.Request, actorID, orgID, userID string) {
	l.admin(ctx, r, audit.EventMemberRemoved, audit.Event{
		ActorID:        actorID,
		OrganizationID: orgID,
		UserID:         userID,
	})
}

// ProfileUpdated logs an identity editing its own profile.
func (l *Logger) ProfileUpdated(ctx context.Context, r *http.Request, userID string) {
	l.admin(ctx, r, audit.EventProfileUpdated, audit.Event{
		ActorID: userID,
		UserID:  userID,
	})
}
