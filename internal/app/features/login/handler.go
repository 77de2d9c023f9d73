// internal/app/features/login/handler.go
package login

import (
	"github.com/dalemusser/saasgate/internal/app/features/authapi"
	uierrors "github.com/dalemusser/saasgate/internal/app/features/errors"
	"github.com/dalemusser/saasgate/internal/app/system/auditlog"
	"github.com/dalemusser/saasgate/internal/app/system/auth"
	"github.com/dalemusser/saasgate/internal/app/system/formutil"
	"github.com/dalemusser/saasgate/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Handler serves the browser sign-in and registration forms at /auth.
type Handler struct {
	Gate     *auth.Gate
	Provider authapi.Provider
	Profiles authapi.Profiles
	Limiter  *ratelimit.Limiter
	AuditLog *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(
	gate *auth.Gate,
	provider authapi.Provider,
	profiles authapi.Profiles,
	limiter *ratelimit.Limiter,
	audit *auditlog.Logger,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Gate:     gate,
		Provider: provider,
		Profiles: profiles,
		Limiter:  limiter,
		AuditLog: audit,
		ErrLog:   errLog,
		Log:      logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type authFormData struct {
	formutil.Base
	Mode      string // "signin" or "register"
	Email     string
	FirstName string
	LastName  string
	ReturnURL string
}
