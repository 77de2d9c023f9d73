// internal/app/features/authapi/handler.go
package authapi

import (
	"context"

	uierrors "github.com/dalemusser/saasgate/internal/app/features/errors"
	userstore "github.com/dalemusser/saasgate/internal/app/store/users"
	"github.com/dalemusser/saasgate/internal/app/system/auditlog"
	"github.com/dalemusser/saasgate/internal/app/system/authprovider"
	"github.com/dalemusser/saasgate/internal/app/system/loader"
	"github.com/dalemusser/saasgate/internal/app/system/ratelimit"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"go.uber.org/zap"
)

// Provider is the identity provider. *authprovider.Client satisfies it.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (authprovider.Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (authprovider.Tokens, error)
	SignUp(ctx context.Context, req authprovider.SignUpRequest) (authprovider.Account, error)
}

// Profiles creates and names profiles for new accounts. *userstore.Store
// satisfies it.
type Profiles interface {
	EnsureProfile(ctx context.Context, id, email string) (*models.UserProfile, error)
	Update(ctx context.Context, id string, upd userstore.ProfileUpdate) (*models.UserProfile, error)
}

// Handler serves /api/auth.
type Handler struct {
	Provider Provider
	Loader   loader.Loader
	Profiles Profiles
	Limiter  *ratelimit.Limiter
	Audit    *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(p Provider, l loader.Loader, profiles Profiles, lim *ratelimit.Limiter, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Provider: p,
		Loader:   l,
		Profiles: profiles,
		Limiter:  lim,
		Audit:    audit,
		ErrLog:   errLog,
		Log:      logger,
	}
}
