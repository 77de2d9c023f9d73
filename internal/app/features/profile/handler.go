// internal/app/features/profile/handler.go
package profile

import (
	"context"

	uierrors "github.com/dalemusser/saasgate/internal/app/features/errors"
	userstore "github.com/dalemusser/saasgate/internal/app/store/users"
	"github.com/dalemusser/saasgate/internal/app/system/auditlog"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"go.uber.org/zap"
)

// Store updates profiles. *userstore.Store satisfies it.
type Store interface {
	Update(ctx context.Context, id string, upd userstore.ProfileUpdate) (*models.UserProfile, error)
}

// Handler owns the self-service profile endpoint.
type Handler struct {
	Profiles Store
	Audit    *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

// NewHandler constructs a Handler.
func NewHandler(profiles Store, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Profiles: profiles,
		Audit:    audit,
		ErrLog:   errLog,
		Log:      logger,
	}
}
