// internal/app/features/onboarding/handler.go
package onboarding

import (
	"context"

	uierrors "github.com/dalemusser/saasgate/internal/app/features/errors"
	"github.com/dalemusser/saasgate/internal/app/system/auditlog"
	"github.com/dalemusser/saasgate/internal/app/system/auth"
	"github.com/dalemusser/saasgate/internal/app/system/formutil"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"go.uber.org/zap"
)

// Creator inserts an organization together with its owner membership.
type Creator interface {
	CreateOwned(ctx context.Context, org models.Organization, ownerID string) (models.Organization, error)
}

// Handler serves /onboarding, where a signed-in identity without an
// organization creates its first one.
type Handler struct {
	Gate     *auth.Gate
	Orgs     Creator
	AuditLog *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(gate *auth.Gate, orgs Creator, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Gate:     gate,
		Orgs:     orgs,
		AuditLog: audit,
		ErrLog:   errLog,
		Log:      logger,
	}
}

type onboardingData struct {
	formutil.Base
	Name   string
	Domain string
}
