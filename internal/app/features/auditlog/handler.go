// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"

	uierrors "github.com/dalemusser/saasgate/internal/app/features/errors"
	"github.com/dalemusser/saasgate/internal/app/store/audit"
	userstore "github.com/dalemusser/saasgate/internal/app/store/users"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EventSource reads audit events.
type EventSource interface {
	Query(ctx context.Context, f audit.QueryFilter) ([]audit.Event, error)
	CountByFilter(ctx context.Context, f audit.QueryFilter) (int64, error)
}

// ProfileSource resolves identity ids to display names.
type ProfileSource interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]models.UserProfile, error)
}

// Handler serves the audit log page of the current organization.
type Handler struct {
	Events   EventSource
	Profiles ProfileSource
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

// NewHandler constructs an audit log handler bound to the given database.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Events:   audit.New(db),
		Profiles: userstore.New(db),
		ErrLog:   errLog,
		Log:      logger,
	}
}
