// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"

	uierrors "github.com/dalemusser/saasgate/internal/app/features/errors"
	membershipstore "github.com/dalemusser/saasgate/internal/app/store/memberships"
	organizationstore "github.com/dalemusser/saasgate/internal/app/store/organizations"
	userstore "github.com/dalemusser/saasgate/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Counter counts every document of a collection.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// MemberCounter counts the active members of one organization.
type MemberCounter interface {
	CountActiveByOrg(ctx context.Context, orgID string) (int64, error)
}

// Handler serves the dashboard page and GET /api/dashboard/stats.
type Handler struct {
	Orgs    Counter
	Users   Counter
	Members MemberCounter
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

// NewHandler builds a Handler over db's stores.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Orgs:    organizationstore.New(db),
		Users:   userstore.New(db),
		Members: membershipstore.New(db),
		ErrLog:  errLog,
		Log:     logger,
	}
}
