// internal/app/features/organizations/handler.go
package organizations

import (
	uierrors "github.com/dalemusser/saasgate/internal/app/features/errors"
	"github.com/dalemusser/saasgate/internal/app/store/audit"
	membershipstore "github.com/dalemusser/saasgate/internal/app/store/memberships"
	organizationstore "github.com/dalemusser/saasgate/internal/app/store/organizations"
	userstore "github.com/dalemusser/saasgate/internal/app/store/users"
	"github.com/dalemusser/saasgate/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for the organizations API.
type Handler struct {
	DB      *mongo.Database
	Orgs    *organizationstore.Store
	Members *membershipstore.Store
	Users   *userstore.Store
	Events  *audit.Store
	Audit   *auditlog.Logger
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

// NewHandler constructs a Handler bound to db.
func NewHandler(db *mongo.Database, auditLog *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Orgs:    organizationstore.New(db),
		Members: membershipstore.New(db),
		Users:   userstore.New(db),
		Events:  audit.New(db),
		Audit:   auditLog,
		ErrLog:  errLog,
		Log:     logger,
	}
}
