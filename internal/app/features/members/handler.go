// internal/app/features/members/handler.go
package members

import (
	"context"

	uierrors "github.com/dalemusser/saasgate/internal/app/features/errors"
	membershipstore "github.com/dalemusser/saasgate/internal/app/store/memberships"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Lister returns the active members of an organization with their profiles.
type Lister interface {
	ListForOrg(ctx context.Context, orgID string) ([]models.MemberRow, error)
}

// Handler serves the browser members page for the current organization.
type Handler struct {
	Members Lister
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Members: membershipstore.New(db),
		ErrLog:  errLog,
		Log:     logger,
	}
}
