// internal/app/features/health/handler.go
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Handler holds dependencies needed for health checks.
type Handler struct {
	DB      Pinger
	Version string
	Log     *zap.Logger
	started time.Time
}

// NewHandler constructs a health Handler.
func NewHandler(db Pinger, version string, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Version: version, Log: logger, started: time.Now()}
}

type healthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version,omitempty"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
	Message  string `json:"message,omitempty"`
}

// Serve handles GET /api/health.
//
// On success: 200 and
//
//	{ "status":"healthy", "service":"saasgate", "database":"connected", ... }
//
// On DB failure: 503 with status "unhealthy". The driver error is logged,
// not returned.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{
		Status:   "healthy",
		Service:  "saasgate",
		Version:  h.Version,
		Database: "connected",
		Uptime:   time.Since(h.started).Round(time.Second).String(),
	}

	if err := h.DB.Ping(ctx); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		apperr.WriteJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, resp)
}
