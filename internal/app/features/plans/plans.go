// internal/app/features/plans/plans.go

// Package plans serves the static subscription catalogue.
package plans

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

//go:embed plans.yaml
var catalogue []byte

type planEntry struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Price    int      `yaml:"price"`
	Features []string `yaml:"features"`
}

// Parse decodes a catalogue. Every entry must name a known tier exactly
// once.
func Parse(data []byte) ([]models.Plan, error) {
	var entries []planEntry
	if err := yaml.UnmarshalStrict(data, &entries); err != nil {
		return nil, fmt.Errorf("parse plans: %w", err)
	}
	seen := make(map[models.SubscriptionTier]bool, len(entries))
	out := make([]models.Plan, 0, len(entries))
	for _, e := range entries {
		tier := models.SubscriptionTier(e.ID)
		if !models.ValidTier(tier) {
			return nil, fmt.Errorf("parse plans: unknown tier %q", e.ID)
		}
		if seen[tier] {
			return nil, fmt.Errorf("parse plans: duplicate tier %q", e.ID)
		}
		seen[tier] = true
		features := e.Features
		if features == nil {
			features = []string{}
		}
		out = append(out, models.Plan{ID: tier, Name: e.Name, Price: e.Price, Features: features})
	}
	return out, nil
}

// Handler serves GET /api/plans.
type Handler struct {
	plans []models.Plan
	Log   *zap.Logger
}

// NewHandler parses the embedded catalogue.
func NewHandler(logger *zap.Logger) (*Handler, error) {
	p, err := Parse(catalogue)
	if err != nil {
		return nil, err
	}
	logger.Debug("plans loaded", zap.Int("count", len(p)))
	return &Handler{plans: p, Log: logger}, nil
}

// ServeList returns the catalogue. It needs no authentication.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	apperr.WriteJSON(w, http.StatusOK, h.plans)
}

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	return r
}
