// internal/app/features/organizations/helpers.go
package organizations

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/htmlsanitize"
	"github.com/dalemusser/saasgate/internal/app/system/normalize"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func orgID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}

func nowPtr() *time.Time {
	t := time.Now().UTC()
	return &t
}

// cleanName sanitizes an organization name; a name that is empty after
// sanitizing is rejected.
func cleanName(s string) (string, error) {
	name := htmlsanitize.PlainText(normalize.Name(s))
	if name == "" {
		return "", apperr.Invalid("name", "Name is required.")
	}
	return name, nil
}

func cleanSettings(m map[string]string) (map[string]string, error) {
	if len(m) > maxSettings {
		return nil, apperr.Invalid("settings", "Too many settings.")
	}
	return htmlsanitize.PlainMap(m), nil
}

func newOrganization(req createRequest) (models.Organization, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return models.Organization{}, err
	}
	settings, err := cleanSettings(req.Settings)
	if err != nil {
		return models.Organization{}, err
	}
	org := models.Organization{
		Name:             name,
		SubscriptionTier: models.TierFree,
		MaxUsers:         models.DefaultMaxUsers,
		Settings:         settings,
	}
	if d := normalize.Domain(req.Domain); d != "" {
		org.Domain = &d
	}
	return org, nil
}

// Draft builds an unsaved organization from a browser form.
func Draft(name, domain string) (models.Organization, error) {
	return newOrganization(createRequest{Name: name, Domain: domain})
}
