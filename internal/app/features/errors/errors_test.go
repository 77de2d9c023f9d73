package errors_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/dalemusser/saasgate/internal/app/features/errors"
	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorLogger_JSON(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	el := uierrors.NewErrorLogger(zap.New(core))

	tests := []struct {
		name   string
		err    error
		status int
		level  string
	}{
		{"not found", apperr.ErrNotFound, http.StatusNotFound, "debug"},
		{"validation", apperr.Invalid("name", "Name is required."), http.StatusBadRequest, "debug"},
		{"network", apperr.ErrNetwork, http.StatusServiceUnavailable, "error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/api/organizations", nil)
			el.JSON(rec, req, "request failed", tc.err)

			if rec.Code != tc.status {
				t.Errorf("status = %d, want %d", rec.Code, tc.status)
			}
			entries := logs.TakeAll()
			if len(entries) != 1 || entries[0].Level.String() != tc.level {
				t.Errorf("log entries = %+v, want one %s entry", entries, tc.level)
			}
		})
	}
}
