package apperr_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/saasgate/internal/app/system/apperr"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"unauthorized", fmt.Errorf("load: %w", apperr.ErrUnauthorized), http.StatusUnauthorized},
		{"forbidden", apperr.ErrForbidden, http.StatusForbidden},
		{"not found", fmt.Errorf("membership m1: %w", apperr.ErrNotFound), http.StatusNotFound},
		{"validation", apperr.Invalid("password", "passwords do not match"), http.StatusBadRequest},
		{"conflict", apperr.ErrConflict, http.StatusBadRequest},
		{"network", fmt.Errorf("dial: %w", apperr.ErrNetwork), http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apperr.Status(tt.err); got != tt.want {
				t.Errorf("Status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWriteError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	apperr.WriteError(rec, errors.New("mongo: connection refused on 10.0.0.5"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Detail != "internal error" {
		t.Errorf("detail = %q, want %q", body.Detail, "internal error")
	}
}

func TestWriteError_UnauthorizedChallenge(t *testing.T) {
	rec := httptest.NewRecorder()
	apperr.WriteError(rec, apperr.ErrUnauthorized)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("WWW-Authenticate"); got != "Bearer" {
		t.Errorf("WWW-Authenticate = %q, want Bearer", got)
	}
}

func TestValidationError_Message(t *testing.T) {
	err := fmt.Errorf("register: %w", apperr.Invalid("confirm_password", "passwords do not match"))
	if !apperr.IsValidation(err) {
		t.Fatal("expected IsValidation to see through wrapping")
	}
	if got := apperr.Detail(err); got != "confirm_password: passwords do not match" {
		t.Errorf("Detail = %q", got)
	}
}
