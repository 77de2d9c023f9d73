// Package apperr defines the error taxonomy shared by the loader, the guard
// and the HTTP features, and maps it onto HTTP responses.
package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized means the bearer token is missing, invalid or expired.
	// It always ends the session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the caller is authenticated but lacks the role.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means a referenced membership or organization is absent.
	ErrNotFound = errors.New("not found")

	// ErrNetwork means the backing store or identity provider is unreachable.
	// It is surfaced, never retried automatically.
	ErrNetwork = errors.New("backing service unavailable")

	// ErrConflict means a uniqueness rule would be violated.
	ErrConflict = errors.New("conflict")
)

// ValidationError reports malformed input. It never causes a state transition.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Invalid builds a ValidationError.
func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Status maps err onto an HTTP status code.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, ErrNetwork):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Detail returns the client-facing message for err. Internal errors are not
// echoed to the client.
func Detail(err error) string {
	switch Status(err) {
	case http.StatusInternalServerError:
		return "internal error"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return err.Error()
}

// errorBody is the JSON error shape returned by the API.
type errorBody struct {
	Detail string `json:"detail"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as {"detail": "..."} with its mapped status.
// Unauthorized responses carry a Bearer challenge.
func WriteError(w http.ResponseWriter, err error) {
	status := Status(err)
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	WriteJSON(w, status, errorBody{Detail: Detail(err)})
}

// WriteMessage writes {"detail": msg} with the given status.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	WriteJSON(w, status, errorBody{Detail: strings.TrimSpace(msg)})
}
