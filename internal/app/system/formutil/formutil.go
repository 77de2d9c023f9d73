// Package formutil provides helpers for reading request bodies and for
// re-rendering forms with validation errors.
//
// When a form submission fails validation, the form should be re-rendered
// with the user's previously entered values and an error message. Embed
// Base in the form's view model and populate it with SetBase and SetError.
package formutil

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"

	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/inputval"
	"github.com/dalemusser/saasgate/internal/app/system/viewdata"
)

// MaxBodyBytes bounds JSON request bodies.
const MaxBodyBytes = 1 << 20

// Base contains common fields for form pages.
type Base struct {
	viewdata.BaseVM
	Error template.HTML
}

// SetBase populates the common Base fields from the request.
func SetBase(b *Base, r *http.Request, title, backDefault string) {
	b.BaseVM = viewdata.NewBaseVM(r, title, backDefault)
}

// SetError sets the form error from err. Internal errors are not echoed.
func SetError(b *Base, err error) {
	b.Error = template.HTML(template.HTMLEscapeString(apperr.Detail(err)))
}

// DecodeJSON reads a JSON body into v and validates it with inputval.
// Malformed bodies and validation failures are returned as
// apperr.ValidationError.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.Invalid("", "Request body is required.")
		case errors.As(err, &maxErr):
			return apperr.Invalid("", "Request body is too large.")
		default:
			return apperr.Invalid("", "Request body is not valid JSON.")
		}
	}
	if res := inputval.Validate(v); res.HasErrors() {
		return apperr.Invalid(res.Errors[0].Field, res.Errors[0].Message)
	}
	return nil
}
