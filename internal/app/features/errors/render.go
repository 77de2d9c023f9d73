// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ErrorLogger logs handler failures and writes the matching response.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger creates an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// log records err at a level matching its status. Client errors are not
// logged above debug.
func (e *ErrorLogger) log(r *http.Request, msg string, err error) int {
	status := apperr.Status(err)
	fields := []zap.Field{
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
	}
	switch {
	case status >= http.StatusInternalServerError:
		e.Log.Error(msg, fields...)
	default:
		e.Log.Debug(msg, fields...)
	}
	return status
}

// JSON logs err and writes it as {"detail": "..."}.
func (e *ErrorLogger) JSON(w http.ResponseWriter, r *http.Request, msg string, err error) {
	e.log(r, msg, err)
	apperr.WriteError(w, err)
}

// HTML logs err and renders the generic error page.
func (e *ErrorLogger) HTML(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := e.log(r, msg, err)
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Something went wrong", "/"),
		Message: apperr.Detail(err),
		Action:  "Try again",
		Link:    r.URL.RequestURI(),
	}
	w.WriteHeader(status)
	templates.Render(w, r, "error_page", data)
}
