// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/saasgate/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Message string
	Action  string
	Link    string
}

// Handler serves the error pages.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Unauthorized renders the "insufficient permissions" page.
// GET /unauthorized
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Access denied", "/dashboard"),
		Message: "You don't have permission to view this page in the selected organization.",
		Action:  "Back to dashboard",
		Link:    "/dashboard",
	}
	w.WriteHeader(http.StatusForbidden)
	templates.Render(w, r, "error_page", data)
}

// Forbidden renders the page shown when a form fails its CSRF check.
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Request blocked", "/"),
		Message: "Your form session expired or the request came from another site. Reload the page and try again.",
		Action:  "Go back",
		Link:    "/",
	}
	w.WriteHeader(http.StatusForbidden)
	templates.Render(w, r, "error_page", data)
}

// NotFound renders the 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Not found", "/"),
		Message: "The page you were looking for does not exist.",
		Action:  "Go home",
		Link:    "/",
	}
	w.WriteHeader(http.StatusNotFound)
	templates.Render(w, r, "error_page", data)
}
