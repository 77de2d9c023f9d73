// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultLimit is the page size when the request does not name one.
const DefaultLimit = 50

// MaxLimit caps the page size a client may request.
const MaxLimit = 200

// Page is an offset window over a newest-first listing.
type Page struct {
	Limit  int64
	Offset int64
}

// Parse reads ?limit= and ?offset=. Missing or invalid values fall back to
// DefaultLimit and 0; limit is clamped to MaxLimit.
func Parse(r *http.Request) Page {
	p := Page{Limit: DefaultLimit}
	if n, err := strconv.ParseInt(query.Get(r, "limit"), 10, 64); err == nil && n > 0 {
		p.Limit = min(n, MaxLimit)
	}
	if n, err := strconv.ParseInt(query.Get(r, "offset"), 10, 64); err == nil && n > 0 {
		p.Offset = n
	}
	return p
}

// List is the JSON envelope of one page.
type List[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Limit   int64 `json:"limit"`
	Offset  int64 `json:"offset"`
	HasNext bool  `json:"has_next"`
}

// NewList wraps items fetched for p out of total matches.
func NewList[T any](items []T, total int64, p Page) List[T] {
	if items == nil {
		items = []T{}
	}
	return List[T]{
		Items:   items,
		Total:   total,
		Limit:   p.Limit,
		Offset:  p.Offset,
		HasNext: p.Offset+int64(len(items)) < total,
	}
}
