// Package navigation provides helpers for safe URL navigation and redirects.
package navigation

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// BackURLOptions configures the behavior of SafeBackURL.
type BackURLOptions struct {
	// AllowedPrefix is the required URL prefix. If empty, any safe URL is
	// allowed.
	AllowedPrefix string

	// ExcludedPaths are paths a return URL may not point at, to prevent
	// redirect loops back to the page that sent the user away.
	ExcludedPaths []string

	// Fallback is the default URL if no valid return URL is found.
	Fallback string
}

// SafeBackURL extracts and validates a return URL from the request.
//
// It checks both the query parameter and form value for "return", rejects
// anything that is not a local path, and applies opts.
func SafeBackURL(r *http.Request, opts BackURLOptions) string {
	ret := urlutil.SafeReturn(query.Get(r, "return"), "", "")
	if ret == "" {
		ret = urlutil.SafeReturn(strings.TrimSpace(r.FormValue("return")), "", "")
	}
	if ret == "" {
		return opts.Fallback
	}
	if opts.AllowedPrefix != "" && !strings.HasPrefix(ret, opts.AllowedPrefix) {
		return opts.Fallback
	}
	path := ret
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	for _, excluded := range opts.ExcludedPaths {
		if path == excluded {
			return opts.Fallback
		}
	}
	return ret
}

// AfterSignIn is where a user lands after signing in.
var AfterSignIn = BackURLOptions{
	ExcludedPaths: []string{"/auth", "/logout", "/unauthorized"},
	Fallback:      "/dashboard",
}
