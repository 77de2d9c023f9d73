// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips markup from user-supplied text such as
// organization names, settings values and profile names.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every element; safe for concurrent use.
var strict = bluemonday.StrictPolicy()

// PlainText removes all HTML from s and returns unescaped text, so
// "Tom &amp; Jerry<script>x</script>" becomes "Tom & Jerry".
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsPlainText reports whether s contains no HTML tags.
func IsPlainText(s string) bool {
	return PlainText(s) == strings.TrimSpace(html.UnescapeString(s))
}

// PlainMap applies PlainText to every key and value of m. Entries whose key
// becomes empty are dropped.
func PlainMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		k = PlainText(k)
		if k == "" {
			continue
		}
		out[k] = PlainText(v)
	}
	return out
}
