// internal/app/system/normalize/normalize.go

// Package normalize canonicalizes user input before it is validated or
// stored.
package normalize

import "strings"

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses inner runs of whitespace.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Domain lowercases a host name and drops a trailing root dot.
func Domain(s string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), ".")
}

// Lower trims and lowercases an enumerated value such as a role or tier.
func Lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
