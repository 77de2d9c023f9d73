// internal/app/system/inputval/inputval.go
package inputval

import (
	"net"
	"net/mail"
	"strings"

	"github.com/dalemusser/saasgate/internal/app/system/roles"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"golang.org/x/net/publicsuffix"
)

// IsValidEmail reports whether s is a bare RFC 5322 address (no display
// name) with no empty dot-separated labels.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return false
	}
	local, domain, ok := strings.Cut(addr.Address, "@")
	if !ok || local == "" || domain == "" {
		return false
	}
	return dotLabelsOK(local) && dotLabelsOK(domain)
}

func dotLabelsOK(s string) bool {
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
	}
	return true
}

// IsValidDomain reports whether s is a registrable host name under a public
// suffix, such as "acme.com" or "eu.acme.co.uk". IP literals are rejected.
func IsValidDomain(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || len(s) > 253 || net.ParseIP(s) != nil {
		return false
	}
	for _, label := range strings.Split(s, ".") {
		if len(label) == 0 || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for _, c := range label {
			if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-') {
				return false
			}
		}
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(s)
	if err != nil || etld1 == "" {
		return false
	}
	_, icann := publicsuffix.PublicSuffix(s)
	return icann
}

// IsValidRole reports whether s names one of the six roles.
func IsValidRole(s string) bool {
	_, err := roles.Parse(s)
	return err == nil
}

// IsValidTier reports whether s names a subscription tier.
func IsValidTier(s string) bool {
	return models.ValidTier(models.SubscriptionTier(strings.ToLower(strings.TrimSpace(s))))
}
