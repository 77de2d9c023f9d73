package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"user.name@example.com", true},
		{"user+tag@example.com", true},
		{"user@subdomain.example.com", true},
		{"a@b.co", true},
		{"admin@localhost", true},
		{"  user@example.com  ", true},

		{"", false},
		{"   ", false},
		{"user", false},
		{"user@", false},
		{"@example.com", false},
		{".user@example.com", false},
		{"user.@example.com", false},
		{"user..name@example.com", false},
		{"user@example..com", false},
		{"User Name <user@example.com>", false},
		{"user @example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsValidDomain(t *testing.T) {
	tests := []struct {
		domain string
		want   bool
	}{
		{"acme.com", true},
		{"ACME.com", true},
		{"eu.acme.co.uk", true},
		{"my-company.io", true},

		{"", false},
		{"com", false},
		{"co.uk", false},
		{"localhost", false},
		{"127.0.0.1", false},
		{"-acme.com", false},
		{"acme-.com", false},
		{"ac me.com", false},
		{"acme..com", false},
		{"https://acme.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			if got := IsValidDomain(tt.domain); got != tt.want {
				t.Errorf("IsValidDomain(%q) = %v, want %v", tt.domain, got, tt.want)
			}
		})
	}
}

func TestIsValidRoleAndTier(t *testing.T) {
	if !IsValidRole("organization_admin") || !IsValidRole(" SAAS_ADMIN ") {
		t.Error("expected known roles to be valid")
	}
	if IsValidRole("owner") || IsValidRole("") {
		t.Error("expected unknown roles to be invalid")
	}
	if !IsValidTier("free") || !IsValidTier("Enterprise") {
		t.Error("expected known tiers to be valid")
	}
	if IsValidTier("gold") {
		t.Error("expected unknown tier to be invalid")
	}
}
