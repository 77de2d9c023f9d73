package authtoken_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/app/system/authtoken"
	"github.com/golang-jwt/jwt/v5"
)

const secret = "test-secret-that-is-long-enough-32b"

func TestVerify_Valid(t *testing.T) {
	tok, err := authtoken.Issue(secret, "", authtoken.Identity{ID: "u1", Email: "Ada@Example.com"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	id, err := authtoken.NewVerifier(secret, "").Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.ID != "u1" {
		t.Errorf("ID = %q, want u1", id.ID)
	}
	if id.Email != "ada@example.com" {
		t.Errorf("Email = %q, want lowercased", id.Email)
	}
	if id.ExpiresAt.IsZero() {
		t.Error("expected ExpiresAt")
	}
}

func TestVerify_Rejects(t *testing.T) {
	good := authtoken.Identity{ID: "u1", Email: "a@example.com"}

	expired, _ := authtoken.Issue(secret, "", good, -time.Minute)
	wrongSecret, _ := authtoken.Issue("another-secret-another-secret-xx", "", good, time.Hour)
	wrongAud, _ := authtoken.Issue(secret, "service_role", good, time.Hour)
	noEmail, _ := authtoken.Issue(secret, "", authtoken.Identity{ID: "u1"}, time.Hour)
	noSub, _ := authtoken.Issue(secret, "", authtoken.Identity{Email: "a@example.com"}, time.Hour)

	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, authtoken.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Audience:  jwt.ClaimStrings{authtoken.DefaultAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "a@example.com",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, authtoken.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  "u1",
			Audience: jwt.ClaimStrings{authtoken.DefaultAudience},
		},
		Email: "a@example.com",
	}).SignedString([]byte(secret))

	tests := map[string]string{
		"empty":        "",
		"garbage":      "not-a-jwt",
		"expired":      expired,
		"wrong secret": wrongSecret,
		"wrong aud":    wrongAud,
		"no email":     noEmail,
		"no sub":       noSub,
		"alg none":     noneAlg,
		"no exp":       noExp,
	}

	v := authtoken.NewVerifier(secret, "")
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(tok)
			if !errors.Is(err, apperr.ErrUnauthorized) {
				t.Errorf("Verify error = %v, want ErrUnauthorized", err)
			}
		})
	}
}

func TestFromHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer   ", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := authtoken.FromHeader(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("FromHeader(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
