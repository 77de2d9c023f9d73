// internal/app/system/authtoken/authtoken.go

// Package authtoken verifies bearer tokens minted by the identity provider.
//
// Tokens are HS256 JWTs signed with the provider's shared secret. The
// algorithm, expiry and audience are always enforced; never call jwt.Parse
// directly elsewhere.
package authtoken

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultAudience is the audience the provider stamps on user tokens.
const DefaultAudience = "authenticated"

// Claims is the subset of provider claims the application relies on.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role,omitempty"` // provider role, not an application role
}

// Identity is a verified token's subject.
type Identity struct {
	ID        string
	Email     string
	ExpiresAt time.Time
}

// Verifier checks access tokens.
type Verifier struct {
	secret   []byte
	audience string
}

// NewVerifier returns a Verifier for secret. An empty audience selects
// DefaultAudience.
func NewVerifier(secret, audience string) *Verifier {
	if audience == "" {
		audience = DefaultAudience
	}
	return &Verifier{secret: []byte(secret), audience: audience}
}

// Verify parses token and returns its identity. Every failure wraps
// apperr.ErrUnauthorized.
func (v *Verifier) Verify(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, fmt.Errorf("empty bearer token: %w", apperr.ErrUnauthorized)
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(v.audience),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("verify token: %v: %w", err, apperr.ErrUnauthorized)
	}
	if claims.Subject == "" || claims.Email == "" {
		return Identity{}, fmt.Errorf("verify token: %v: %w", errMissingClaims, apperr.ErrUnauthorized)
	}

	id := Identity{ID: claims.Subject, Email: strings.ToLower(claims.Email)}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

var errMissingClaims = errors.New("token missing sub or email")

// Issue signs a token in the provider's format. It backs local development
// and tests; production tokens come from the provider.
func Issue(secret, audience string, id Identity, ttl time.Duration) (string, error) {
	if audience == "" {
		audience = DefaultAudience
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: id.Email,
		Role:  "authenticated",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// FromHeader extracts the token from an "Authorization: Bearer ..." value.
func FromHeader(h string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
