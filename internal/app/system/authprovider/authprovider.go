// internal/app/system/authprovider/authprovider.go

// Package authprovider talks to the external identity provider: password
// sign-in, refresh-token exchange and sign-up. Credentials never touch this
// service's database.
//
// The provider speaks OAuth2 at {base}/token (password and refresh_token
// grants) and accepts sign-ups at {base}/signup.
package authprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Tokens is the pair issued on sign-in or refresh.
type Tokens struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"-"`
}

// SignUpRequest is a registration attempt.
type SignUpRequest struct {
	Email           string `json:"email" validate:"required,email,max=254" label:"Email"`
	Password        string `json:"password" validate:"required,min=8,max=128" label:"Password"`
	ConfirmPassword string `json:"confirm_password" label:"Password confirmation"`
	FirstName       string `json:"first_name" validate:"max=100" label:"First name"`
	LastName        string `json:"last_name" validate:"max=100" label:"Last name"`
}

// Account is the identity the provider created on sign-up.
type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Client calls the identity provider.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *zap.Logger
}

// New returns a Client for the provider at baseURL. apiKey is sent as the
// OAuth2 client id and as the apikey header on sign-up. A nil httpClient
// selects one with a 15 second timeout.
func New(baseURL, apiKey string, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
		log:     log,
	}
}

func (c *Client) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID: c.apiKey,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.http)
}

// SignIn exchanges email and password for tokens. Rejected credentials wrap
// apperr.ErrUnauthorized; an unreachable provider wraps apperr.ErrNetwork.
func (c *Client) SignIn(ctx context.Context, email, password string) (Tokens, error) {
	tok, err := c.oauth2Config().PasswordCredentialsToken(c.oauthContext(ctx), email, password)
	if err != nil {
		return Tokens{}, c.classify("sign in", err)
	}
	return fromOAuth2(tok), nil
}

// Refresh exchanges a refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	if refreshToken == "" {
		return Tokens{}, fmt.Errorf("refresh: missing refresh token: %w", apperr.ErrUnauthorized)
	}
	// An expired token forces the source to hit the token endpoint.
	stale := &oauth2.Token{RefreshToken: refreshToken, Expiry: time.Unix(1, 0)}
	tok, err := c.oauth2Config().TokenSource(c.oauthContext(ctx), stale).Token()
	if err != nil {
		return Tokens{}, c.classify("refresh", err)
	}
	return fromOAuth2(tok), nil
}

// SignUp registers a new identity. A password confirmation mismatch is a
// ValidationError and the provider is not called.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (Account, error) {
	if req.Password != req.ConfirmPassword {
		return Account{}, apperr.Invalid("confirm_password", "Passwords do not match.")
	}

	body, err := json.Marshal(map[string]any{
		"email":    req.Email,
		"password": req.Password,
		"data": map[string]string{
			"first_name": req.FirstName,
			"last_name":  req.LastName,
		},
	})
	if err != nil {
		return Account{}, fmt.Errorf("sign up: encode: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/signup", bytes.NewReader(body))
	if err != nil {
		return Account{}, fmt.Errorf("sign up: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("apikey", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil && !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Account{}, fmt.Errorf("sign up: %w", ctx.Err())
		}
		return Account{}, fmt.Errorf("sign up: %v: %w", err, apperr.ErrNetwork)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return Account{}, fmt.Errorf("sign up: status %d: %w", resp.StatusCode, apperr.ErrNetwork)
	case resp.StatusCode == http.StatusConflict:
		return Account{}, fmt.Errorf("sign up: %w", apperr.ErrConflict)
	case resp.StatusCode >= 400:
		msg := providerMessage(resp.Body)
		if msg == "" {
			msg = "Registration was rejected."
		}
		return Account{}, apperr.Invalid("", msg)
	}

	var acct Account
	if err := json.NewDecoder(resp.Body).Decode(&acct); err != nil {
		return Account{}, fmt.Errorf("sign up: decode: %w", err)
	}
	return acct, nil
}

// classify maps an oauth2 failure onto apperr.
func (c *Client) classify(op string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		code := re.Response.StatusCode
		switch {
		case code >= 500:
			return fmt.Errorf("%s: status %d: %w", op, code, apperr.ErrNetwork)
		case code == http.StatusBadRequest || code == http.StatusUnauthorized || code == http.StatusForbidden:
			c.log.Debug("provider rejected credentials",
				zap.String("op", op),
				zap.Int("status", code),
				zap.String("error_code", re.ErrorCode))
			return fmt.Errorf("%s: %w", op, apperr.ErrUnauthorized)
		}
		return fmt.Errorf("%s: status %d: %v", op, code, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %v: %w", op, err, apperr.ErrNetwork)
}

func fromOAuth2(tok *oauth2.Token) Tokens {
	t := Tokens{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if t.TokenType == "" {
		t.TokenType = "bearer"
	}
	if !tok.Expiry.IsZero() {
		t.ExpiresIn = int(time.Until(tok.Expiry).Round(time.Second).Seconds())
	}
	return t
}

// providerMessage extracts a human-readable message from an error body.
func providerMessage(r io.Reader) string {
	var body struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&body); err != nil {
		return ""
	}
	for _, s := range []string{body.Msg, body.Message, body.ErrorDescription} {
		if s != "" {
			return s
		}
	}
	return ""
}
