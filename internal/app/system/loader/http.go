// internal/app/system/loader/http.go
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	"github.com/dalemusser/saasgate/internal/domain/models"
	"go.uber.org/zap"
)

// HTTPLoader loads snapshots from a remote GET /api/auth/me.
type HTTPLoader struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// NewHTTPLoader returns an HTTPLoader for the API at baseURL. A nil client
// selects http.DefaultClient.
func NewHTTPLoader(baseURL string, client *http.Client, log *zap.Logger) *HTTPLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPLoader{baseURL: strings.TrimRight(baseURL, "/"), client: client, log: log}
}

// wireSnapshot defers membership decoding so one malformed membership does
// not fail the whole load.
type wireSnapshot struct {
	User        models.UserProfile `json:"user"`
	Memberships []json.RawMessage  `json:"memberships"`
}

// Load calls GET /api/auth/me with token as bearer.
func (l *HTTPLoader) Load(ctx context.Context, token string) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/api/auth/me", nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("build me request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return Snapshot{}, fmt.Errorf("me request: %w", ctxErr)
		}
		return Snapshot{}, fmt.Errorf("me request: %v: %w", err, apperr.ErrNetwork)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return Snapshot{}, fmt.Errorf("me request: %w", apperr.ErrUnauthorized)
	case resp.StatusCode >= 500:
		return Snapshot{}, fmt.Errorf("me request: status %d: %w", resp.StatusCode, apperr.ErrNetwork)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Snapshot{}, fmt.Errorf("me request: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var wire wireSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return Snapshot{}, fmt.Errorf("decode me response: %w", err)
	}

	snap := Snapshot{Profile: wire.User, Memberships: make([]models.Membership, 0, len(wire.Memberships))}
	for _, raw := range wire.Memberships {
		var m models.Membership
		if err := json.Unmarshal(raw, &m); err != nil {
			l.log.Warn("dropping undecodable membership", zap.Error(err))
			continue
		}
		snap.Memberships = append(snap.Memberships, m)
	}
	return snap, nil
}
