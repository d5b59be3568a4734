// Package auth validates bearer sessions against the identity provider
// and attaches the resolved user to request contexts.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/localhive/localhive/internal/config"
)

// ErrInvalidSession is returned when the provider rejects a token.
var ErrInvalidSession = errors.New("invalid session")

// Session is the validated identity behind a bearer token.
type Session struct {
	Subject string
	Email   string
}

// Validator checks a session token and returns the identity it belongs to.
type Validator interface {
	ValidateSession(ctx context.Context, token string) (*Session, error)
}

// Client validates sessions against the identity provider's HTTP API.
// Construct it once and share it; it holds no per-request state.
type Client struct {
	apiBase    string
	projectID  string
	httpClient *http.Client
}

// NewClient builds a Client from the auth config section.
func NewClient(cfg config.AuthConfig) *Client {
	base := strings.TrimRight(cfg.APIBase, "/")
	if base == "" {
		base = "https://api.descope.com"
	}
	return &Client{
		apiBase:    base,
		projectID:  cfg.ProjectID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ValidateSession posts the token to the provider's validate endpoint.
// Any rejection comes back as ErrInvalidSession; transport failures are
// returned as-is so callers can distinguish outage from denial.
func (c *Client) ValidateSession(ctx context.Context, token string) (*Session, error) {
	body, err := json.Marshal(map[string]string{"sessionToken": token})
	if err != nil {
		return nil, fmt.Errorf("marshal session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiBase+"/v1/auth/validate", strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.projectID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("validate session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrInvalidSession
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("session validation HTTP %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read session response: %w", err)
	}

	var parsed struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse session response: %w", err)
	}
	if parsed.Sub == "" {
		return nil, ErrInvalidSession
	}
	return &Session{Subject: parsed.Sub, Email: parsed.Email}, nil
}
