// Package copilot is a thin client for the workspace-retrieval vendor API.
// The vendor owns cryptographic token verification; this package only moves
// bytes and never interprets claims beyond JSON decoding.
package copilot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration

	// HTTPClient overrides the default client; tests point it at a local
	// server.
	HTTPClient *http.Client
}

func (c Config) withDefaults() Config {
	out := c
	if out.BaseURL == "" {
		out.BaseURL = "https://api.copilot.app"
	}
	if out.Timeout <= 0 {
		out.Timeout = 10 * time.Second
	}
	return out
}

// Client is a vendor API handle optionally bound to one session token.
type Client struct {
	cfg   Config
	token string
	hc    *http.Client
}

// NewClient builds a client bound to token. An empty token yields an
// unauthenticated handle usable only for non-session endpoints.
func NewClient(cfg Config, token string) *Client {
	cfg = cfg.withDefaults()
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, token: token, hc: hc}
}

// GetTokenPayload asks the vendor to verify the bound session token and
// return its claims. The vendor performs signature verification; a
// rejection surfaces as an error.
func (c *Client) GetTokenPayload(ctx context.Context) (map[string]any, error) {
	if c.token == "" {
		return nil, fmt.Errorf("no session token bound to client")
	}
	return c.TokenPayload(ctx, c.token)
}

// TokenPayload verifies an arbitrary token without binding the client to
// it. The introspector calls this so every verification rides the same
// transport and reuses its connections.
func (c *Client) TokenPayload(ctx context.Context, token string) (map[string]any, error) {
	if token == "" {
		return nil, fmt.Errorf("no session token provided")
	}
	var payload map[string]any
	if err := c.get(ctx, token, "/v1/token/payload", url.Values{"token": {token}}, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Workspace is the vendor's tenant record.
type Workspace struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PortalURL string `json:"portalUrl"`
}

func (c *Client) GetWorkspace(ctx context.Context) (Workspace, error) {
	var ws Workspace
	if err := c.get(ctx, c.token, "/v1/workspaces/current", nil, &ws); err != nil {
		return Workspace{}, err
	}
	return ws, nil
}

func (c *Client) get(ctx context.Context, token, path string, query url.Values, out any) error {
	u := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-API-KEY", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("X-Session-Token", token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("copilot request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a bounded amount so the connection can be reused; the body
		// is not included in the error to keep vendor internals out of
		// anything user-facing.
		_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)
		return fmt.Errorf("copilot responded with status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("copilot response decode failed: %w", err)
	}
	return nil
}
