// Package api provides the thin remote-API client. Every call here is
// consumed as a best-effort first attempt: callers catch the error and
// fall back to the local repositories.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.vokalia.id/voicecheck/internal/types"
)

// Client talks to the optional remote backend.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a client for the backend at baseURL (for example
// http://localhost:5000/api).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// LoginResult is the remote login response.
type LoginResult struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

// Login authenticates against the remote backend.
func (c *Client) Login(ctx context.Context, npm, password string) (*LoginResult, error) {
	body := map[string]string{"npm": npm, "password": password}
	var res LoginResult
	if err := c.post(ctx, "/auth/login", body, &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		res.Token = "dummy-token"
	}
	return &res, nil
}

// RegisterResult is the remote registration response.
type RegisterResult struct {
	User types.User `json:"user"`
}

// Register creates an account on the remote backend.
func (c *Client) Register(ctx context.Context, u types.User) (*RegisterResult, error) {
	body := map[string]string{
		"npm":      u.NPM,
		"nama":     u.Nama,
		"password": u.Password,
		"role":     u.Role,
	}
	var res RegisterResult
	if err := c.post(ctx, "/auth/register", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api error: %d - %s", resp.StatusCode, string(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
