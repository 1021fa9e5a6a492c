package adminclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"crewdesk.org/internal/useradmin"
)

// Client is a typed HTTP client for the user-administration API. Used by the
// smoke CLI and by operator tooling.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken sets the bearer credential sent on admin calls.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client against the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("adminclient: base URL is required")
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// APIError carries the HTTP status and server-reported message of a failed call.
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api error %d: %s (%s)", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type adminResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
}

// ObtainToken requests a bearer credential for the given identity id and
// stores it on the client for subsequent calls.
func (c *Client) ObtainToken(ctx context.Context, userID string) (string, time.Time, error) {
	var resp tokenResponse
	err := c.post(ctx, "/v1/auth/token", map[string]any{"user": userID}, &resp, false)
	if err != nil {
		return "", time.Time{}, err
	}
	c.token = resp.Token
	return resp.Token, resp.ExpiresAt, nil
}

// Execute sends an admin action request and returns the created user id, when
// the action produces one.
func (c *Client) Execute(ctx context.Context, req useradmin.Request) (string, error) {
	var resp adminResponse
	if err := c.post(ctx, "/v1/admin/users", req, &resp, true); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", errors.New("adminclient: server reported failure")
	}
	return resp.UserID, nil
}

// CreateUser provisions a user in the caller's company.
func (c *Client) CreateUser(ctx context.Context, email, password, fullName string, role useradmin.Role) (string, error) {
	return c.Execute(ctx, useradmin.Request{
		Action:   "create",
		Email:    email,
		Password: password,
		FullName: &fullName,
		Role:     string(role),
	})
}

// UpdateRole changes a user's role assignment.
func (c *Client) UpdateRole(ctx context.Context, userID string, newRole useradmin.Role) error {
	_, err := c.Execute(ctx, useradmin.Request{
		Action:  "updateRole",
		UserID:  userID,
		NewRole: string(newRole),
	})
	return err
}

// ToggleActive flips a profile's active flag.
func (c *Client) ToggleActive(ctx context.Context, profileID string, active bool) error {
	_, err := c.Execute(ctx, useradmin.Request{
		Action:    "toggleActive",
		ProfileID: profileID,
		IsActive:  &active,
	})
	return err
}

// DeleteUser removes a user and their dependent records.
func (c *Client) DeleteUser(ctx context.Context, userID, profileID string) error {
	_, err := c.Execute(ctx, useradmin.Request{
		Action:    "delete",
		UserID:    userID,
		ProfileID: profileID,
	})
	return err
}

// Health reports whether the service answers its liveness probe.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("adminclient: health returned %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out any, authed bool) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if authed {
		if c.token == "" {
			return errors.New("adminclient: no token; call ObtainToken first")
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Error == "" {
			errBody.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: errBody.Error, Details: errBody.Details}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
