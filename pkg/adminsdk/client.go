package adminsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client talks to the blog admin API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetToken sets the bearer token sent with authenticated calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.do(ctx, http.MethodPost, "/login", req, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// Refresh swaps the current token for a fresh one.
func (c *Client) Refresh(ctx context.Context) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.do(ctx, http.MethodPost, "/v1/admin/token/refresh", nil, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// Info returns the authenticated admin.
func (c *Client) Info(ctx context.Context) (*AdminInfo, error) {
	var out AdminInfo
	if err := c.do(ctx, http.MethodGet, "/v1/admin/info", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword updates the authenticated admin's password.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	return c.do(ctx, http.MethodPost, "/v1/admin/password", req, nil)
}

// CreateUser creates an admin user. Requires admin:user:create.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	var out UserResponse
	if err := c.do(ctx, http.MethodPost, "/v1/admin/users", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers lists admin users. Requires admin:user:read.
func (c *Client) ListUsers(ctx context.Context) ([]UserResponse, error) {
	var out []UserResponse
	if err := c.do(ctx, http.MethodGet, "/v1/admin/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Permissions lists every permission. Requires admin:permission:read.
func (c *Client) Permissions(ctx context.Context) ([]PermissionResponse, error) {
	var out []PermissionResponse
	if err := c.do(ctx, http.MethodGet, "/v1/admin/permissions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EnrollTOTP starts TOTP enrolment for the authenticated admin.
func (c *Client) EnrollTOTP(ctx context.Context) (*TOTPEnrollResponse, error) {
	var out TOTPEnrollResponse
	if err := c.do(ctx, http.MethodPost, "/v1/admin/totp/enroll", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyTOTP confirms enrolment with a current code.
func (c *Client) VerifyTOTP(ctx context.Context, code string) error {
	return c.do(ctx, http.MethodPost, "/v1/admin/totp/verify", TOTPCodeRequest{Code: code}, nil)
}

// DisableTOTP turns the second factor off.
func (c *Client) DisableTOTP(ctx context.Context, code string) error {
	return c.do(ctx, http.MethodDelete, "/v1/admin/totp", TOTPCodeRequest{Code: code}, nil)
}

// do sends a JSON request and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", TokenHead+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var res rawResult
	if err := json.Unmarshal(raw, &res); err != nil {
		if resp.StatusCode >= 400 {
			return &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &Error{Status: resp.StatusCode, Message: res.Message}
	}

	if out == nil || len(res.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
