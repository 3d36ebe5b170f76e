// Package api implements the HTTP client for the timekeep backend: auth
// exchanges and whole-document fetch/store, all JSON over bearer auth.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"timekeep/internal/model"
)

// Client handles HTTP communication with the timekeep backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new backend API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Session is the server's response to a successful login or register.
type Session struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

type credentialsRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateNameRequest struct {
	Name string `json:"name"`
}

type updatePasswordRequest struct {
	Password string `json:"password"`
}

type userResponse struct {
	Success bool       `json:"success"`
	User    model.User `json:"user"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// IsAuthError reports whether the failure was an authentication rejection.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// doRequest performs an HTTP request, attaching the bearer token when set
func (c *Client) doRequest(ctx context.Context, method, endpoint, token string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	url := c.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// checkStatus converts a non-2xx response to an APIError, preferring the
// server's {error: string} message when present.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, _ := io.ReadAll(resp.Body)
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	}
	return apiErr
}

// Login exchanges credentials for a session
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	resp, err := c.doRequest(ctx, "POST", "/auth/login", "", credentialsRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &session, nil
}

// Register creates a new account and returns its session
func (c *Client) Register(ctx context.Context, name, email, password string) (*Session, error) {
	resp, err := c.doRequest(ctx, "POST", "/auth/register", "", credentialsRequest{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &session, nil
}

// FetchDocument retrieves the full document as raw JSON. The caller
// merges it onto a default-shaped document.
func (c *Client) FetchDocument(ctx context.Context, token string) ([]byte, error) {
	resp, err := c.doRequest(ctx, "GET", "/data/full", token, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// PushDocument replaces the server's copy with the given document
func (c *Client) PushDocument(ctx context.Context, token string, doc *model.Document) error {
	resp, err := c.doRequest(ctx, "POST", "/data/full", token, doc)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	return checkStatus(resp)
}

// UpdateName changes the account's display name
func (c *Client) UpdateName(ctx context.Context, token, name string) (*model.User, error) {
	resp, err := c.doRequest(ctx, "PATCH", "/auth/name", token, updateNameRequest{Name: name})
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var payload userResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &payload.User, nil
}

// UpdatePassword changes the account's password
func (c *Client) UpdatePassword(ctx context.Context, token, password string) error {
	resp, err := c.doRequest(ctx, "PATCH", "/auth/password", token, updatePasswordRequest{Password: password})
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	return checkStatus(resp)
}

// DeleteAccount permanently removes the account and its document
func (c *Client) DeleteAccount(ctx context.Context, token string) error {
	resp, err := c.doRequest(ctx, "DELETE", "/auth/account", token, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	return checkStatus(resp)
}
