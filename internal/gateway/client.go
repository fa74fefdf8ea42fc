// Package gateway is the console's client for the gateway admin API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/keyconsole/pkg/models"
)

// Sentinel errors for admin API failures.
var (
	ErrUnauthorized = errors.New("gateway rejected session")
	ErrUnreachable  = errors.New("gateway unreachable")
	ErrTimeout      = errors.New("gateway request timeout")
)

// APIError is a non-2xx answer that is not a session rejection. Message holds
// the server-supplied error text and may be empty.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned status %d", e.Status)
	}
	return fmt.Sprintf("gateway returned status %d: %s", e.Status, e.Message)
}

// ServerMessage extracts the server-supplied error text from err, or "".
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// IsTransport reports whether err means the request never completed.
func IsTransport(err error) bool {
	return errors.Is(err, ErrUnreachable) || errors.Is(err, ErrTimeout)
}

// Client is the interface for the gateway admin API. Every method except Login
// takes the session's bearer token.
type Client interface {
	Login(ctx context.Context, username, password string) (string, error)
	Verify(ctx context.Context, token string) error
	Dashboard(ctx context.Context, token string) (*models.DashboardSummary, error)
	ListKeys(ctx context.Context, token string) ([]models.APIKey, error)
	CreateKey(ctx context.Context, token string, req models.CreateKeyRequest) (*models.APIKey, error)
	GetKey(ctx context.Context, token, id string) (*models.APIKey, error)
	UpdateKey(ctx context.Context, token, id string, req models.UpdateKeyRequest) error
	DeleteKey(ctx context.Context, token, id string) error
}

// HTTPClient implements Client over the admin HTTP API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a new admin API client. baseURL is the admin API root,
// e.g. http://localhost:8080/admin/api.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   timeout,
			Transport: &loggingTransport{next: http.DefaultTransport},
		},
	}
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	var resp models.LoginResponse
	err := c.do(ctx, http.MethodPost, "auth/login", "", models.LoginRequest{
		Username: username,
		Password: password,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("decoding login response: empty token")
	}
	return resp.Token, nil
}

func (c *HTTPClient) Verify(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodGet, "auth/verify", token, nil, nil)
}

func (c *HTTPClient) Dashboard(ctx context.Context, token string) (*models.DashboardSummary, error) {
	var summary models.DashboardSummary
	if err := c.do(ctx, http.MethodGet, "dashboard", token, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *HTTPClient) ListKeys(ctx context.Context, token string) ([]models.APIKey, error) {
	var list models.APIKeyList
	if err := c.do(ctx, http.MethodGet, "api-keys", token, nil, &list); err != nil {
		return nil, err
	}
	if list.APIKeys == nil {
		return []models.APIKey{}, nil
	}
	return list.APIKeys, nil
}

func (c *HTTPClient) CreateKey(ctx context.Context, token string, req models.CreateKeyRequest) (*models.APIKey, error) {
	var created models.APIKey
	if err := c.do(ctx, http.MethodPost, "api-keys", token, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *HTTPClient) GetKey(ctx context.Context, token, id string) (*models.APIKey, error) {
	var key models.APIKey
	if err := c.do(ctx, http.MethodGet, "api-keys/"+url.PathEscape(id), token, nil, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

func (c *HTTPClient) UpdateKey(ctx context.Context, token, id string, req models.UpdateKeyRequest) error {
	return c.do(ctx, http.MethodPut, "api-keys/"+url.PathEscape(id), token, req, nil)
}

func (c *HTTPClient) DeleteKey(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "api-keys/"+url.PathEscape(id), token, nil, nil)
}

// do sends one request and decodes a 2xx JSON body into out (when non-nil).
// With a token, 401 becomes ErrUnauthorized; without one (sign-in) it is an
// ordinary APIError carrying the server's message.
func (c *HTTPClient) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := readErrorMessage(resp.Body)
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			return fmt.Errorf("%w: %s %s", ErrUnauthorized, method, path)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// readErrorMessage pulls the "error" field out of an error payload, if any.
func readErrorMessage(body io.Reader) string {
	var payload models.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, 64<<10)).Decode(&payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Error)
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
