package client

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

	"github.com/dmitrijs2005/reelsync/internal/client/auth"
	"github.com/dmitrijs2005/reelsync/internal/common"
	"github.com/dmitrijs2005/reelsync/internal/netx"
	"github.com/dmitrijs2005/reelsync/internal/wire"
)

const (
	DefaultTimeout  = 30 * time.Second
	maxResponseSize = 1 << 20
)

type HTTPConfig struct {
	BaseURL    string
	APIVersion string
	// Timeout bounds the connect, read and write phases separately.
	Timeout time.Duration
}

// HTTPClient talks to the sync server over JSON/HTTP.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	apiVersion string
	tokens     auth.TokenSupplier
}

func NewHTTPClient(cfg HTTPConfig, tokens auth.TokenSupplier) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if tokens == nil {
		tokens = auth.None
	}
	return &HTTPClient{
		httpClient: &http.Client{Transport: netx.NewTransport(netx.Uniform(timeout))},
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiVersion: strings.Trim(cfg.APIVersion, "/"),
		tokens:     tokens,
	}
}

func (c *HTTPClient) url(path string) string {
	if c.apiVersion == "" {
		return c.baseURL + "/" + path
	}
	return c.baseURL + "/" + c.apiVersion + "/" + path
}

func (c *HTTPClient) Push(ctx context.Context, b Batch) Outcome {
	body, status, err := c.send(ctx, http.MethodPost, c.url("sync"), EncodeBatch(b))
	if err != nil {
		return failureOutcome(err)
	}

	switch {
	case status >= 200 && status < 300:
		var resp wire.SyncResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return failureOutcome(fmt.Errorf("%w: %v", ErrBadResponse, err))
		}
		return classify(resp)
	case status == http.StatusUnprocessableEntity:
		// a validation failure still carries a sync body
		var resp wire.SyncResponse
		if err := json.Unmarshal(body, &resp); err == nil && !resp.Success {
			return rejectedOutcome(resp.Message, resp.Permanent)
		}
		return failureOutcome(statusError(status, body))
	default:
		return failureOutcome(statusError(status, body))
	}
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	body, status, err := c.send(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if status != http.StatusOK {
		return statusError(status, body)
	}
	return nil
}

// Login exchanges credentials for an access token.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*wire.AuthResponse, error) {
	return c.authCall(ctx, "auth/login", wire.AuthRequest{Email: email, Password: password})
}

// Register creates a server account and returns its first access token.
func (c *HTTPClient) Register(ctx context.Context, email, password, username string) (*wire.AuthResponse, error) {
	return c.authCall(ctx, "auth/register", wire.AuthRequest{Email: email, Password: password, Username: username})
}

func (c *HTTPClient) authCall(ctx context.Context, path string, req wire.AuthRequest) (*wire.AuthResponse, error) {
	body, status, err := c.send(ctx, http.MethodPost, c.url(path), req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	switch status {
	case http.StatusOK, http.StatusCreated:
	case http.StatusConflict:
		return nil, common.ErrConflict
	default:
		return nil, statusError(status, body)
	}

	var out wire.AuthResponse
	if err := json.Unmarshal(body, &out); err != nil || out.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing access token", ErrBadResponse)
	}
	return &out, nil
}

func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// send performs one request and returns the (size-limited) response body.
func (c *HTTPClient) send(ctx context.Context, method, url string, in any) ([]byte, int, error) {
	var r io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, 0, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token, ok := c.tokens.Token(ctx); ok {
		req.Header.Set("Authorization", common.BearerPrefix+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func statusError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var eb wire.ErrorResponse
	if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
		msg = eb.Error
	}

	var sentinel error
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		sentinel = ErrUnauthorized
	case status >= 500:
		sentinel = ErrUnavailable
	default:
		sentinel = ErrBadResponse
	}
	if msg == "" {
		return fmt.Errorf("%w: status %d", sentinel, status)
	}
	return fmt.Errorf("%w: status %d: %s", sentinel, status, msg)
}

// IsUnauthorized reports whether err came from a 401/403 or Unauthenticated reply.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
