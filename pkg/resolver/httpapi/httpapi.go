// Package httpapi implements the resolver client over the service's HTTP
// JSON API. Retry and timeout policy live here, on the resolver side of the
// boundary, never in the bridge.
package httpapi

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

	"github.com/google/uuid"
	"github.com/waylink/go-deeplink/pkg/interfaces/logger"
	"github.com/waylink/go-deeplink/pkg/resolver"
	"github.com/waylink/go-deeplink/pkg/retry"
)

const defaultEndpoint = "https://api.wayl.ink"

// Client talks to the resolution service. Safe for concurrent use.
type Client struct {
	endpoint    string
	installID   string
	http        *http.Client
	backoff     retry.Backoff
	maxAttempts int
	logger      logger.Logger

	mu     sync.RWMutex
	apiKey string
	debug  bool
}

var _ resolver.Client = (*Client)(nil)

// Option tweaks the client construction.
type Option func(*Client)

// WithEndpoint overrides the service base URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if strings.TrimSpace(endpoint) != "" {
			c.endpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithBackoff replaces the retry policy for transient failures.
func WithBackoff(b retry.Backoff) Option {
	return func(c *Client) {
		if b != nil {
			c.backoff = b
		}
	}
}

// WithMaxAttempts bounds how often a transient failure is retried.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithInstallID pins the install identifier sent with deferred and
// attribution calls. Defaults to a fresh UUID per client.
func WithInstallID(id string) Option {
	return func(c *Client) {
		if strings.TrimSpace(id) != "" {
			c.installID = id
		}
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New constructs the HTTP client.
func New(opts ...Option) *Client {
	client := &Client{
		endpoint:    defaultEndpoint,
		installID:   uuid.NewString(),
		http:        &http.Client{Timeout: 10 * time.Second},
		backoff:     retry.DefaultBackoff(),
		maxAttempts: 3,
		logger:      &logger.Nop{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// Configure registers the credentials with the service.
func (c *Client) Configure(ctx context.Context, cfg resolver.Config) error {
	if strings.TrimSpace(cfg.APIEndpoint) != "" {
		// Endpoint changes apply before the request so validation hits the
		// right host.
		c.mu.Lock()
		c.endpoint = strings.TrimRight(cfg.APIEndpoint, "/")
		c.mu.Unlock()
	}
	_, err := c.call(ctx, http.MethodPost, "/v1/configure", cfg, cfg.APIKey)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.apiKey = cfg.APIKey
	c.debug = cfg.DebugLogging
	c.mu.Unlock()
	return nil
}

// Resolve matches a URL against the service's link table.
func (c *Client) Resolve(ctx context.Context, url string) (any, error) {
	return c.call(ctx, http.MethodPost, "/v1/resolve", map[string]any{"url": url}, c.key())
}

// CheckDeferred runs the install-attribution lookup for this install.
func (c *Client) CheckDeferred(ctx context.Context) (any, error) {
	return c.call(ctx, http.MethodPost, "/v1/deferred", map[string]any{"installId": c.installID}, c.key())
}

// GetAttribution fetches the install-level attribution record.
func (c *Client) GetAttribution(ctx context.Context) (any, error) {
	return c.call(ctx, http.MethodGet, "/v1/attribution", nil, c.key())
}

// IsConfigured asks the service whether the current key is registered. A
// client with no key answers locally without a request.
func (c *Client) IsConfigured(ctx context.Context) (bool, error) {
	if c.key() == "" {
		return false, nil
	}
	raw, err := c.call(ctx, http.MethodGet, "/v1/status", nil, c.key())
	if err != nil {
		return false, err
	}
	status, ok := raw.(map[string]any)
	if !ok {
		return false, nil
	}
	configured, _ := status["configured"].(bool)
	return configured, nil
}

// InstallID exposes the identifier sent with attribution calls.
func (c *Client) InstallID() string {
	return c.installID
}

func (c *Client) key() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

func (c *Client) baseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.endpoint
}

// call performs one API request with retry on transport errors and 5xx
// responses. 4xx responses carry service error codes and are terminal.
func (c *Client) call(ctx context.Context, method, path string, payload any, key string) (any, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := retry.Wait(ctx, c.backoff, attempt-1); err != nil {
				return nil, &Error{Code: "E_NETWORK_ERROR", Message: err.Error()}
			}
		}
		result, retryable, err := c.once(ctx, method, path, payload, key)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		c.logger.Warn("resolver request failed",
			logger.Field{Key: "path", Value: path},
			logger.Field{Key: "attempt", Value: attempt},
			logger.Field{Key: "error", Value: err},
		)
	}
	return nil, lastErr
}

func (c *Client) once(ctx context.Context, method, path string, payload any, key string) (any, bool, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, false, &Error{Code: "E_DECODING_ERROR", Message: fmt.Sprintf("encode request: %v", err)}
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL()+path, body)
	if err != nil {
		return nil, false, &Error{Code: "E_INVALID_URL", Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Install-ID", c.installID)
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, &Error{Code: "E_NETWORK_ERROR", Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, &Error{Code: "E_NETWORK_ERROR", Message: err.Error()}
	}

	if resp.StatusCode >= 500 {
		return nil, true, errorFromBody(data, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, errorFromBody(data, resp.StatusCode)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, false, nil
	}
	var result any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, &Error{Code: "E_DECODING_ERROR", Message: fmt.Sprintf("decode response: %v", err)}
	}
	return result, false, nil
}

func errorFromBody(data []byte, statusCode int) *Error {
	var wire struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &wire); err == nil && wire.Code != "" {
		return &Error{Code: wire.Code, Message: wire.Message}
	}
	return &Error{
		Code:    "E_SERVER_ERROR",
		Message: fmt.Sprintf("unexpected status %d", statusCode),
	}
}

// Error is the wire error shape the service produces. The gateway maps it
// onto the typed model through the code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Message
}

// ErrorCode satisfies domain.Coder.
func (e *Error) ErrorCode() string { return e.Code }
