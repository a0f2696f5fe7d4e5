package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/waylink/go-deeplink/pkg/domain"
	"github.com/waylink/go-deeplink/pkg/interfaces/logger"
	"github.com/waylink/go-deeplink/pkg/interfaces/sink"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body when a
// secret is configured.
const SignatureHeader = "X-Waylink-Signature"

// Config configures the webhook sink.
type Config struct {
	URL     string
	Method  string
	Headers map[string]string
	Timeout time.Duration
	// Secret, when set, signs each payload into the signature header so the
	// receiver can verify origin.
	Secret string
	DryRun bool
}

// Sink forwards settled deep-link events to an HTTP endpoint.
type Sink struct {
	name   string
	logger logger.Logger
	cfg    Config
	client *http.Client
}

type Option func(*Sink)

// WithName overrides the sink name.
func WithName(name string) Option {
	return func(s *Sink) {
		if strings.TrimSpace(name) != "" {
			s.name = name
		}
	}
}

// WithConfig sets the sink configuration.
func WithConfig(cfg Config) Option {
	return func(s *Sink) {
		s.cfg = cfg
	}
}

// WithClient allows injecting a custom HTTP client.
func WithClient(c *http.Client) Option {
	return func(s *Sink) {
		if c != nil {
			s.client = c
		}
	}
}

// New constructs the webhook sink.
func New(l logger.Logger, opts ...Option) *Sink {
	if l == nil {
		l = &logger.Nop{}
	}
	s := &Sink{
		name:   "webhook",
		logger: l,
		cfg: Config{
			Method:  "POST",
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.cfg.Method == "" {
		s.cfg.Method = "POST"
	}
	if s.client == nil {
		timeout := s.cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		s.client = &http.Client{Timeout: timeout}
	}
	return s
}

// Name identifies the sink inside a registry.
func (s *Sink) Name() string { return s.name }

// payload is the JSON body posted for each settled event.
type payload struct {
	Source    string               `json:"source"`
	URL       string               `json:"url,omitempty"`
	Status    string               `json:"status"`
	Timestamp time.Time            `json:"timestamp"`
	Link      *domain.ResolvedLink `json:"link,omitempty"`
	ErrorKind string               `json:"errorKind,omitempty"`
	ErrorText string               `json:"errorText,omitempty"`
}

// Deliver posts the settled event to the configured endpoint.
func (s *Sink) Deliver(ctx context.Context, d sink.Delivery) error {
	if s.cfg.DryRun {
		s.logger.Info("[webhook:dry-run] delivery skipped",
			logger.Field{Key: "url", Value: s.cfg.URL},
			logger.Field{Key: "source", Value: d.Source},
		)
		return nil
	}

	if strings.TrimSpace(s.cfg.URL) == "" {
		return fmt.Errorf("webhook: url is required")
	}

	body := payload{
		Source:    d.Source,
		URL:       d.URL,
		Timestamp: time.Now().UTC(),
	}
	if link, ok := d.Event.Link(); ok {
		body.Status = domain.ActivityStatusResolved
		body.Link = link
	} else if derr, ok := d.Event.Err(); ok {
		body.Status = domain.ActivityStatusFailed
		body.ErrorKind = string(derr.Kind)
		body.ErrorText = derr.Message
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("webhook: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(s.cfg.Method), s.cfg.URL, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("webhook: build request: %w", err)
	}

	for k, v := range s.cfg.Headers {
		req.Header.Set(k, v)
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.cfg.Secret != "" {
		req.Header.Set(SignatureHeader, sign(s.cfg.Secret, raw))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
	}

	s.logger.Debug("webhook delivered event",
		logger.Field{Key: "source", Value: d.Source},
		logger.Field{Key: "status", Value: body.Status},
	)
	return nil
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
