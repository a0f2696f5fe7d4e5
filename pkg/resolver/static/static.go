// Package static provides a canned-response resolver client for demos and
// tests that run without a reachable resolution service.
package static

import (
	"context"
	"sync"

	"github.com/waylink/go-deeplink/pkg/domain"
	"github.com/waylink/go-deeplink/pkg/resolver"
)

// Client serves resolution responses from seeded fixtures.
type Client struct {
	mu          sync.RWMutex
	links       map[string]any
	deferred    any
	attribution any
	acceptKeys  map[string]struct{}
	cfg         resolver.Config
	configured  bool
}

var _ resolver.Client = (*Client)(nil)

// Option customizes the canned client.
type Option func(*Client)

// WithLink seeds the payload returned when url is resolved.
func WithLink(url string, payload any) Option {
	return func(c *Client) {
		c.links[url] = payload
	}
}

// WithDeferred seeds the payload returned by deferred checks.
func WithDeferred(payload any) Option {
	return func(c *Client) {
		c.deferred = payload
	}
}

// WithAttribution seeds the payload returned by attribution reads.
func WithAttribution(payload any) Option {
	return func(c *Client) {
		c.attribution = payload
	}
}

// WithAcceptedKeys restricts Configure to the given keys. Without it any
// key is accepted.
func WithAcceptedKeys(keys ...string) Option {
	return func(c *Client) {
		c.acceptKeys = make(map[string]struct{}, len(keys))
		for _, k := range keys {
			c.acceptKeys[k] = struct{}{}
		}
	}
}

// New builds a canned client seeded through options.
func New(opts ...Option) *Client {
	c := &Client{links: make(map[string]any)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configure records the config. When an accepted-key set was seeded, other
// keys are rejected the way the live service rejects them.
func (c *Client) Configure(_ context.Context, cfg resolver.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.acceptKeys) > 0 {
		if _, ok := c.acceptKeys[cfg.APIKey]; !ok {
			return domain.NewError(domain.KindInvalidKey, "api key not recognized")
		}
	}
	c.cfg = cfg
	c.configured = true
	return nil
}

// Resolve returns the seeded payload for url, or nil when none was seeded.
func (c *Client) Resolve(_ context.Context, url string) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	payload, ok := c.links[url]
	if !ok {
		return nil, nil
	}
	return payload, nil
}

// CheckDeferred returns the seeded deferred payload, nil when none.
func (c *Client) CheckDeferred(_ context.Context) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.deferred, nil
}

// GetAttribution returns the seeded attribution payload, nil when none.
func (c *Client) GetAttribution(_ context.Context) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.attribution, nil
}

// IsConfigured reports whether Configure accepted a key.
func (c *Client) IsConfigured(_ context.Context) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.configured, nil
}

// AddLink seeds one more link after construction.
func (c *Client) AddLink(url string, payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.links[url] = payload
}

// SetDeferred replaces the deferred payload.
func (c *Client) SetDeferred(payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deferred = payload
}

// SetAttribution replaces the attribution payload.
func (c *Client) SetAttribution(payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attribution = payload
}

// Config returns the last accepted configuration.
func (c *Client) Config() resolver.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}
