package deeplink

import (
	"context"
	"errors"

	"github.com/waylink/go-deeplink/internal/dispatcher"
	"github.com/waylink/go-deeplink/internal/lifecycle"
	"github.com/waylink/go-deeplink/pkg/credentials"
	"github.com/waylink/go-deeplink/pkg/domain"
	"github.com/waylink/go-deeplink/pkg/interfaces/logger"
	"github.com/waylink/go-deeplink/pkg/resolver"
)

// Config aliases the resolver configuration so hosts only import this
// package.
type Config = resolver.Config

// ConfigStatus reports where the latest Configure call stands.
type ConfigStatus = lifecycle.ConfigStatus

// Phase enumerates the configure handshake states.
type Phase = lifecycle.Phase

const (
	PhaseUnconfigured = lifecycle.PhaseUnconfigured
	PhaseDelegating   = lifecycle.PhaseDelegating
	PhaseAccepted     = lifecycle.PhaseAccepted
	PhaseRejected     = lifecycle.PhaseRejected
)

// Listener receives settled deep-link events from push activations.
type Listener = dispatcher.Listener

// Client is the host-facing deep-link surface. It bundles the lifecycle
// coordinator and the push event dispatcher behind one API and persists the
// API key so a restart can restore the last configuration.
type Client struct {
	lifecycle   *lifecycle.Service
	dispatcher  *dispatcher.Service
	credentials credentials.Provider
	logger      logger.Logger
}

// Dependencies bundles the services the client fronts.
type Dependencies struct {
	Lifecycle   *lifecycle.Service
	Dispatcher  *dispatcher.Service
	Credentials credentials.Provider
	Logger      logger.Logger
}

var (
	ErrMissingLifecycle  = errors.New("deeplink: lifecycle service is required")
	ErrMissingDispatcher = errors.New("deeplink: dispatcher service is required")
)

// NewClient constructs the client facade.
func NewClient(deps Dependencies) (*Client, error) {
	if deps.Lifecycle == nil {
		return nil, ErrMissingLifecycle
	}
	if deps.Dispatcher == nil {
		return nil, ErrMissingDispatcher
	}
	if deps.Credentials == nil {
		deps.Credentials = credentials.NopProvider{}
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	return &Client{
		lifecycle:   deps.Lifecycle,
		dispatcher:  deps.Dispatcher,
		credentials: deps.Credentials,
		logger:      deps.Logger,
	}, nil
}

// Configure validates the API key format, opens the operation gate, and
// hands the configuration to the resolution service in the background. The
// returned error covers local validation only; the asynchronous verdict
// surfaces through ConfigurationStatus. Accepted keys are persisted so
// RestoreConfiguration can recover them after a restart.
func (c *Client) Configure(cfg Config) error {
	if err := c.lifecycle.Configure(cfg); err != nil {
		return err
	}
	c.persistKey(cfg.APIKey)
	return nil
}

// RestoreConfiguration re-configures the client from the most recently
// persisted API key. It returns credentials.ErrNotFound when no key was ever
// stored.
func (c *Client) RestoreConfiguration() error {
	val, err := credentials.LatestKey(c.credentials)
	if err != nil {
		return err
	}
	return c.lifecycle.Configure(Config{APIKey: string(val.Data)})
}

// ConfigurationStatus reports the current configure handshake state.
func (c *Client) ConfigurationStatus() ConfigStatus {
	return c.lifecycle.ConfigurationStatus()
}

// ResolveLink resolves a single deep-link URL.
func (c *Client) ResolveLink(ctx context.Context, url string) (*domain.ResolvedLink, error) {
	return c.lifecycle.ResolveLink(ctx, url)
}

// CheckDeferredLink asks the resolution service for a deferred link match
// from a pre-install click. A nil link with a nil error means no match.
func (c *Client) CheckDeferredLink(ctx context.Context) (*domain.ResolvedLink, error) {
	return c.lifecycle.CheckDeferredLink(ctx)
}

// Attribution returns install attribution, served from cache when fresh.
func (c *Client) Attribution(ctx context.Context) (*domain.AttributionResult, error) {
	return c.lifecycle.Attribution(ctx)
}

// InitialLink returns the cold-start URL resolved at most once per process.
// Subsequent calls return nil without consulting the resolution service.
func (c *Client) InitialLink(ctx context.Context) (*domain.ResolvedLink, error) {
	return c.lifecycle.InitialLink(ctx)
}

// IsConfigured reports whether the resolution service currently holds an
// accepted configuration. It answers even before Configure is called.
func (c *Client) IsConfigured(ctx context.Context) (bool, error) {
	return c.lifecycle.IsConfigured(ctx)
}

// Subscribe registers a listener for push-driven deep-link events and
// returns its unsubscribe function.
func (c *Client) Subscribe(listener Listener) (func(), error) {
	return c.dispatcher.Subscribe(listener)
}

// Close drops all listeners and detaches from the capture source.
func (c *Client) Close() {
	c.dispatcher.Close()
}

// persistKey stores the API key for later restoration. Persistence is best
// effort: a provider that does not support writes is skipped silently, any
// other failure is logged and swallowed so Configure still succeeds.
func (c *Client) persistKey(apiKey string) {
	_, err := c.credentials.Put(credentials.KeyReference(apiKey), []byte(apiKey))
	if err == nil || errors.Is(err, credentials.ErrUnsupported) {
		return
	}
	c.logger.Warn("api key persistence failed", logger.Field{Key: "error", Value: err})
}
