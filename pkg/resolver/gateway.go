package resolver

import (
	"context"
	"errors"

	"github.com/waylink/go-deeplink/pkg/domain"
	"github.com/waylink/go-deeplink/pkg/interfaces/logger"
	"github.com/waylink/go-deeplink/pkg/normalize"
)

// Dependencies wire the external client into the gateway.
type Dependencies struct {
	Client Client
	Logger logger.Logger
}

// Gateway is the thin call boundary in front of the external service. It
// forwards each operation, normalizes raw payloads, and maps every failure
// onto the typed error model. It holds no state of its own.
type Gateway struct {
	client Client
	logger logger.Logger
}

// ErrMissingClient is returned when the gateway is built without a client.
var ErrMissingClient = errors.New("resolver: client is required")

// NewGateway builds the gateway service.
func NewGateway(deps Dependencies) (*Gateway, error) {
	if deps.Client == nil {
		return nil, ErrMissingClient
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	return &Gateway{
		client: deps.Client,
		logger: deps.Logger,
	}, nil
}

// Configure forwards the configuration payload. The caller decides whether
// to wait for the result; the gateway only maps the error.
func (g *Gateway) Configure(ctx context.Context, cfg Config) error {
	if err := g.client.Configure(ctx, cfg); err != nil {
		mapped := domain.FromExternal(err)
		g.logger.Warn("resolver rejected configuration",
			logger.Field{Key: "kind", Value: mapped.Kind},
		)
		return mapped
	}
	return nil
}

// Resolve asks the service to match a URL. A nil payload means "no match"
// and propagates unchanged; a malformed payload degrades through the
// normalizer rather than failing.
func (g *Gateway) Resolve(ctx context.Context, url string) (*domain.ResolvedLink, error) {
	raw, err := g.client.Resolve(ctx, url)
	if err != nil {
		return nil, domain.FromExternal(err)
	}
	if raw == nil {
		return nil, nil
	}
	return normalize.Link(raw), nil
}

// ResolveDeferred runs the install-attribution check. The once-per-install
// guarantee is owned by the native layer; a nil result covers both "cache
// hit" and "no match".
func (g *Gateway) ResolveDeferred(ctx context.Context) (*domain.ResolvedLink, error) {
	raw, err := g.client.CheckDeferred(ctx)
	if err != nil {
		return nil, domain.FromExternal(err)
	}
	if raw == nil {
		return nil, nil
	}
	return normalize.Link(raw), nil
}

// Attribution fetches the install-level attribution record. Payloads that do
// not normalize to a fully determined record come back as nil.
func (g *Gateway) Attribution(ctx context.Context) (*domain.AttributionResult, error) {
	raw, err := g.client.GetAttribution(ctx)
	if err != nil {
		return nil, domain.FromExternal(err)
	}
	if raw == nil {
		return nil, nil
	}
	return normalize.Attribution(raw), nil
}

// IsConfigured reports the service-side configuration state.
func (g *Gateway) IsConfigured(ctx context.Context) (bool, error) {
	ok, err := g.client.IsConfigured(ctx)
	if err != nil {
		return false, domain.FromExternal(err)
	}
	return ok, nil
}
