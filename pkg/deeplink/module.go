package deeplink

import (
	"github.com/waylink/go-deeplink/internal/di"
	"github.com/waylink/go-deeplink/pkg/commands"
	"github.com/waylink/go-deeplink/pkg/config"
	"github.com/waylink/go-deeplink/pkg/credentials"
	"github.com/waylink/go-deeplink/pkg/interfaces/cache"
	"github.com/waylink/go-deeplink/pkg/interfaces/capture"
	"github.com/waylink/go-deeplink/pkg/interfaces/logger"
	"github.com/waylink/go-deeplink/pkg/journal"
	"github.com/waylink/go-deeplink/pkg/resolver"
	"github.com/waylink/go-deeplink/pkg/sinks"
	"github.com/waylink/go-deeplink/pkg/storage"
)

// ModuleOptions configure the deep-link module facade. Everything is
// optional: omitted collaborators fall back to in-process defaults (memory
// storage, the capture relay, the HTTP resolver client).
type ModuleOptions struct {
	Config      config.Config
	Storage     storage.Providers
	Logger      logger.Logger
	Cache       cache.Cache
	Source      capture.Source
	Client      resolver.Client
	Credentials credentials.Provider
	Sinks       []sinks.Sink
}

// Module bundles the container and exposes high-level accessors.
type Module struct {
	container *di.Container
	client    *Client
}

// NewModule assembles storage, gateway, dispatcher, lifecycle, journal,
// sinks, and commands.
func NewModule(opts ModuleOptions) (*Module, error) {
	container, err := di.New(di.Options{
		Config:      opts.Config,
		Storage:     opts.Storage,
		Logger:      opts.Logger,
		Cache:       opts.Cache,
		Source:      opts.Source,
		Client:      opts.Client,
		Credentials: opts.Credentials,
		Sinks:       opts.Sinks,
	})
	if err != nil {
		return nil, err
	}
	client, err := NewClient(Dependencies{
		Lifecycle:   container.Lifecycle,
		Dispatcher:  container.Dispatcher,
		Credentials: container.Credentials,
		Logger:      opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Module{container: container, client: client}, nil
}

// Client returns the host-facing deep-link client.
func (m *Module) Client() *Client {
	if m == nil || m.container == nil {
		return nil
	}
	return m.client
}

// Journal returns the activity journal service.
func (m *Module) Journal() *journal.Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Journal
}

// Commands returns the go-command registry.
func (m *Module) Commands() *commands.Registry {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Commands
}

// Sinks exposes the configured event sink registry.
func (m *Module) Sinks() *sinks.Registry {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Sinks
}

// Config returns the effective module configuration.
func (m *Module) Config() config.Config {
	if m == nil || m.container == nil {
		return config.Config{}
	}
	return m.container.Config
}

// Container returns the internal DI container.
// This is exposed for advanced use cases like direct storage access.
func (m *Module) Container() *di.Container {
	if m == nil {
		return nil
	}
	return m.container
}
