package di

import (
	"encoding/hex"
	"errors"
	"net/http"
	"reflect"

	"github.com/waylink/go-deeplink/internal/dispatcher"
	"github.com/waylink/go-deeplink/internal/lifecycle"
	"github.com/waylink/go-deeplink/pkg/commands"
	"github.com/waylink/go-deeplink/pkg/config"
	"github.com/waylink/go-deeplink/pkg/credentials"
	"github.com/waylink/go-deeplink/pkg/interfaces/cache"
	"github.com/waylink/go-deeplink/pkg/interfaces/capture"
	"github.com/waylink/go-deeplink/pkg/interfaces/logger"
	"github.com/waylink/go-deeplink/pkg/journal"
	"github.com/waylink/go-deeplink/pkg/resolver"
	"github.com/waylink/go-deeplink/pkg/resolver/httpapi"
	"github.com/waylink/go-deeplink/pkg/sinks"
	"github.com/waylink/go-deeplink/pkg/sinks/console"
	"github.com/waylink/go-deeplink/pkg/sinks/webhook"
	"github.com/waylink/go-deeplink/pkg/storage"
)

// Options configure the DI container.
type Options struct {
	Config      config.Config
	Storage     storage.Providers
	Logger      logger.Logger
	Cache       cache.Cache
	Source      capture.Source
	Client      resolver.Client
	Credentials credentials.Provider
	Sinks       []sinks.Sink
}

// Container wires storage, gateway, dispatcher, lifecycle, journal, and
// commands.
type Container struct {
	Config      config.Config
	Storage     storage.Providers
	Source      capture.Source
	Gateway     *resolver.Gateway
	Dispatcher  *dispatcher.Service
	Lifecycle   *lifecycle.Service
	Journal     *journal.Service
	Commands    *commands.Registry
	Sinks       *sinks.Registry
	Credentials credentials.Provider
}

func isZeroConfig(cfg config.Config) bool {
	return reflect.ValueOf(cfg).IsZero()
}

// New constructs the container using the supplied options.
func New(opts Options) (*Container, error) {
	cfg := opts.Config
	if isZeroConfig(cfg) {
		cfg = config.Defaults()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	providers := opts.Storage
	if providers.Activities == nil {
		providers = storage.NewMemoryProviders()
	}

	lgr := opts.Logger
	if lgr == nil {
		lgr = &logger.Nop{}
	}

	c := opts.Cache
	if c == nil {
		c = &cache.Nop{}
	}

	source := opts.Source
	if source == nil {
		// The relay lets hosts without a platform bridge feed URLs in-process.
		source = capture.NewRelay()
	}

	client := opts.Client
	if client == nil {
		client = httpapi.New(
			httpapi.WithEndpoint(cfg.APIEndpoint),
			httpapi.WithHTTPClient(&http.Client{Timeout: cfg.Resolver.Timeout}),
			httpapi.WithMaxAttempts(cfg.Resolver.MaxAttempts),
			httpapi.WithLogger(lgr),
		)
	}

	gateway, err := resolver.NewGateway(resolver.Dependencies{
		Client: client,
		Logger: lgr,
	})
	if err != nil {
		return nil, err
	}

	// The journal service is always available for queries and commands;
	// cfg.Journal.Enabled only gates automatic recording via the sink.
	journalSvc, err := journal.New(journal.Dependencies{
		Repository:  providers.Activities,
		Transaction: providers.Transaction,
		Logger:      lgr,
	})
	if err != nil {
		return nil, err
	}

	sinkRegistry := sinks.NewRegistry(lgr)
	if cfg.Sinks.Console.Enabled {
		sinkRegistry.Register(console.New(lgr))
	}
	if cfg.Sinks.Webhook.Enabled {
		sinkRegistry.Register(webhook.New(lgr, webhook.WithConfig(webhook.Config{
			URL:    cfg.Sinks.Webhook.URL,
			Secret: cfg.Sinks.Webhook.Secret,
		})))
	}
	if cfg.Journal.Enabled {
		sinkRegistry.Register(sinks.Named("journal", journalSvc))
	}
	for _, s := range opts.Sinks {
		sinkRegistry.Register(s)
	}

	dispatcherSvc, err := dispatcher.New(dispatcher.Dependencies{
		Gateway: gateway,
		Source:  source,
		Sink:    sinkRegistry,
		Logger:  lgr,
	})
	if err != nil {
		return nil, err
	}

	lifecycleSvc, err := lifecycle.New(lifecycle.Dependencies{
		Gateway: gateway,
		Source:  source,
		Sink:    sinkRegistry,
		Cache:   c,
		Logger:  lgr,
		Config:  cfg.Lifecycle,
	})
	if err != nil {
		return nil, err
	}

	creds := opts.Credentials
	if creds == nil {
		creds, err = defaultCredentials(cfg, providers)
		if err != nil {
			return nil, err
		}
	}

	cmdRegistry, err := commands.New(commands.Dependencies{
		Lifecycle: lifecycleSvc,
		Journal:   journalSvc,
		Logger:    lgr,
	})
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:      cfg,
		Storage:     providers,
		Source:      source,
		Gateway:     gateway,
		Dispatcher:  dispatcherSvc,
		Lifecycle:   lifecycleSvc,
		Journal:     journalSvc,
		Commands:    cmdRegistry,
		Sinks:       sinkRegistry,
		Credentials: creds,
	}, nil
}

// defaultCredentials picks the credential provider: the encrypted store when
// an encryption key is configured, otherwise an in-process static provider.
func defaultCredentials(cfg config.Config, providers storage.Providers) (credentials.Provider, error) {
	if cfg.Credentials.EncryptionKey == "" {
		return credentials.NewStaticProvider(nil), nil
	}
	key, err := hex.DecodeString(cfg.Credentials.EncryptionKey)
	if err != nil {
		return nil, errors.New("di: credentials encryption key must be hex encoded")
	}
	return credentials.NewEncryptedStoreProvider(providers.Credentials, key)
}
