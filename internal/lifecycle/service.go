package lifecycle

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/waylink/go-deeplink/pkg/config"
	"github.com/waylink/go-deeplink/pkg/domain"
	"github.com/waylink/go-deeplink/pkg/interfaces/cache"
	"github.com/waylink/go-deeplink/pkg/interfaces/capture"
	"github.com/waylink/go-deeplink/pkg/interfaces/logger"
	"github.com/waylink/go-deeplink/pkg/interfaces/sink"
	"github.com/waylink/go-deeplink/pkg/resolver"
)

// resolverGateway is the gateway surface the coordinator drives.
type resolverGateway interface {
	Configure(ctx context.Context, cfg resolver.Config) error
	Resolve(ctx context.Context, url string) (*domain.ResolvedLink, error)
	ResolveDeferred(ctx context.Context) (*domain.ResolvedLink, error)
	Attribution(ctx context.Context) (*domain.AttributionResult, error)
	IsConfigured(ctx context.Context) (bool, error)
}

// Phase tracks where the latest configure call stands against the
// resolution service.
type Phase string

const (
	PhaseUnconfigured Phase = "unconfigured"
	PhaseDelegating   Phase = "delegating"
	PhaseAccepted     Phase = "accepted"
	PhaseRejected     Phase = "rejected"
)

// ConfigStatus is a point-in-time view of the configure handshake. Configure
// itself reports local validation only; the asynchronous service verdict is
// observable here.
type ConfigStatus struct {
	Phase        Phase
	Environment  string
	ConfiguredAt time.Time
	SettledAt    time.Time
	Err          *domain.Error
}

// Dependencies wires the coordinator's collaborators.
type Dependencies struct {
	Gateway resolverGateway
	Source  capture.Source
	Sink    sink.Sink
	Cache   cache.Cache
	Logger  logger.Logger
	Config  config.LifecycleConfig
}

// Service owns the client lifecycle: the configuration gate, one-shot
// cold-start retrieval, and the single-shot resolution operations.
type Service struct {
	gateway  resolverGateway
	source   capture.Source
	sink     sink.Sink
	cache    cache.Cache
	logger   logger.Logger
	cacheTTL time.Duration
	now      func() time.Time

	mu         sync.Mutex
	configured bool
	consumed   bool
	generation uint64
	status     ConfigStatus
}

var (
	ErrMissingGateway = errors.New("lifecycle: resolver gateway is required")
	ErrMissingSource  = errors.New("lifecycle: capture source is required")
)

const attributionCacheKey = "deeplink:attribution"

// New builds the lifecycle coordinator.
func New(deps Dependencies) (*Service, error) {
	if deps.Gateway == nil {
		return nil, ErrMissingGateway
	}
	if deps.Source == nil {
		return nil, ErrMissingSource
	}
	if deps.Sink == nil {
		deps.Sink = &sink.Nop{}
	}
	if deps.Cache == nil {
		deps.Cache = &cache.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	if deps.Config.AttributionCacheTTL <= 0 {
		deps.Config.AttributionCacheTTL = 5 * time.Minute
	}

	return &Service{
		gateway:  deps.Gateway,
		source:   deps.Source,
		sink:     deps.Sink,
		cache:    deps.Cache,
		logger:   deps.Logger,
		cacheTTL: deps.Config.AttributionCacheTTL,
		now:      time.Now,
		status:   ConfigStatus{Phase: PhaseUnconfigured},
	}, nil
}

// Configure validates the key format locally and, on success, opens the
// operation gate and hands the config to the resolution service in the
// background. The returned error reports format validation only; the
// service verdict lands in ConfigurationStatus. A malformed key makes no
// resolver call and leaves the current state untouched. Configure may be
// called again at any time; the latest call wins.
func (s *Service) Configure(cfg resolver.Config) error {
	if err := domain.ValidateAPIKey(cfg.APIKey); err != nil {
		return err
	}

	s.mu.Lock()
	s.configured = true
	s.generation++
	gen := s.generation
	s.status = ConfigStatus{
		Phase:        PhaseDelegating,
		Environment:  domain.KeyEnvironment(cfg.APIKey),
		ConfiguredAt: s.now(),
	}
	s.mu.Unlock()

	// A new key can change install attribution.
	_ = s.cache.Delete(context.Background(), attributionCacheKey)

	go s.delegate(gen, cfg)
	return nil
}

func (s *Service) delegate(gen uint64, cfg resolver.Config) {
	err := s.gateway.Configure(context.Background(), cfg)

	var rejected *domain.Error
	s.mu.Lock()
	if gen == s.generation {
		s.status.SettledAt = s.now()
		if err != nil {
			rejected = domain.FromExternal(err)
			s.status.Phase = PhaseRejected
			s.status.Err = rejected
		} else {
			s.status.Phase = PhaseAccepted
			s.status.Err = nil
		}
	}
	s.mu.Unlock()

	if rejected != nil {
		s.logger.Warn("configuration rejected by resolver service",
			logger.Field{Key: "kind", Value: rejected.Kind},
			logger.Field{Key: "error", Value: rejected.Message},
		)
	}
}

// ConfigurationStatus reports the asynchronous outcome of the latest
// Configure call.
func (s *Service) ConfigurationStatus() ConfigStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Service) requireConfigured() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.configured {
		return domain.NewError(domain.KindNotConfigured, "configure must be called first")
	}
	return nil
}

// InitialLink returns the resolved cold-start link. The first call consumes
// the captured URL for the rest of the process lifetime: later calls return
// nil even when the platform layer still holds the original value. A call
// rejected by the configuration gate does not consume.
func (s *Service) InitialLink(ctx context.Context) (*domain.ResolvedLink, error) {
	if err := s.requireConfigured(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.consumed {
		s.mu.Unlock()
		return nil, nil
	}
	s.consumed = true
	s.mu.Unlock()

	url, ok, err := s.source.InitialURL(ctx)
	if err != nil {
		return nil, domain.FromExternal(err)
	}
	if !ok || url == "" {
		return nil, nil
	}

	link, err := s.gateway.Resolve(ctx, url)
	if err != nil {
		typed := domain.FromExternal(err)
		s.notify(ctx, domain.ActivitySourceInitial, url, domain.NewErrorEvent(typed))
		return nil, typed
	}
	if link == nil {
		return nil, nil
	}
	s.notify(ctx, domain.ActivitySourceInitial, url, domain.NewLinkEvent(link))
	return link, nil
}

// ResolveLink resolves a single URL on demand.
func (s *Service) ResolveLink(ctx context.Context, url string) (*domain.ResolvedLink, error) {
	if err := s.requireConfigured(); err != nil {
		return nil, err
	}

	link, err := s.gateway.Resolve(ctx, url)
	if err != nil {
		typed := domain.FromExternal(err)
		s.notify(ctx, domain.ActivitySourceManual, url, domain.NewErrorEvent(typed))
		return nil, typed
	}
	if link == nil {
		return nil, nil
	}
	s.notify(ctx, domain.ActivitySourceManual, url, domain.NewLinkEvent(link))
	return link, nil
}

// CheckDeferredLink surfaces the install-time deferred link. The
// once-per-install guarantee lives in the resolution service; a repeat
// check comes back nil.
func (s *Service) CheckDeferredLink(ctx context.Context) (*domain.ResolvedLink, error) {
	if err := s.requireConfigured(); err != nil {
		return nil, err
	}

	link, err := s.gateway.ResolveDeferred(ctx)
	if err != nil {
		typed := domain.FromExternal(err)
		s.notify(ctx, domain.ActivitySourceDeferred, "", domain.NewErrorEvent(typed))
		return nil, typed
	}
	if link == nil {
		return nil, nil
	}
	s.notify(ctx, domain.ActivitySourceDeferred, link.DeepLinkURL, domain.NewLinkEvent(link))
	return link, nil
}

// Attribution returns install attribution, serving repeat calls from the
// cache within the TTL. Only a present attribution is cached so a pending
// match keeps being asked for.
func (s *Service) Attribution(ctx context.Context) (*domain.AttributionResult, error) {
	if err := s.requireConfigured(); err != nil {
		return nil, err
	}

	if cached, ok, err := s.cache.Get(ctx, attributionCacheKey); err == nil && ok {
		if result, ok := cached.(*domain.AttributionResult); ok {
			return result, nil
		}
	}

	result, err := s.gateway.Attribution(ctx)
	if err != nil {
		return nil, domain.FromExternal(err)
	}
	if result == nil {
		return nil, nil
	}
	if err := s.cache.Set(ctx, attributionCacheKey, result, s.cacheTTL); err != nil {
		s.logger.Warn("attribution cache write failed", logger.Field{Key: "error", Value: err})
	}
	return result, nil
}

// IsConfigured asks the resolution service whether the current key is
// registered. It is not gated: before configure it simply answers false.
func (s *Service) IsConfigured(ctx context.Context) (bool, error) {
	ok, err := s.gateway.IsConfigured(ctx)
	if err != nil {
		return false, domain.FromExternal(err)
	}
	return ok, nil
}

func (s *Service) notify(ctx context.Context, source, url string, event domain.DeepLinkEvent) {
	delivery := sink.Delivery{Source: source, URL: url, Event: event}
	if err := s.sink.Deliver(ctx, delivery); err != nil {
		s.logger.Warn("event sink delivery failed",
			logger.Field{Key: "source", Value: source},
			logger.Field{Key: "error", Value: err},
		)
	}
}
