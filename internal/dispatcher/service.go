package dispatcher

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/waylink/go-deeplink/pkg/domain"
	"github.com/waylink/go-deeplink/pkg/interfaces/capture"
	"github.com/waylink/go-deeplink/pkg/interfaces/logger"
	"github.com/waylink/go-deeplink/pkg/interfaces/sink"
)

// resolverGateway is the slice of the resolver gateway the dispatcher uses.
type resolverGateway interface {
	Resolve(ctx context.Context, url string) (*domain.ResolvedLink, error)
}

// Listener receives settled deep-link events. Listeners may subscribe or
// unsubscribe from within the callback.
type Listener func(domain.DeepLinkEvent)

// Dependencies groups the collaborators required by the dispatcher.
type Dependencies struct {
	Gateway resolverGateway
	Source  capture.Source
	Sink    sink.Sink
	Logger  logger.Logger
}

// Service fans push-driven deep-link events out to registered listeners. It
// holds at most one subscription against the capture source: the first
// listener establishes it, removing the last listener tears it down.
type Service struct {
	gateway resolverGateway
	source  capture.Source
	sink    sink.Sink
	logger  logger.Logger

	mu        sync.Mutex
	listeners map[uint64]Listener
	nextID    uint64
	stop      func()
}

var (
	ErrMissingGateway = errors.New("dispatcher: resolver gateway is required")
	ErrMissingSource  = errors.New("dispatcher: capture source is required")
	ErrNilListener    = errors.New("dispatcher: listener is required")
)

// New builds the dispatcher service.
func New(deps Dependencies) (*Service, error) {
	if deps.Gateway == nil {
		return nil, ErrMissingGateway
	}

	if deps.Source == nil {
		return nil, ErrMissingSource
	}

	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}

	if deps.Sink == nil {
		deps.Sink = &sink.Nop{}
	}

	return &Service{
		gateway:   deps.Gateway,
		source:    deps.Source,
		sink:      deps.Sink,
		logger:    deps.Logger,
		listeners: make(map[uint64]Listener),
	}, nil
}

// Subscribe adds a listener and returns its unsubscribe function. The first
// listener attaches the service to the capture source; when the returned
// function removes the last listener, the source subscription is torn down.
// Calling the returned function more than once is a no-op after the first
// call.
func (s *Service) Subscribe(listener Listener) (func(), error) {
	if listener == nil {
		return nil, ErrNilListener
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop == nil {
		stop, err := s.source.Subscribe(s.handlePush)
		if err != nil {
			return nil, err
		}
		s.stop = stop
	}

	id := s.nextID
	s.nextID++
	s.listeners[id] = listener

	return func() { s.remove(id) }, nil
}

func (s *Service) remove(id uint64) {
	s.mu.Lock()
	delete(s.listeners, id)
	var stop func()
	if len(s.listeners) == 0 && s.stop != nil {
		stop = s.stop
		s.stop = nil
	}
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// Close drops every listener and detaches from the capture source.
func (s *Service) Close() {
	s.mu.Lock()
	s.listeners = make(map[uint64]Listener)
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
}

func (s *Service) listenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// handlePush starts one resolution per push event. Overlapping events
// resolve concurrently; listeners observe events in settlement order, not
// arrival order.
func (s *Service) handlePush(evt capture.PushEvent) {
	go s.process(context.Background(), evt.URL)
}

func (s *Service) process(ctx context.Context, url string) {
	if s.listenerCount() == 0 {
		return
	}

	link, err := s.gateway.Resolve(ctx, url)

	var event domain.DeepLinkEvent
	switch {
	case err != nil:
		event = domain.NewErrorEvent(domain.FromExternal(err))
	case link == nil:
		// No match carries neither event arm, so there is nothing to
		// deliver.
		s.logger.Debug("push url resolved to no match", logger.Field{Key: "url", Value: url})
		return
	default:
		event = domain.NewLinkEvent(link)
	}

	s.publish(event)

	delivery := sink.Delivery{Source: domain.ActivitySourcePush, URL: url, Event: event}
	if err := s.sink.Deliver(ctx, delivery); err != nil {
		s.logger.Warn("event sink delivery failed",
			logger.Field{Key: "url", Value: url},
			logger.Field{Key: "error", Value: err},
		)
	}
}

// publish hands the identical event to every listener registered at
// settlement time. The set is snapshotted first so listeners can subscribe
// or unsubscribe mid-delivery.
func (s *Service) publish(event domain.DeepLinkEvent) {
	s.mu.Lock()
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	snapshot := make([]Listener, 0, len(ids))
	for _, id := range ids {
		snapshot = append(snapshot, s.listeners[id])
	}
	s.mu.Unlock()

	for _, listener := range snapshot {
		listener(event)
	}
}
