package dispatcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/waylink/go-deeplink/pkg/domain"
	"github.com/waylink/go-deeplink/pkg/interfaces/capture"
	"github.com/waylink/go-deeplink/pkg/interfaces/sink"
)

const eventWait = 2 * time.Second

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(Dependencies{Source: &stubSource{}}); !errors.Is(err, ErrMissingGateway) {
		t.Fatalf("expected ErrMissingGateway, got %v", err)
	}
	if _, err := New(Dependencies{Gateway: &stubGateway{}}); !errors.Is(err, ErrMissingSource) {
		t.Fatalf("expected ErrMissingSource, got %v", err)
	}
}

func TestFanOutDeliversSameEventToEveryListener(t *testing.T) {
	source := &stubSource{}
	gateway := &stubGateway{}
	svc, err := New(Dependencies{Gateway: gateway, Source: source})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	first := make(chan domain.DeepLinkEvent, 2)
	second := make(chan domain.DeepLinkEvent, 2)
	if _, err := svc.Subscribe(func(evt domain.DeepLinkEvent) { first <- evt }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := svc.Subscribe(func(evt domain.DeepLinkEvent) { second <- evt }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	source.emit("https://wayl.ink/a")

	evtA := waitEvent(t, first)
	evtB := waitEvent(t, second)

	linkA, ok := evtA.Link()
	if !ok {
		t.Fatalf("expected link event, got %+v", evtA)
	}
	linkB, _ := evtB.Link()
	if linkA != linkB {
		t.Fatal("expected both listeners to receive the identical link")
	}
	if linkA.Destination != "https://wayl.ink/a" {
		t.Fatalf("unexpected link %+v", linkA)
	}

	select {
	case evt := <-first:
		t.Fatalf("listener invoked more than once: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeBeforeSettlementSkipsListener(t *testing.T) {
	release := make(chan struct{})
	gateway := &stubGateway{resolveFn: func(url string) (*domain.ResolvedLink, error) {
		<-release
		return &domain.ResolvedLink{LinkID: "lnk_1", Destination: url}, nil
	}}
	source := &stubSource{}
	svc, err := New(Dependencies{Gateway: gateway, Source: source})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	gone := make(chan domain.DeepLinkEvent, 1)
	kept := make(chan domain.DeepLinkEvent, 1)
	unsub, err := svc.Subscribe(func(evt domain.DeepLinkEvent) { gone <- evt })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := svc.Subscribe(func(evt domain.DeepLinkEvent) { kept <- evt }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	source.emit("https://wayl.ink/pending")
	waitFor(t, func() bool { return gateway.callCount() == 1 })

	unsub()
	unsub()
	close(release)

	waitEvent(t, kept)
	select {
	case evt := <-gone:
		t.Fatalf("unsubscribed listener received event %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSourceSubscriptionFollowsListenerCount(t *testing.T) {
	source := &stubSource{}
	gateway := &stubGateway{}
	svc, err := New(Dependencies{Gateway: gateway, Source: source})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if subs, _ := source.counts(); subs != 0 {
		t.Fatalf("expected no source subscription before the first listener, got %d", subs)
	}

	unsubA, err := svc.Subscribe(func(domain.DeepLinkEvent) {})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	unsubB, err := svc.Subscribe(func(domain.DeepLinkEvent) {})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if subs, _ := source.counts(); subs != 1 {
		t.Fatalf("expected a single source subscription, got %d", subs)
	}

	unsubA()
	if _, stops := source.counts(); stops != 0 {
		t.Fatal("subscription torn down while a listener remains")
	}
	unsubB()
	if _, stops := source.counts(); stops != 1 {
		t.Fatalf("expected teardown after the last unsubscribe")
	}

	source.emit("https://wayl.ink/zero")
	if gateway.callCount() != 0 {
		t.Fatal("push with zero listeners must not resolve")
	}

	unsubC, err := svc.Subscribe(func(domain.DeepLinkEvent) {})
	if err != nil {
		t.Fatalf("resubscribe: %v", err)
	}
	defer unsubC()
	if subs, _ := source.counts(); subs != 2 {
		t.Fatalf("expected a fresh subscription after resubscribe, got %d", subs)
	}
}

func TestListenerMayChangeSetDuringDelivery(t *testing.T) {
	source := &stubSource{}
	gateway := &stubGateway{}
	svc, err := New(Dependencies{Gateway: gateway, Source: source})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	first := make(chan domain.DeepLinkEvent, 2)
	late := make(chan domain.DeepLinkEvent, 2)
	subErrs := make(chan error, 1)

	var unsub func()
	var once sync.Once
	unsub, err = svc.Subscribe(func(evt domain.DeepLinkEvent) {
		once.Do(func() {
			if _, err := svc.Subscribe(func(evt domain.DeepLinkEvent) { late <- evt }); err != nil {
				subErrs <- err
			}
			unsub()
		})
		first <- evt
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	source.emit("https://wayl.ink/one")
	waitEvent(t, first)
	select {
	case err := <-subErrs:
		t.Fatalf("re-entrant subscribe: %v", err)
	default:
	}

	source.emit("https://wayl.ink/two")
	waitEvent(t, late)
	select {
	case evt := <-first:
		t.Fatalf("self-removed listener received event %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestResolutionFailureDeliversErrorEvent(t *testing.T) {
	gateway := &stubGateway{resolveFn: func(url string) (*domain.ResolvedLink, error) {
		return nil, domain.NewError(domain.KindNetworkError, "socket closed")
	}}
	source := &stubSource{}
	svc, err := New(Dependencies{Gateway: gateway, Source: source})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	events := make(chan domain.DeepLinkEvent, 1)
	if _, err := svc.Subscribe(func(evt domain.DeepLinkEvent) { events <- evt }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	source.emit("https://wayl.ink/down")

	evt := waitEvent(t, events)
	typed, ok := evt.Err()
	if !ok {
		t.Fatalf("expected error event, got %+v", evt)
	}
	if typed.Kind != domain.KindNetworkError || typed.Message != "socket closed" {
		t.Fatalf("unexpected error %+v", typed)
	}
}

func TestNoMatchDeliversNothing(t *testing.T) {
	gateway := &stubGateway{resolveFn: func(url string) (*domain.ResolvedLink, error) {
		return nil, nil
	}}
	source := &stubSource{}
	recorded := &captureSink{deliveries: make(chan sink.Delivery, 1)}
	svc, err := New(Dependencies{Gateway: gateway, Source: source, Sink: recorded})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	events := make(chan domain.DeepLinkEvent, 1)
	if _, err := svc.Subscribe(func(evt domain.DeepLinkEvent) { events <- evt }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	source.emit("https://wayl.ink/miss")
	waitFor(t, func() bool { return gateway.callCount() == 1 })

	select {
	case evt := <-events:
		t.Fatalf("expected no delivery for a no-match url, got %+v", evt)
	case d := <-recorded.deliveries:
		t.Fatalf("expected no sink delivery for a no-match url, got %+v", d)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSinkObservesPushDeliveries(t *testing.T) {
	source := &stubSource{}
	recorded := &captureSink{deliveries: make(chan sink.Delivery, 1)}
	svc, err := New(Dependencies{Gateway: &stubGateway{}, Source: source, Sink: recorded})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, err := svc.Subscribe(func(domain.DeepLinkEvent) {}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	source.emit("https://wayl.ink/journal")

	var delivery sink.Delivery
	select {
	case delivery = <-recorded.deliveries:
	case <-time.After(eventWait):
		t.Fatal("timed out waiting for sink delivery")
	}
	if delivery.Source != domain.ActivitySourcePush {
		t.Fatalf("unexpected delivery source %q", delivery.Source)
	}
	if delivery.URL != "https://wayl.ink/journal" {
		t.Fatalf("unexpected delivery url %q", delivery.URL)
	}
	if _, ok := delivery.Event.Link(); !ok {
		t.Fatalf("expected link event in delivery, got %+v", delivery.Event)
	}
}

func TestOverlappingResolutionsSettleIndependently(t *testing.T) {
	gates := map[string]chan struct{}{
		"https://wayl.ink/slow": make(chan struct{}),
		"https://wayl.ink/fast": make(chan struct{}),
	}
	gateway := &stubGateway{resolveFn: func(url string) (*domain.ResolvedLink, error) {
		<-gates[url]
		return &domain.ResolvedLink{LinkID: url, Destination: url}, nil
	}}
	source := &stubSource{}
	svc, err := New(Dependencies{Gateway: gateway, Source: source})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	events := make(chan domain.DeepLinkEvent, 2)
	if _, err := svc.Subscribe(func(evt domain.DeepLinkEvent) { events <- evt }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	source.emit("https://wayl.ink/slow")
	source.emit("https://wayl.ink/fast")
	waitFor(t, func() bool { return gateway.callCount() == 2 })

	close(gates["https://wayl.ink/fast"])
	evt := waitEvent(t, events)
	if link, _ := evt.Link(); link.LinkID != "https://wayl.ink/fast" {
		t.Fatalf("expected the released resolution to settle first, got %s", link.LinkID)
	}

	close(gates["https://wayl.ink/slow"])
	evt = waitEvent(t, events)
	if link, _ := evt.Link(); link.LinkID != "https://wayl.ink/slow" {
		t.Fatalf("expected the slow resolution to settle last, got %s", link.LinkID)
	}
}

func TestSubscribeSurfacesSourceFailure(t *testing.T) {
	source := &stubSource{subErr: errors.New("platform unavailable")}
	svc, err := New(Dependencies{Gateway: &stubGateway{}, Source: source})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, err := svc.Subscribe(func(domain.DeepLinkEvent) {}); err == nil {
		t.Fatal("expected subscribe to surface the source failure")
	}
	if svc.listenerCount() != 0 {
		t.Fatal("failed subscribe must not register the listener")
	}
}

func TestCloseDetachesFromSource(t *testing.T) {
	source := &stubSource{}
	svc, err := New(Dependencies{Gateway: &stubGateway{}, Source: source})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	unsub, err := svc.Subscribe(func(domain.DeepLinkEvent) {})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	svc.Close()
	if _, stops := source.counts(); stops != 1 {
		t.Fatal("expected close to tear down the source subscription")
	}
	unsub()
	if _, stops := source.counts(); stops != 1 {
		t.Fatal("stale unsubscribe must not tear down twice")
	}
}

func waitEvent(t *testing.T, ch <-chan domain.DeepLinkEvent) domain.DeepLinkEvent {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(eventWait):
		t.Fatal("timed out waiting for event")
		return domain.DeepLinkEvent{}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(eventWait)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

type stubSource struct {
	mu      sync.Mutex
	handler func(capture.PushEvent)
	subs    int
	stops   int
	subErr  error
}

func (s *stubSource) InitialURL(ctx context.Context) (string, bool, error) {
	return "", false, nil
}

func (s *stubSource) Subscribe(handler func(capture.PushEvent)) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subErr != nil {
		return nil, s.subErr
	}
	s.subs++
	s.handler = handler
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.stops++
		s.handler = nil
	}, nil
}

func (s *stubSource) emit(url string) {
	s.mu.Lock()
	handler := s.handler
	s.mu.Unlock()
	if handler != nil {
		handler(capture.PushEvent{URL: url})
	}
}

func (s *stubSource) counts() (subs, stops int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs, s.stops
}

type stubGateway struct {
	mu        sync.Mutex
	calls     []string
	resolveFn func(url string) (*domain.ResolvedLink, error)
}

func (g *stubGateway) Resolve(ctx context.Context, url string) (*domain.ResolvedLink, error) {
	g.mu.Lock()
	g.calls = append(g.calls, url)
	fn := g.resolveFn
	g.mu.Unlock()
	if fn != nil {
		return fn(url)
	}
	return &domain.ResolvedLink{LinkID: "lnk_1", Destination: url}, nil
}

func (g *stubGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type captureSink struct {
	deliveries chan sink.Delivery
}

func (c *captureSink) Deliver(ctx context.Context, delivery sink.Delivery) error {
	c.deliveries <- delivery
	return nil
}
