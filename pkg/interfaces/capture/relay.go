package capture

import (
	"context"
	"errors"
	"sync"
)

// Relay is an in-process Source implementation. Host apps and tests feed it
// URLs; the bridge consumes them through the Source contract.
type Relay struct {
	mu         sync.Mutex
	initialURL string
	hasInitial bool
	handler    func(PushEvent)
}

var _ Source = (*Relay)(nil)

// ErrHandlerRegistered is returned when a second push handler is attached
// before the first is stopped.
var ErrHandlerRegistered = errors.New("capture: push handler already registered")

// NewRelay builds an empty relay.
func NewRelay() *Relay {
	return &Relay{}
}

// SetInitialURL records the URL that launched the app. Later calls replace
// the value; the platform contract sets it at most once before the bridge
// starts.
func (r *Relay) SetInitialURL(url string) {
	r.mu.Lock()
	r.initialURL = url
	r.hasInitial = url != ""
	r.mu.Unlock()
}

// InitialURL implements Source. The relay keeps the value; destructive
// consumption belongs to the caller.
func (r *Relay) InitialURL(ctx context.Context) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initialURL, r.hasInitial, nil
}

// Subscribe implements Source.
func (r *Relay) Subscribe(handler func(PushEvent)) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handler != nil {
		return nil, ErrHandlerRegistered
	}
	r.handler = handler
	return func() {
		r.mu.Lock()
		r.handler = nil
		r.mu.Unlock()
	}, nil
}

// Emit pushes a URL to the attached handler. Emits with no handler attached
// are dropped, mirroring a platform stream nobody listens to.
func (r *Relay) Emit(url string) {
	r.mu.Lock()
	handler := r.handler
	r.mu.Unlock()
	if handler != nil {
		handler(PushEvent{URL: url})
	}
}

// Attached reports whether a push handler is currently registered.
func (r *Relay) Attached() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handler != nil
}
