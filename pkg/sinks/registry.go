package sinks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/waylink/go-deeplink/pkg/interfaces/logger"
	"github.com/waylink/go-deeplink/pkg/interfaces/sink"
)

// Sink is implemented by named event sinks (console, webhook, journal).
type Sink interface {
	sink.Sink
	Name() string
}

// Named attaches a registry name to an anonymous sink.
func Named(name string, s sink.Sink) Sink {
	return &named{name: name, sink: s}
}

type named struct {
	name string
	sink sink.Sink
}

func (n *named) Name() string { return n.name }

func (n *named) Deliver(ctx context.Context, delivery sink.Delivery) error {
	if n.sink == nil {
		return nil
	}
	return n.sink.Deliver(ctx, delivery)
}

// Registry fans settled events out to every registered sink in registration
// order. A failing sink never keeps the remaining sinks from observing the
// delivery.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	sinks  map[string]Sink
	logger logger.Logger
}

var _ sink.Sink = (*Registry)(nil)

// NewRegistry builds a registry with the supplied sinks.
func NewRegistry(l logger.Logger, entries ...Sink) *Registry {
	if l == nil {
		l = &logger.Nop{}
	}
	reg := &Registry{
		sinks:  make(map[string]Sink),
		logger: l,
	}
	for _, entry := range entries {
		reg.Register(entry)
	}
	return reg
}

// Register adds a sink, indexed by its normalized name. Registering a name
// twice replaces the earlier sink but keeps its delivery position.
func (r *Registry) Register(s Sink) {
	if r == nil || s == nil {
		return
	}
	name := normalizeKey(s.Name())
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sinks[name]; !exists {
		r.order = append(r.order, name)
	}
	r.sinks[name] = s
}

// Names lists the registered sinks in delivery order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Deliver hands the delivery to every sink. All sinks run even when earlier
// ones fail; the last failure is returned.
func (r *Registry) Deliver(ctx context.Context, delivery sink.Delivery) error {
	r.mu.RLock()
	snapshot := make([]Sink, 0, len(r.order))
	for _, name := range r.order {
		snapshot = append(snapshot, r.sinks[name])
	}
	r.mu.RUnlock()

	var lastErr error
	for _, entry := range snapshot {
		if err := entry.Deliver(ctx, delivery); err != nil {
			r.logger.Warn("sink delivery failed",
				logger.Field{Key: "sink", Value: entry.Name()},
				logger.Field{Key: "source", Value: delivery.Source},
				logger.Field{Key: "error", Value: err},
			)
			lastErr = fmt.Errorf("sinks: %s: %w", entry.Name(), err)
		}
	}
	return lastErr
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
