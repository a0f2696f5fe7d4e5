package console

import (
	"context"
	"fmt"

	"github.com/waylink/go-deeplink/pkg/interfaces/logger"
	"github.com/waylink/go-deeplink/pkg/interfaces/sink"
)

// Sink writes settled deep-link events to the configured logger for local
// debugging.
type Sink struct {
	name   string
	logger logger.Logger
	opts   Options
}

type Option func(*Sink)

// Options tweak console output.
type Options struct {
	Structured bool // when true, emit structured fields instead of a formatted line
}

// WithName overrides the sink name (defaults to "console").
func WithName(name string) Option {
	return func(s *Sink) {
		if name != "" {
			s.name = name
		}
	}
}

// WithStructured enables structured logging mode.
func WithStructured(enabled bool) Option {
	return func(s *Sink) {
		s.opts.Structured = enabled
	}
}

// New constructs a console sink.
func New(l logger.Logger, opts ...Option) *Sink {
	if l == nil {
		l = &logger.Nop{}
	}
	s := &Sink{name: "console", logger: l}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Name identifies the sink inside a registry.
func (s *Sink) Name() string {
	return s.name
}

// Deliver logs the settled event.
func (s *Sink) Deliver(ctx context.Context, d sink.Delivery) error {
	if link, ok := d.Event.Link(); ok {
		if s.opts.Structured {
			s.logger.Info("deep link resolved",
				logger.Field{Key: "source", Value: d.Source},
				logger.Field{Key: "url", Value: d.URL},
				logger.Field{Key: "link_id", Value: link.LinkID},
				logger.Field{Key: "destination", Value: link.Destination},
				logger.Field{Key: "deferred", Value: link.IsDeferred},
				logger.Field{Key: "match_type", Value: string(link.MatchType)},
			)
			return nil
		}
		s.logger.Info(fmt.Sprintf("[console][%s] resolved link=%s destination=%s deferred=%t",
			d.Source, link.LinkID, link.Destination, link.IsDeferred))
		return nil
	}

	if derr, ok := d.Event.Err(); ok {
		if s.opts.Structured {
			s.logger.Info("deep link failed",
				logger.Field{Key: "source", Value: d.Source},
				logger.Field{Key: "url", Value: d.URL},
				logger.Field{Key: "kind", Value: string(derr.Kind)},
				logger.Field{Key: "error", Value: derr.Message},
			)
			return nil
		}
		s.logger.Info(fmt.Sprintf("[console][%s] failed kind=%s error=%s",
			d.Source, derr.Kind, derr.Message))
	}

	return nil
}
