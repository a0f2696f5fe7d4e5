package sink

import (
	"context"

	"github.com/waylink/go-deeplink/pkg/domain"
)

// Delivery carries one settled deep-link event plus its provenance.
type Delivery struct {
	// Source is one of the domain.ActivitySource constants.
	Source string
	// URL is the raw URL that triggered the resolution, when known.
	URL   string
	Event domain.DeepLinkEvent
}

// Sink observes settled deep-link events for side processing such as
// journaling or forwarding. Sinks run off the listener delivery path; a
// sink error never blocks or fails delivery to subscribers.
type Sink interface {
	Deliver(ctx context.Context, delivery Delivery) error
}

// Nop sink discards deliveries.
type Nop struct{}

var _ Sink = (*Nop)(nil)

func (n *Nop) Deliver(ctx context.Context, delivery Delivery) error { return nil }
