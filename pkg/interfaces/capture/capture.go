package capture

import "context"

// PushEvent carries one URL observed by the platform layer while the app is
// running.
type PushEvent struct {
	URL string
}

// Source is implemented by the platform layer that watches OS-level URL
// opens. It exposes the two delivery paths the bridge consumes: the URL
// that launched the app, and a push stream of URLs arriving afterwards.
type Source interface {
	// InitialURL reports the URL that launched the app, if any. The value
	// stays in place; one-shot consumption is tracked by the caller, not
	// the platform.
	InitialURL(ctx context.Context) (string, bool, error)
	// Subscribe registers handler with the push stream and returns a stop
	// function that detaches it. A source accepts at most one handler at a
	// time; the bridge maintains its own listener fan-out on top.
	Subscribe(handler func(PushEvent)) (stop func(), err error)
}

// Nop source holds no initial URL and never pushes.
type Nop struct{}

var _ Source = (*Nop)(nil)

func (n *Nop) InitialURL(ctx context.Context) (string, bool, error) { return "", false, nil }
func (n *Nop) Subscribe(handler func(PushEvent)) (func(), error)    { return func() {}, nil }
