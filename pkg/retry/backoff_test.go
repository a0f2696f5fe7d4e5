package retry

import (
	"context"
	"testing"
	"time"
)

func TestExponentialBackoffGrowsAndCaps(t *testing.T) {
	b := ExponentialBackoff{Base: 100 * time.Millisecond, Max: 500 * time.Millisecond}

	cases := map[int]time.Duration{
		0: 100 * time.Millisecond, // attempts below 1 clamp to 1
		1: 100 * time.Millisecond,
		2: 200 * time.Millisecond,
		3: 400 * time.Millisecond,
		4: 500 * time.Millisecond,
		9: 500 * time.Millisecond,
	}
	for attempt, want := range cases {
		if got := b.Next(attempt); got != want {
			t.Fatalf("attempt %d: expected %v, got %v", attempt, want, got)
		}
	}
}

func TestExponentialBackoffDefaultsBase(t *testing.T) {
	b := ExponentialBackoff{}
	if got := b.Next(1); got != 100*time.Millisecond {
		t.Fatalf("expected default base delay, got %v", got)
	}
}

func TestWaitHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Wait(ctx, ExponentialBackoff{Base: time.Hour}, 1)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitCompletesShortDelay(t *testing.T) {
	if err := Wait(context.Background(), ExponentialBackoff{Base: time.Millisecond}, 1); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
