package resilience_test

import (
	"errors"
	"testing"
	"time"

	"github.com/pkodial/tulubot/internal/resilience"
)

var errBoom = errors.New("boom")

func failing() error { return errBoom }
func succeeding() error { return nil }

func TestBreakerOpensAfterThreshold(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(resilience.Config{Name: "test", Threshold: 2, Cooldown: time.Hour})

	for i := 0; i < 2; i++ {
		if err := b.Do(failing); !errors.Is(err, errBoom) {
			t.Fatalf("Do #%d: expected errBoom, got %v", i, err)
		}
	}
	if got := b.State(); got != resilience.Open {
		t.Fatalf("State = %v, want open", got)
	}
	if err := b.Do(succeeding); !errors.Is(err, resilience.ErrOpen) {
		t.Fatalf("Do while open: expected ErrOpen, got %v", err)
	}
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(resilience.Config{Name: "test", Threshold: 2, Cooldown: time.Hour})

	_ = b.Do(failing)
	_ = b.Do(succeeding)
	_ = b.Do(failing)

	if got := b.State(); got != resilience.Closed {
		t.Fatalf("State = %v, want closed (non-consecutive failures)", got)
	}
}

func TestBreakerProbeClosesOnSuccess(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(resilience.Config{Name: "test", Threshold: 1, Cooldown: 10 * time.Millisecond})

	_ = b.Do(failing)
	if got := b.State(); got != resilience.Open {
		t.Fatalf("State = %v, want open", got)
	}

	time.Sleep(20 * time.Millisecond)
	if got := b.State(); got != resilience.HalfOpen {
		t.Fatalf("State after cooldown = %v, want half-open", got)
	}

	if err := b.Do(succeeding); err != nil {
		t.Fatalf("probe: unexpected error %v", err)
	}
	if got := b.State(); got != resilience.Closed {
		t.Fatalf("State after probe = %v, want closed", got)
	}
}

func TestBreakerProbeReopensOnFailure(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(resilience.Config{Name: "test", Threshold: 1, Cooldown: 10 * time.Millisecond})

	_ = b.Do(failing)
	time.Sleep(20 * time.Millisecond)

	if err := b.Do(failing); !errors.Is(err, errBoom) {
		t.Fatalf("probe: expected errBoom, got %v", err)
	}
	if got := b.State(); got != resilience.Open {
		t.Fatalf("State after failed probe = %v, want open", got)
	}
}

func TestBreakerReset(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(resilience.Config{Name: "test", Threshold: 1, Cooldown: time.Hour})
	_ = b.Do(failing)
	b.Reset()

	if got := b.State(); got != resilience.Closed {
		t.Fatalf("State after Reset = %v, want closed", got)
	}
	if err := b.Do(succeeding); err != nil {
		t.Fatalf("Do after Reset: %v", err)
	}
}
