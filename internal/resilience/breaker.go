// Package resilience provides the circuit breaker that protects translation
// backends.
//
// Each backend gets its own [Breaker]. A backend that fails repeatedly is
// skipped for a cooldown period instead of being hammered on every resolve
// call; after the cooldown a single probe call decides whether it rejoins
// the rotation.
//
// All types are safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned by [Breaker.Do] when the breaker is open and the
// cooldown has not yet elapsed.
var ErrOpen = errors.New("resilience: breaker is open")

// State is the operating mode of a [Breaker].
type State int

const (
	// Closed forwards all calls.
	Closed State = iota

	// Open rejects all calls with [ErrOpen] until the cooldown elapses.
	Open

	// HalfOpen lets a single probe call through; its outcome decides the
	// next state.
	HalfOpen
)

// String returns the human-readable name of the state.
func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config holds the tuning knobs for a [Breaker].
type Config struct {
	// Name labels the breaker in log messages, typically the backend name.
	Name string

	// Threshold is the number of consecutive failures that trips the
	// breaker. Default: 3.
	Threshold int

	// Cooldown is how long the breaker stays open before allowing a
	// probe. Default: 60s.
	Cooldown time.Duration
}

// Breaker is a three-state circuit breaker with a single-probe half-open
// phase.
type Breaker struct {
	name      string
	threshold int
	cooldown  time.Duration

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

// NewBreaker creates a [Breaker]. Zero-value config fields get defaults.
func NewBreaker(cfg Config) *Breaker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 60 * time.Second
	}
	return &Breaker{
		name:      cfg.Name,
		threshold: cfg.Threshold,
		cooldown:  cfg.Cooldown,
	}
}

// Do runs fn if the breaker allows it. In the open state it returns [ErrOpen]
// without calling fn. After the cooldown exactly one caller is admitted as a
// probe; concurrent callers during the probe still get [ErrOpen].
func (b *Breaker) Do(fn func() error) error {
	if err := b.admit(); err != nil {
		return err
	}

	err := fn()
	b.record(err)
	return err
}

// admit decides whether a call may proceed, transitioning open → half-open
// when the cooldown has elapsed.
func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return nil
	case Open:
		if time.Since(b.openedAt) < b.cooldown {
			return ErrOpen
		}
		b.state = HalfOpen
		b.probing = true
		slog.Debug("breaker half-open, probing", "name", b.name)
		return nil
	case HalfOpen:
		if b.probing {
			return ErrOpen
		}
		b.probing = true
		return nil
	}
	return nil
}

// record applies the outcome of an admitted call.
func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == HalfOpen {
		b.probing = false
		if err != nil {
			b.state = Open
			b.openedAt = time.Now()
			slog.Warn("breaker re-opened after failed probe", "name", b.name)
			return
		}
		b.state = Closed
		b.failures = 0
		slog.Info("breaker closed after successful probe", "name", b.name)
		return
	}

	if err != nil {
		b.failures++
		if b.failures >= b.threshold {
			b.state = Open
			b.openedAt = time.Now()
			slog.Warn("breaker opened", "name", b.name, "failures", b.failures)
		}
		return
	}
	b.failures = 0
}

// State returns the current [State]. An open breaker whose cooldown has
// elapsed reports [HalfOpen]; the actual transition happens on the next call
// to [Breaker.Do].
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == Open && time.Since(b.openedAt) >= b.cooldown {
		return HalfOpen
	}
	return b.state
}

// Reset forces the breaker back to [Closed], clearing all counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = Closed
	b.failures = 0
	b.probing = false
}
