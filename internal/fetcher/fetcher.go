// Package fetcher obtains English→Tulu translations from external machine
// translation backends.
//
// A [Fetcher] drives one or more [Backend] implementations under a shared
// strategy: race them concurrently and take the first validated result, or
// walk them sequentially behind per-backend circuit breakers. Every result
// passes [ValidateTranslation] before it counts; a backend that echoes the
// input, returns Kannada script, or smuggles an error message is treated as
// having failed.
//
// Fetch never returns an error to callers. External translation is a
// best-effort tier; any failure is reported as a miss and the resolution
// engine moves on.
package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/pkodial/tulubot/internal/observe"
	"github.com/pkodial/tulubot/internal/resilience"
)

// Strategy selects how multiple backends are consulted.
type Strategy string

const (
	// StrategyRace queries all backends concurrently and takes the first
	// result that validates.
	StrategyRace Strategy = "race"

	// StrategySequential tries backends in configured order, each behind
	// its circuit breaker, stopping at the first validated result.
	StrategySequential Strategy = "sequential"
)

// defaultTimeout bounds a single fetch attempt across all backends.
const defaultTimeout = 6 * time.Second

// Backend is a single external translation source.
type Backend interface {
	// Name identifies the backend in logs, metrics, and cache provenance.
	Name() string

	// Translate returns the romanized Tulu translation of text. The raw
	// result is returned; validation is the caller's job.
	Translate(ctx context.Context, text string) (string, error)
}

// Result is a validated translation from one backend.
type Result struct {
	Translation string
	Source      string
}

// Fetcher coordinates translation backends.
type Fetcher struct {
	backends []Backend
	breakers map[string]*resilience.Breaker
	strategy Strategy
	timeout  time.Duration
	metrics  *observe.Metrics
}

// Option configures a [Fetcher].
type Option func(*Fetcher)

// WithStrategy selects the backend consultation strategy. Default:
// [StrategyRace].
func WithStrategy(s Strategy) Option {
	return func(f *Fetcher) { f.strategy = s }
}

// WithTimeout bounds each Fetch call. Default: 6s.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMetrics overrides the metric instruments, for tests. Default:
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

// New creates a [Fetcher] over the given backends. Each backend gets its own
// circuit breaker.
func New(backends []Backend, opts ...Option) *Fetcher {
	f := &Fetcher{
		backends: backends,
		breakers: make(map[string]*resilience.Breaker, len(backends)),
		strategy: StrategyRace,
		timeout:  defaultTimeout,
	}
	for _, o := range opts {
		o(f)
	}
	if f.metrics == nil {
		f.metrics = observe.DefaultMetrics()
	}
	for _, b := range backends {
		f.breakers[b.Name()] = resilience.NewBreaker(resilience.Config{Name: b.Name()})
	}
	return f
}

// Breakers exposes the per-backend circuit breakers for health reporting.
func (f *Fetcher) Breakers() map[string]*resilience.Breaker {
	return f.breakers
}

// Fetch attempts an external translation of text. It returns (nil, false)
// when the input is not worth sending out, when no backend produces a
// validated result, or when no backends are configured.
func (f *Fetcher) Fetch(ctx context.Context, text string) (*Result, bool) {
	if len(f.backends) == 0 || shouldSkip(text) {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	switch f.strategy {
	case StrategySequential:
		return f.fetchSequential(ctx, text)
	default:
		return f.fetchRace(ctx, text)
	}
}

// fetchRace queries every backend concurrently; the first validated result
// wins and the rest are abandoned via context cancellation.
func (f *Fetcher) fetchRace(ctx context.Context, text string) (*Result, bool) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan *Result, len(f.backends))
	for _, b := range f.backends {
		go func(b Backend) {
			results <- f.attempt(ctx, b, text)
		}(b)
	}

	for range f.backends {
		select {
		case r := <-results:
			if r != nil {
				return r, true
			}
		case <-ctx.Done():
			return nil, false
		}
	}
	return nil, false
}

// fetchSequential walks the backends in order, stopping at the first
// validated result.
func (f *Fetcher) fetchSequential(ctx context.Context, text string) (*Result, bool) {
	for _, b := range f.backends {
		if r := f.attempt(ctx, b, text); r != nil {
			return r, true
		}
		if ctx.Err() != nil {
			return nil, false
		}
	}
	return nil, false
}

// attempt runs one backend through its breaker and validates the result.
// It returns nil on any failure.
func (f *Fetcher) attempt(ctx context.Context, b Backend, text string) *Result {
	var translation string
	err := f.breakers[b.Name()].Do(func() error {
		raw, err := b.Translate(ctx, text)
		if err != nil {
			return err
		}
		if err := ValidateTranslation(text, raw); err != nil {
			return err
		}
		translation = strings.TrimSpace(raw)
		return nil
	})
	if err != nil {
		if errors.Is(err, resilience.ErrOpen) {
			f.metrics.RecordBackendRequest(ctx, b.Name(), "skipped")
		} else {
			f.metrics.RecordBackendRequest(ctx, b.Name(), "error")
			f.metrics.RecordBackendError(ctx, b.Name())
		}
		slog.Debug("backend attempt failed", "backend", b.Name(), "err", err)
		return nil
	}
	f.metrics.RecordBackendRequest(ctx, b.Name(), "ok")
	return &Result{Translation: translation, Source: b.Name()}
}

// shouldSkip reports whether text is too trivial to send to an external
// backend: two characters or fewer, or purely numeric.
func shouldSkip(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) <= 2 {
		return true
	}
	numeric := true
	for _, r := range trimmed {
		if !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			numeric = false
			break
		}
	}
	return numeric
}
