// Package cache layers TTL caching over the persistent store.
//
// Two caches exist: [TaughtCache] keeps a full snapshot of the taught
// dictionary so the hot resolution path never queries the store per message,
// and [APICache] fronts the machine-translation result table with an expiry
// window and script re-validation.
//
// All types are safe for concurrent use.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cell is a single cached value with a TTL. Concurrent refreshes collapse
// into one loader call via singleflight; while a refresh is in flight,
// readers that still hold a non-expired value keep serving it.
type Cell[T any] struct {
	ttl time.Duration

	mu        sync.RWMutex
	value     T
	expiresAt time.Time

	group singleflight.Group
}

// NewCell creates an empty [Cell] whose values live for ttl after each
// refresh.
func NewCell[T any](ttl time.Duration) *Cell[T] {
	return &Cell[T]{ttl: ttl}
}

// GetOrRefresh returns the cached value, invoking loader to (re)populate it
// when empty or expired. Only one loader runs at a time; concurrent callers
// share its result. Returned values are read outside the cell's lock, so
// they must never be modified afterwards; see [Cell.Mutate].
func (c *Cell[T]) GetOrRefresh(ctx context.Context, loader func(ctx context.Context) (T, error)) (T, error) {
	c.mu.RLock()
	if time.Now().Before(c.expiresAt) {
		v := c.value
		c.mu.RUnlock()
		return v, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("refresh", func() (any, error) {
		// Re-check under the flight: a racing caller may have refreshed.
		c.mu.RLock()
		if time.Now().Before(c.expiresAt) {
			v := c.value
			c.mu.RUnlock()
			return v, nil
		}
		c.mu.RUnlock()

		fresh, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(fresh)
		return fresh, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Set stores value and restarts the TTL clock.
func (c *Cell[T]) Set(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = value
	c.expiresAt = time.Now().Add(c.ttl)
}

// Mutate replaces the cached value with fn's result without touching the
// TTL. It is a no-op when the cell is empty or expired. Values handed out by
// [Cell.GetOrRefresh] are read without locking, so fn must treat old as
// read-only and return a patched copy rather than writing into it.
func (c *Cell[T]) Mutate(fn func(old T) T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Now().Before(c.expiresAt) {
		c.value = fn(c.value)
	}
}

// Invalidate expires the cell immediately; the next [Cell.GetOrRefresh] will
// hit the loader.
func (c *Cell[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expiresAt = time.Time{}
}
