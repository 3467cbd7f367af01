package cache

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/pkodial/tulubot/internal/store"
)

// defaultTaughtTTL is how long a taught-dictionary snapshot stays fresh.
// Writes go through the cache, so the TTL only bounds staleness against
// out-of-band database edits.
const defaultTaughtTTL = 5 * time.Minute

// TaughtCache is a read-through snapshot of the taught dictionary. Lookup
// serves from an in-memory map refreshed at most once per TTL; Put and
// Delete write through to the store and patch the snapshot so the change is
// visible on the very next lookup.
type TaughtCache struct {
	st   store.Store
	cell *Cell[map[string]string]
}

// NewTaughtCache creates a [TaughtCache] over st. A non-positive ttl uses
// the default of five minutes.
func NewTaughtCache(st store.Store, ttl time.Duration) *TaughtCache {
	if ttl <= 0 {
		ttl = defaultTaughtTTL
	}
	return &TaughtCache{
		st:   st,
		cell: NewCell[map[string]string](ttl),
	}
}

// Lookup returns the taught translation for key, refreshing the snapshot
// from the store when expired. A store failure during refresh reports a
// miss; the resolution engine treats that like any other miss.
func (c *TaughtCache) Lookup(ctx context.Context, key string) (string, bool) {
	snapshot, err := c.cell.GetOrRefresh(ctx, c.load)
	if err != nil {
		return "", false
	}
	tulu, ok := snapshot[key]
	return tulu, ok
}

// Put writes e to the store and patches the snapshot, making the entry
// visible immediately regardless of snapshot age. The snapshot is replaced
// rather than written in place: lookups on other goroutines may still be
// reading the old map.
func (c *TaughtCache) Put(ctx context.Context, e store.TaughtEntry) error {
	if err := c.st.PutTaught(ctx, e); err != nil {
		return fmt.Errorf("cache: put taught: %w", err)
	}
	c.cell.Mutate(func(old map[string]string) map[string]string {
		next := maps.Clone(old)
		if next == nil {
			next = make(map[string]string, 1)
		}
		next[e.English] = e.Tulu
		return next
	})
	return nil
}

// Delete removes key from the store and the snapshot. The store's
// [store.ErrNotFound] passes through unchanged.
func (c *TaughtCache) Delete(ctx context.Context, key string) error {
	if err := c.st.DeleteTaught(ctx, key); err != nil {
		return err
	}
	c.cell.Mutate(func(old map[string]string) map[string]string {
		next := maps.Clone(old)
		delete(next, key)
		return next
	})
	return nil
}

// Invalidate drops the snapshot; the next lookup reloads from the store.
func (c *TaughtCache) Invalidate() {
	c.cell.Invalidate()
}

func (c *TaughtCache) load(ctx context.Context) (map[string]string, error) {
	entries, err := c.st.ListTaught(ctx)
	if err != nil {
		return nil, fmt.Errorf("cache: load taught snapshot: %w", err)
	}
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.English] = e.Tulu
	}
	return m, nil
}
