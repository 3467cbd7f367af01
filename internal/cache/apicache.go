package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkodial/tulubot/internal/fetcher"
	"github.com/pkodial/tulubot/internal/store"
)

// defaultAPIMaxAge is the expiry window for persisted machine translations.
// Older rows are treated as absent even before any physical purge.
const defaultAPIMaxAge = 7 * 24 * time.Hour

// APICache fronts the persisted machine-translation table with an expiry
// window. Reads re-validate the stored text so rows written before a
// validation rule tightened can never resurface.
type APICache struct {
	st     store.Store
	maxAge time.Duration
}

// NewAPICache creates an [APICache] over st. A non-positive maxAge uses the
// default of seven days.
func NewAPICache(st store.Store, maxAge time.Duration) *APICache {
	if maxAge <= 0 {
		maxAge = defaultAPIMaxAge
	}
	return &APICache{st: st, maxAge: maxAge}
}

// Lookup returns the cached translation for key. Expired, invalid, or
// missing rows all report a miss; store failures do too.
func (c *APICache) Lookup(ctx context.Context, key string) (store.APICacheEntry, bool) {
	e, err := c.st.GetAPICache(ctx, key)
	if err != nil {
		return store.APICacheEntry{}, false
	}
	if time.Since(e.CreatedAt) > c.maxAge {
		return store.APICacheEntry{}, false
	}
	if err := fetcher.ValidateTranslation(key, e.Translation); err != nil {
		slog.Debug("dropping invalid cached translation", "key", key, "err", err)
		return store.APICacheEntry{}, false
	}
	return e, true
}

// Put persists a freshly fetched translation. Entries that fail validation
// are refused so the table only ever holds servable results.
func (c *APICache) Put(ctx context.Context, e store.APICacheEntry) error {
	if err := fetcher.ValidateTranslation(e.English, e.Translation); err != nil {
		return fmt.Errorf("cache: refusing api cache write for %q: %w", e.English, err)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if err := c.st.PutAPICache(ctx, e); err != nil {
		return fmt.Errorf("cache: put api cache: %w", err)
	}
	return nil
}
