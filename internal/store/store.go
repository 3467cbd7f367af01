// Package store persists the community-taught dictionary and the machine
// translation result cache.
//
// Two implementations satisfy [Store]: [PostgresStore] for durable deployments
// and [MemStore] for tests and degraded operation. [Connect] picks between
// them at startup: when the configured database is unreachable within the
// connect timeout the process silently continues on an in-memory store, and
// no higher layer can tell the difference.
//
// All implementations must be safe for concurrent use.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by point lookups when the key does not exist.
var ErrNotFound = errors.New("store: entry not found")

// ErrUnknownTable is returned when a table-parameterised operation names a
// table that does not exist.
var ErrUnknownTable = errors.New("store: unknown table")

// Table names a logical table handled by the store.
type Table string

const (
	// TableTaught holds community-taught dictionary entries.
	TableTaught Table = "taught"

	// TableAPICache holds cached machine-translation results.
	TableAPICache Table = "apicache"
)

// IsValid reports whether t is a recognised table.
func (t Table) IsValid() bool {
	return t == TableTaught || t == TableAPICache
}

// TaughtEntry is a community-sourced English→Tulu mapping. English is unique
// across the table; a correction overwrites the row rather than adding one.
type TaughtEntry struct {
	// English is the normalized lookup key.
	English string

	// Tulu is the contributed translation.
	Tulu string

	// Contributor is the user ID of the most recent contributor.
	Contributor string

	// UsageCount is incremented each time the entry answers a lookup
	// and each time it is corrected or re-taught.
	UsageCount int

	// Votes is a community quality signal. Reserved for the voting flow.
	Votes int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// APICacheEntry is a persisted machine-translation result. Entries older than
// the cache layer's expiry window are treated as absent even before they are
// physically purged.
type APICacheEntry struct {
	// English is the normalized lookup key.
	English string

	// Translation is the fetched Tulu text.
	Translation string

	// Source names the backend that produced the translation.
	Source string

	CreatedAt time.Time
}

// Record is the table-agnostic row view returned by [Store.ListRecent].
type Record struct {
	Key       string
	Value     string
	Source    string
	UpdatedAt time.Time
}

// Store is the persistence contract shared by all backends.
type Store interface {
	// GetTaught retrieves a taught entry by normalized key.
	// Returns [ErrNotFound] when absent.
	GetTaught(ctx context.Context, key string) (TaughtEntry, error)

	// PutTaught inserts or replaces a taught entry keyed by English.
	PutTaught(ctx context.Context, e TaughtEntry) error

	// DeleteTaught removes a taught entry.
	// Returns [ErrNotFound] when absent.
	DeleteTaught(ctx context.Context, key string) error

	// ListTaught returns the full taught table. Order is not guaranteed.
	ListTaught(ctx context.Context) ([]TaughtEntry, error)

	// GetAPICache retrieves a cached translation by normalized key.
	// Returns [ErrNotFound] when absent.
	GetAPICache(ctx context.Context, key string) (APICacheEntry, error)

	// PutAPICache inserts or replaces a cached translation.
	PutAPICache(ctx context.Context, e APICacheEntry) error

	// Count returns the number of rows in the named table.
	Count(ctx context.Context, table Table) (int, error)

	// ListRecent returns up to limit rows from the named table, most
	// recently updated first.
	ListRecent(ctx context.Context, table Table, limit int) ([]Record, error)

	// Ping probes the backing engine. In-memory stores always succeed.
	Ping(ctx context.Context) error

	// Close releases the underlying connections, if any.
	Close()
}
