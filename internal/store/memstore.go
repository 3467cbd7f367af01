package store

import (
	"context"
	"sort"
	"sync"
)

// Compile-time assertion that MemStore satisfies the Store interface.
var _ Store = (*MemStore)(nil)

// MemStore is a thread-safe, in-memory implementation of [Store]. It backs
// tests and the degraded mode entered when the database is unreachable; data
// lives only for the lifetime of the process.
type MemStore struct {
	mu       sync.RWMutex
	taught   map[string]TaughtEntry
	apiCache map[string]APICacheEntry
}

// NewMemStore returns an initialised [MemStore].
func NewMemStore() *MemStore {
	return &MemStore{
		taught:   make(map[string]TaughtEntry),
		apiCache: make(map[string]APICacheEntry),
	}
}

// GetTaught implements [Store.GetTaught].
func (s *MemStore) GetTaught(_ context.Context, key string) (TaughtEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.taught[key]
	if !ok {
		return TaughtEntry{}, ErrNotFound
	}
	return e, nil
}

// PutTaught implements [Store.PutTaught].
func (s *MemStore) PutTaught(_ context.Context, e TaughtEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.taught[e.English] = e
	return nil
}

// DeleteTaught implements [Store.DeleteTaught].
func (s *MemStore) DeleteTaught(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.taught[key]; !ok {
		return ErrNotFound
	}
	delete(s.taught, key)
	return nil
}

// ListTaught implements [Store.ListTaught].
func (s *MemStore) ListTaught(_ context.Context) ([]TaughtEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]TaughtEntry, 0, len(s.taught))
	for _, e := range s.taught {
		out = append(out, e)
	}
	return out, nil
}

// GetAPICache implements [Store.GetAPICache].
func (s *MemStore) GetAPICache(_ context.Context, key string) (APICacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.apiCache[key]
	if !ok {
		return APICacheEntry{}, ErrNotFound
	}
	return e, nil
}

// PutAPICache implements [Store.PutAPICache].
func (s *MemStore) PutAPICache(_ context.Context, e APICacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.apiCache[e.English] = e
	return nil
}

// Count implements [Store.Count].
func (s *MemStore) Count(_ context.Context, table Table) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch table {
	case TableTaught:
		return len(s.taught), nil
	case TableAPICache:
		return len(s.apiCache), nil
	default:
		return 0, ErrUnknownTable
	}
}

// ListRecent implements [Store.ListRecent].
func (s *MemStore) ListRecent(_ context.Context, table Table, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []Record
	switch table {
	case TableTaught:
		for _, e := range s.taught {
			records = append(records, Record{
				Key:       e.English,
				Value:     e.Tulu,
				Source:    e.Contributor,
				UpdatedAt: e.UpdatedAt,
			})
		}
	case TableAPICache:
		for _, e := range s.apiCache {
			records = append(records, Record{
				Key:       e.English,
				Value:     e.Translation,
				Source:    e.Source,
				UpdatedAt: e.CreatedAt,
			})
		}
	default:
		return nil, ErrUnknownTable
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Ping implements [Store.Ping]. A memory store is always reachable.
func (s *MemStore) Ping(_ context.Context) error {
	return nil
}

// Close implements [Store.Close]. No-op for memory stores.
func (s *MemStore) Close() {}
