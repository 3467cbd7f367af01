package workflow

import (
	"sync"
	"time"
)

// defaultDedupTTL is how long a processed message ID is remembered.
// Transports redeliver within seconds, not hours.
const defaultDedupTTL = 10 * time.Minute

// Dedup is a TTL set of processed message identities. It gives the handler
// idempotency: a redelivered message is recognised and dropped before any
// state change or reply.
type Dedup struct {
	ttl time.Duration

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewDedup creates a [Dedup]. A non-positive ttl uses the default.
func NewDedup(ttl time.Duration) *Dedup {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &Dedup{
		ttl:  ttl,
		seen: make(map[string]time.Time),
	}
}

// Seen records key and reports whether it had already been recorded within
// the TTL. The first caller for a key gets false; everyone after gets true.
func (d *Dedup) Seen(key string) bool {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if at, ok := d.seen[key]; ok && now.Sub(at) < d.ttl {
		return true
	}
	d.seen[key] = now
	return false
}

// Sweep drops expired keys. Called periodically so the set does not grow
// with total message volume.
func (d *Dedup) Sweep() {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	for key, at := range d.seen {
		if now.Sub(at) >= d.ttl {
			delete(d.seen, key)
		}
	}
}
