package engine_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkodial/tulubot/internal/cache"
	"github.com/pkodial/tulubot/internal/engine"
	"github.com/pkodial/tulubot/internal/fetcher"
	"github.com/pkodial/tulubot/internal/lexicon"
	"github.com/pkodial/tulubot/internal/store"
)

type fakeLearner struct {
	mu      sync.Mutex
	entries []string
}

func (f *fakeLearner) BeginLearning(userID, english, original string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, userID+":"+english)
}

func (f *fakeLearner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

type fakeBackend struct {
	result string
	calls  atomic.Int32
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Translate(ctx context.Context, text string) (string, error) {
	f.calls.Add(1)
	return f.result, nil
}

// harness builds an engine over a fresh mem store and the given backend.
func harness(t *testing.T, backend fetcher.Backend) (*engine.Engine, store.Store, *fakeLearner) {
	t.Helper()

	st := store.NewMemStore()
	var f *fetcher.Fetcher
	if backend != nil {
		f = fetcher.New([]fetcher.Backend{backend})
	}
	learner := &fakeLearner{}
	e := engine.New(
		lexicon.New(),
		cache.NewTaughtCache(st, time.Hour),
		cache.NewAPICache(st, time.Hour),
		f,
		st,
		learner,
		nil,
	)
	return e, st, learner
}

func TestResolveBaseTier(t *testing.T) {
	t.Parallel()

	e, _, learner := harness(t, nil)

	r := e.Resolve(context.Background(), "  Hello ", "u1")
	if !r.Found || r.Tier != engine.TierBase {
		t.Fatalf("Resolve = %+v, want base tier hit", r)
	}
	if r.Translation != "namaskara" || r.Source != "base" {
		t.Fatalf("Resolve = %+v, want namaskara/base", r)
	}
	if r.NeedsVerification {
		t.Fatal("base hit marked as needing verification")
	}
	if learner.count() != 0 {
		t.Fatal("base hit opened a learning conversation")
	}
}

func TestResolveUnknownOpensLearning(t *testing.T) {
	t.Parallel()

	e, _, learner := harness(t, nil)

	r := e.Resolve(context.Background(), "xyzzyunknown", "u1")
	if r.Found || r.Tier != engine.TierTeach {
		t.Fatalf("Resolve = %+v, want teach tier miss", r)
	}
	if learner.count() != 1 {
		t.Fatalf("learner called %d times, want 1", learner.count())
	}
}

func TestResolveTaughtTier(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e, st, _ := harness(t, nil)

	now := time.Now().UTC()
	if err := st.PutTaught(ctx, store.TaughtEntry{
		English: "madde", Tulu: "maddu", Contributor: "u2",
		CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("PutTaught: %v", err)
	}

	r := e.Resolve(ctx, "madde", "u1")
	if !r.Found || r.Tier != engine.TierTaught || r.Source != "community" {
		t.Fatalf("Resolve = %+v, want taught tier hit", r)
	}

	// Usage bump is asynchronous; poll for it.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		entry, err := st.GetTaught(ctx, "madde")
		if err == nil && entry.UsageCount == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("usage count was not bumped")
}

func TestResolveFetchThenCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := &fakeBackend{result: "gudde"}
	e, _, _ := harness(t, backend)

	first := e.Resolve(ctx, "mountain", "u1")
	if !first.Found || first.Tier != engine.TierFetch {
		t.Fatalf("first Resolve = %+v, want fetch tier hit", first)
	}
	if !first.NeedsVerification {
		t.Fatal("machine result not marked for verification")
	}

	second := e.Resolve(ctx, "mountain", "u2")
	if !second.Found || second.Tier != engine.TierAPICache {
		t.Fatalf("second Resolve = %+v, want cache tier hit", second)
	}
	if second.Source != "fake" {
		t.Fatalf("cached result source = %q, want fake", second.Source)
	}
	if n := backend.calls.Load(); n != 1 {
		t.Fatalf("backend called %d times, want 1 (second hit from cache)", n)
	}
}

func TestResolveRejectsKannadaScript(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := &fakeBackend{result: "ಗುಡ್ಡೆ"}
	e, st, learner := harness(t, backend)

	r := e.Resolve(ctx, "mountain", "u1")
	if r.Found || r.Tier != engine.TierTeach {
		t.Fatalf("Resolve = %+v, want teach tier (script rejected)", r)
	}
	if learner.count() != 1 {
		t.Fatal("script rejection did not open a learning conversation")
	}
	if _, err := st.GetAPICache(ctx, "mountain"); err == nil {
		t.Fatal("rejected translation was cached")
	}
}

func TestResolveSuggestions(t *testing.T) {
	t.Parallel()

	e, _, _ := harness(t, nil)

	r := e.Resolve(context.Background(), "helo", "u1")
	if r.Tier != engine.TierTeach {
		t.Fatalf("Resolve = %+v, want teach tier", r)
	}
	found := false
	for _, s := range r.Suggestions {
		if s == "hello" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Suggestions = %v, want to contain hello", r.Suggestions)
	}
}
