// Package engine implements the tiered translation resolution strategy.
//
// A lookup walks the tiers strictly in order: the immutable base lexicon,
// the community-taught dictionary, the persisted machine-translation cache,
// a live fetch from external backends, and finally the teach-me fallback
// that opens a learning conversation with the asking user.
//
// Resolve never returns an error. Infrastructure failures at any tier are
// demoted to misses so the next tier gets its chance; the transport always
// receives something it can say to the user.
package engine

import (
	"context"
	"time"

	"github.com/pkodial/tulubot/internal/cache"
	"github.com/pkodial/tulubot/internal/fetcher"
	"github.com/pkodial/tulubot/internal/lexicon"
	"github.com/pkodial/tulubot/internal/observe"
	"github.com/pkodial/tulubot/internal/store"
)

// Tier identifies which resolution layer answered a lookup.
type Tier int

const (
	// TierBase is the immutable seeded lexicon.
	TierBase Tier = iota + 1

	// TierTaught is the community-taught dictionary.
	TierTaught

	// TierAPICache is the persisted machine-translation cache.
	TierAPICache

	// TierFetch is a live external backend fetch.
	TierFetch

	// TierTeach is the fallback that asks the user to teach the word.
	TierTeach
)

// String returns the tier's name as used in logs and metrics.
func (t Tier) String() string {
	switch t {
	case TierBase:
		return "base"
	case TierTaught:
		return "taught"
	case TierAPICache:
		return "cache"
	case TierFetch:
		return "fetch"
	case TierTeach:
		return "teach"
	default:
		return "unknown"
	}
}

// Result is the outcome of a resolution.
type Result struct {
	// Translation is the Tulu text, empty when Found is false.
	Translation string

	// Found reports whether any tier produced a translation.
	Found bool

	// Source names where the translation came from: "base", "community",
	// or the backend name for machine results.
	Source string

	// Tier is the layer that answered.
	Tier Tier

	// NeedsVerification is set for machine translations (tiers 3 and 4),
	// which native speakers have not confirmed.
	NeedsVerification bool

	// Suggestions holds near-miss lexicon keys for the teach-me prompt.
	Suggestions []string
}

// Learner receives the teach-me fallback: when no tier can answer, the
// engine opens a learning conversation for the asking user.
type Learner interface {
	// BeginLearning installs a pending learning state for userID, keyed by
	// the normalized english text. original is the text as typed.
	BeginLearning(userID, english, original string)
}

// usageBumpTimeout bounds the background usage-count write.
const usageBumpTimeout = 3 * time.Second

// Engine resolves English text to Tulu through the tier stack.
type Engine struct {
	lex     *lexicon.Lexicon
	taught  *cache.TaughtCache
	api     *cache.APICache
	fetch   *fetcher.Fetcher
	st      store.Store
	learner Learner
	metrics *observe.Metrics
}

// New creates an [Engine]. learner may be nil, in which case the teach-me
// tier reports the miss without opening a conversation; metrics may be nil
// to use [observe.DefaultMetrics].
func New(lex *lexicon.Lexicon, taught *cache.TaughtCache, api *cache.APICache, fetch *fetcher.Fetcher, st store.Store, learner Learner, metrics *observe.Metrics) *Engine {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &Engine{
		lex:     lex,
		taught:  taught,
		api:     api,
		fetch:   fetch,
		st:      st,
		learner: learner,
		metrics: metrics,
	}
}

// Resolve translates text for userID, walking the tiers in order.
func (e *Engine) Resolve(ctx context.Context, text, userID string) Result {
	ctx, span := observe.StartSpan(ctx, "engine.resolve")
	defer span.End()

	start := time.Now()
	r := e.resolve(ctx, text, userID)
	e.metrics.ResolveDuration.Record(ctx, time.Since(start).Seconds())
	e.metrics.RecordTierHit(ctx, r.Tier.String())

	observe.Logger(ctx).Debug("resolved",
		"tier", r.Tier.String(),
		"found", r.Found,
		"source", r.Source,
	)
	return r
}

func (e *Engine) resolve(ctx context.Context, text, userID string) Result {
	key := lexicon.Normalize(text)

	// Tier 1: base lexicon.
	if tulu, ok := e.lex.Lookup(key); ok {
		return Result{Translation: tulu, Found: true, Source: "base", Tier: TierBase}
	}

	// Tier 2: community-taught dictionary.
	if tulu, ok := e.taught.Lookup(ctx, key); ok {
		e.bumpUsage(key)
		return Result{Translation: tulu, Found: true, Source: "community", Tier: TierTaught}
	}

	// Tier 3: persisted machine-translation cache.
	if entry, ok := e.api.Lookup(ctx, key); ok {
		return Result{
			Translation:       entry.Translation,
			Found:             true,
			Source:            entry.Source,
			Tier:              TierAPICache,
			NeedsVerification: true,
		}
	}

	// Tier 4: live fetch.
	if e.fetch != nil {
		fetchStart := time.Now()
		fr, ok := e.fetch.Fetch(ctx, key)
		e.metrics.FetchDuration.Record(ctx, time.Since(fetchStart).Seconds())
		if ok {
			if err := e.api.Put(ctx, store.APICacheEntry{
				English:     key,
				Translation: fr.Translation,
				Source:      fr.Source,
			}); err != nil {
				observe.Logger(ctx).Warn("caching fetched translation failed", "key", key, "err", err)
			}
			return Result{
				Translation:       fr.Translation,
				Found:             true,
				Source:            fr.Source,
				Tier:              TierFetch,
				NeedsVerification: true,
			}
		}
	}

	// Tier 5: teach-me fallback.
	if e.learner != nil {
		e.learner.BeginLearning(userID, key, text)
	}
	return Result{
		Tier:        TierTeach,
		Suggestions: e.lex.Suggest(key, 3),
	}
}

// bumpUsage increments the taught entry's usage count in the background.
// Losing a bump is fine; blocking the hot path on a write is not.
func (e *Engine) bumpUsage(key string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), usageBumpTimeout)
		defer cancel()

		entry, err := e.st.GetTaught(ctx, key)
		if err != nil {
			return
		}
		entry.UsageCount++
		if err := e.st.PutTaught(ctx, entry); err != nil {
			observe.Logger(ctx).Debug("usage bump failed", "key", key, "err", err)
		}
	}()
}
