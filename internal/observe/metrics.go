// Package observe provides observability primitives for the bot:
// OpenTelemetry metrics, tracing helpers, and trace-enriched structured
// logging.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is installed by [InitProvider] so metrics can be scraped
// via the standard /metrics endpoint. A package-level default [Metrics]
// instance ([DefaultMetrics]) is provided for convenience; tests should use
// [NewMetrics] with a custom [metric.MeterProvider] to avoid cross-test
// pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all bot metrics.
const meterName = "github.com/pkodial/tulubot"

// Metrics holds all OpenTelemetry metric instruments for the bot. All
// fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// ResolveDuration tracks end-to-end translation resolution latency.
	ResolveDuration metric.Float64Histogram

	// FetchDuration tracks external backend fetch latency.
	FetchDuration metric.Float64Histogram

	// TierHits counts resolutions by answering tier. Use with attribute:
	//   attribute.String("tier", ...)
	TierHits metric.Int64Counter

	// BackendRequests counts backend API calls. Use with attributes:
	//   attribute.String("backend", ...), attribute.String("status", ...)
	BackendRequests metric.Int64Counter

	// BackendErrors counts backend failures by backend name.
	BackendErrors metric.Int64Counter

	// RepliesSent counts outbound chat replies by kind (translation,
	// teach_prompt, confirmation, ...).
	RepliesSent metric.Int64Counter

	// WordsTaught counts accepted community contributions.
	WordsTaught metric.Int64Counter

	// ActiveUserStates tracks pending teaching/correction conversations.
	ActiveUserStates metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds). Local
// tiers answer in microseconds; external fetches take up to the fetch
// timeout.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ResolveDuration, err = m.Float64Histogram("tulubot.resolve.duration",
		metric.WithDescription("End-to-end translation resolution latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.FetchDuration, err = m.Float64Histogram("tulubot.fetch.duration",
		metric.WithDescription("External translation backend latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TierHits, err = m.Int64Counter("tulubot.resolve.tier_hits",
		metric.WithDescription("Resolutions by answering tier."),
	); err != nil {
		return nil, err
	}
	if met.BackendRequests, err = m.Int64Counter("tulubot.backend.requests",
		metric.WithDescription("Backend API requests by backend and status."),
	); err != nil {
		return nil, err
	}
	if met.BackendErrors, err = m.Int64Counter("tulubot.backend.errors",
		metric.WithDescription("Backend failures by backend."),
	); err != nil {
		return nil, err
	}
	if met.RepliesSent, err = m.Int64Counter("tulubot.replies.sent",
		metric.WithDescription("Outbound chat replies by kind."),
	); err != nil {
		return nil, err
	}
	if met.WordsTaught, err = m.Int64Counter("tulubot.words.taught",
		metric.WithDescription("Accepted community contributions."),
	); err != nil {
		return nil, err
	}
	if met.ActiveUserStates, err = m.Int64UpDownCounter("tulubot.userstates.active",
		metric.WithDescription("Pending teaching and correction conversations."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordTierHit records a resolution answered by the named tier.
func (m *Metrics) RecordTierHit(ctx context.Context, tier string) {
	m.TierHits.Add(ctx, 1,
		metric.WithAttributes(attribute.String("tier", tier)),
	)
}

// RecordBackendRequest records a backend call with its outcome status.
func (m *Metrics) RecordBackendRequest(ctx context.Context, backend, status string) {
	m.BackendRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("backend", backend),
			attribute.String("status", status),
		),
	)
}

// RecordBackendError records a backend failure.
func (m *Metrics) RecordBackendError(ctx context.Context, backend string) {
	m.BackendErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("backend", backend)),
	)
}

// RecordReply records an outbound reply by kind.
func (m *Metrics) RecordReply(ctx context.Context, kind string) {
	m.RepliesSent.Add(ctx, 1,
		metric.WithAttributes(attribute.String("kind", kind)),
	)
}
