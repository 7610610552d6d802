// Package observe provides application-wide observability primitives for
// Polyvox: OpenTelemetry metrics, distributed tracing, and structured logging.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Polyvox metrics.
const meterName = "github.com/MrWong99/polyvox"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// BuildDuration tracks end-to-end conversation build latency.
	BuildDuration metric.Float64Histogram

	// SynthesisDuration tracks per-segment TTS synthesis latency.
	SynthesisDuration metric.Float64Histogram

	// MixDuration tracks final audio mixing latency.
	MixDuration metric.Float64Histogram

	// ScriptGenDuration tracks LLM script generation latency.
	ScriptGenDuration metric.Float64Histogram

	// --- Counters ---

	// Segments counts processed conversation segments. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("status", ...)
	Segments metric.Int64Counter

	// AmbienceCacheHits counts background-bed cache hits by environment.
	AmbienceCacheHits metric.Int64Counter

	// ProviderErrors counts provider errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveBuilds tracks the number of conversation builds in flight.
	ActiveBuilds metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds). Synthesis
// of long multi-speaker scripts can take tens of seconds, so the upper
// buckets reach further than typical request-latency buckets.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.BuildDuration, err = m.Float64Histogram("polyvox.build.duration",
		metric.WithDescription("End-to-end conversation build latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SynthesisDuration, err = m.Float64Histogram("polyvox.synthesis.duration",
		metric.WithDescription("Per-segment TTS synthesis latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.MixDuration, err = m.Float64Histogram("polyvox.mix.duration",
		metric.WithDescription("Final conversation mixing latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ScriptGenDuration, err = m.Float64Histogram("polyvox.scriptgen.duration",
		metric.WithDescription("LLM script generation latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Segments, err = m.Int64Counter("polyvox.segments",
		metric.WithDescription("Total processed conversation segments by provider and status."),
	); err != nil {
		return nil, err
	}
	if met.AmbienceCacheHits, err = m.Int64Counter("polyvox.ambience.cache_hits",
		metric.WithDescription("Background-bed cache hits by environment."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("polyvox.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveBuilds, err = m.Int64UpDownCounter("polyvox.active_builds",
		metric.WithDescription("Number of conversation builds in flight."),
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

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordSegment records a processed segment with the standard attribute set.
func (m *Metrics) RecordSegment(ctx context.Context, provider, status string) {
	m.Segments.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("status", status),
		),
	)
}

// RecordProviderError records a provider error counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}
