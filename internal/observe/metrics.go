// Package observe provides observability primitives for the paldex bot:
// OpenTelemetry metrics, tracing, and HTTP middleware that ties them
// together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped from the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all paldex metrics.
const meterName = "github.com/MrWong99/paldex"

// Metrics holds all OpenTelemetry metric instruments for the bot.
// All fields are safe for concurrent use.
type Metrics struct {
	// CommandInvocations counts slash command executions. Use with
	// attributes: attribute.String("command", ...), attribute.String("status", ...)
	CommandInvocations metric.Int64Counter

	// AutocompleteQueries counts autocomplete interactions. Use with
	// attribute: attribute.String("result", ...) — "ok", "empty", or "timeout".
	AutocompleteQueries metric.Int64Counter

	// AutocompleteDuration tracks fuzzy lookup latency.
	AutocompleteDuration metric.Float64Histogram

	// APIRequests counts Paldeck API calls. Use with attributes:
	// attribute.String("op", ...), attribute.String("status", ...)
	APIRequests metric.Int64Counter

	// APIRequestDuration tracks Paldeck API call latency by operation.
	APIRequestDuration metric.Float64Histogram

	// NamesLoaded tracks the size of the loaded name store.
	NamesLoaded metric.Int64UpDownCounter

	// HTTPRequestDuration tracks observability endpoint latency. Use with
	// attributes: attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// interaction-handling latencies.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.CommandInvocations, err = m.Int64Counter("paldex.commands.invocations",
		metric.WithDescription("Total slash command executions by command and status."),
	); err != nil {
		return nil, err
	}
	if met.AutocompleteQueries, err = m.Int64Counter("paldex.autocomplete.queries",
		metric.WithDescription("Total autocomplete interactions by result."),
	); err != nil {
		return nil, err
	}
	if met.AutocompleteDuration, err = m.Float64Histogram("paldex.autocomplete.duration",
		metric.WithDescription("Latency of fuzzy name lookups."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.APIRequests, err = m.Int64Counter("paldex.api.requests",
		metric.WithDescription("Total Paldeck API requests by operation and status."),
	); err != nil {
		return nil, err
	}
	if met.APIRequestDuration, err = m.Float64Histogram("paldex.api.request.duration",
		metric.WithDescription("Latency of Paldeck API requests by operation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.NamesLoaded, err = m.Int64UpDownCounter("paldex.names.loaded",
		metric.WithDescription("Number of Pal names in the in-memory store."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("paldex.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
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

// DefaultMetrics returns the package-level [Metrics] instance, creating it
// on first call using [otel.GetMeterProvider]. Subsequent calls return the
// same pointer. Panics if instrument creation fails (should not happen with
// the global provider).
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

// RecordCommand records one slash command execution.
func (m *Metrics) RecordCommand(ctx context.Context, command, status string) {
	m.CommandInvocations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("command", command),
			attribute.String("status", status),
		),
	)
}

// RecordAutocomplete records one autocomplete interaction and its lookup
// latency.
func (m *Metrics) RecordAutocomplete(ctx context.Context, result string, elapsed time.Duration) {
	m.AutocompleteQueries.Add(ctx, 1,
		metric.WithAttributes(attribute.String("result", result)),
	)
	m.AutocompleteDuration.Record(ctx, elapsed.Seconds())
}

// RecordAPIRequest records one Paldeck API call with its latency.
func (m *Metrics) RecordAPIRequest(ctx context.Context, op, status string, elapsed time.Duration) {
	m.APIRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("op", op),
			attribute.String("status", status),
		),
	)
	m.APIRequestDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String("op", op)),
	)
}
