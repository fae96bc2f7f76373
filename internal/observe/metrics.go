// Package observe provides application-wide observability primitives for
// sorikiosk: OpenTelemetry metrics, tracing helpers, structured logging, and
// HTTP middleware that ties them together.
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

// meterName is the instrumentation scope name used for all sorikiosk metrics.
const meterName = "github.com/hanwoori/sorikiosk"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// ParseDuration tracks transcript parse latency.
	ParseDuration metric.Float64Histogram

	// ParseCandidates counts candidates produced by parse calls. Use with
	// attributes:
	//   attribute.String("language", ...), attribute.String("method", ...)
	ParseCandidates metric.Int64Counter

	// ParseNoMatch counts parse calls that matched no catalog keyword and
	// fell through to the degraded token heuristic. Use with attribute:
	//   attribute.String("language", ...)
	ParseNoMatch metric.Int64Counter

	// AmbiguousQuantity counts keyword matches where more than one distinct
	// quantity phrase landed in the scan windows and the last-match
	// tie-break decided. A rising rate here means the tie-break heuristic
	// is guessing. Use with attribute:
	//   attribute.String("language", ...)
	AmbiguousQuantity metric.Int64Counter

	// OrdersConfirmed counts confirmed (submitted) orders.
	OrdersConfirmed metric.Int64Counter

	// OrderValue tracks the total price of confirmed orders, in whole
	// currency units.
	OrderValue metric.Int64Histogram

	// ActiveSessions tracks the number of live kiosk sessions.
	ActiveSessions metric.Int64UpDownCounter

	// HTTPRequestDuration tracks HTTP request processing time. Use with
	// attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// parseLatencyBuckets defines histogram bucket boundaries (in seconds) for
// the in-process parse path, which is far faster than a network hop.
var parseLatencyBuckets = []float64{
	0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1,
}

// orderValueBuckets covers typical kiosk order totals in KRW.
var orderValueBuckets = []float64{
	2000, 5000, 10000, 20000, 35000, 50000, 75000, 100000, 150000,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ParseDuration, err = m.Float64Histogram("sorikiosk.parse.duration",
		metric.WithDescription("Latency of transcript parsing."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(parseLatencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ParseCandidates, err = m.Int64Counter("sorikiosk.parse.candidates",
		metric.WithDescription("Total order candidates produced, by language and match method."),
	); err != nil {
		return nil, err
	}
	if met.ParseNoMatch, err = m.Int64Counter("sorikiosk.parse.no_match",
		metric.WithDescription("Parse calls that fell through to the degraded token heuristic."),
	); err != nil {
		return nil, err
	}
	if met.AmbiguousQuantity, err = m.Int64Counter("sorikiosk.parse.ambiguous_quantity",
		metric.WithDescription("Keyword matches resolved by the last-match quantity tie-break."),
	); err != nil {
		return nil, err
	}
	if met.OrdersConfirmed, err = m.Int64Counter("sorikiosk.orders.confirmed",
		metric.WithDescription("Total confirmed orders."),
	); err != nil {
		return nil, err
	}
	if met.OrderValue, err = m.Int64Histogram("sorikiosk.orders.value",
		metric.WithDescription("Total price of confirmed orders in whole currency units."),
		metric.WithExplicitBucketBoundaries(orderValueBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("sorikiosk.active_sessions",
		metric.WithDescription("Number of live kiosk sessions."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("sorikiosk.http.request.duration",
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

// RecordCandidates records candidate production for one parse call.
func (m *Metrics) RecordCandidates(ctx context.Context, language, method string, n int) {
	if n <= 0 {
		return
	}
	m.ParseCandidates.Add(ctx, int64(n),
		metric.WithAttributes(
			attribute.String("language", language),
			attribute.String("method", method),
		),
	)
}

// RecordNoMatch records a parse call that degraded to the token fallback.
func (m *Metrics) RecordNoMatch(ctx context.Context, language string) {
	m.ParseNoMatch.Add(ctx, 1,
		metric.WithAttributes(attribute.String("language", language)),
	)
}

// RecordAmbiguousQuantity records one ambiguous quantity resolution.
func (m *Metrics) RecordAmbiguousQuantity(ctx context.Context, language string) {
	m.AmbiguousQuantity.Add(ctx, 1,
		metric.WithAttributes(attribute.String("language", language)),
	)
}

// RecordOrderConfirmed records a confirmed order and its total value.
func (m *Metrics) RecordOrderConfirmed(ctx context.Context, total int) {
	m.OrdersConfirmed.Add(ctx, 1)
	m.OrderValue.Record(ctx, int64(total))
}
