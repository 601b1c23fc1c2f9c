package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	metricsOnce              sync.Once
	metricsInitErr           error
	resolutionCounter        metric.Int64Counter
	suppressedCounter        metric.Int64Counter
	passthroughCounter       metric.Int64Counter
	recommendationCounter    metric.Int64Counter
	recommendationLatencyHis metric.Float64Histogram
)

// ResolutionMetrics captures one compliance resolution.
type ResolutionMetrics struct {
	Industry string
	// Input is the number of labels supplied, Output the number of ids
	// returned.
	Input       int
	Output      int
	Added       int
	Suppressed  int
	Passthrough int
}

// RecordResolution emits counters describing a compliance resolution.
func RecordResolution(ctx context.Context, m ResolutionMetrics) {
	if err := ensureMetrics(); err != nil {
		return
	}

	industry := m.Industry
	if industry == "" {
		industry = "none"
	}
	attrs := metric.WithAttributes(attribute.String("industry", industry))

	resolutionCounter.Add(ctx, 1, attrs)
	if m.Suppressed > 0 {
		suppressedCounter.Add(ctx, int64(m.Suppressed), attrs)
	}
	if m.Passthrough > 0 {
		passthroughCounter.Add(ctx, int64(m.Passthrough), attrs)
	}

	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent("compliance.resolved", trace.WithAttributes(
		attribute.String("compliance.industry", industry),
		attribute.Int("compliance.input.count", m.Input),
		attribute.Int("compliance.output.count", m.Output),
		attribute.Int("compliance.added.count", m.Added),
		attribute.Int("compliance.suppressed.count", m.Suppressed),
		attribute.Int("compliance.passthrough.count", m.Passthrough),
	))
}

// RecommendationMetrics captures one call to the recommendation source.
type RecommendationMetrics struct {
	Model    string
	Outcome  string // "ok", "invalid" or "error"
	Duration time.Duration
}

// RecordRecommendation emits the outcome and latency of a recommendation call.
func RecordRecommendation(ctx context.Context, m RecommendationMetrics) {
	if err := ensureMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("llm.model", m.Model),
		attribute.String("outcome", m.Outcome),
	)
	recommendationCounter.Add(ctx, 1, attrs)
	if m.Duration > 0 {
		recommendationLatencyHis.Record(ctx, float64(m.Duration)/float64(time.Millisecond), attrs)
	}
}

func ensureMetrics() error {
	metricsOnce.Do(func() {
		meter := otel.GetMeterProvider().Meter(InstrumentationName)

		resolutionCounter, metricsInitErr = meter.Int64Counter(
			"archwise.compliance.resolutions_total",
			metric.WithDescription("Compliance resolutions partitioned by industry"),
			metric.WithUnit("{count}"),
		)
		if metricsInitErr != nil {
			return
		}

		suppressedCounter, metricsInitErr = meter.Int64Counter(
			"archwise.compliance.suppressed_total",
			metric.WithDescription("Regional-privacy frameworks removed during resolution"),
			metric.WithUnit("{count}"),
		)
		if metricsInitErr != nil {
			return
		}

		passthroughCounter, metricsInitErr = meter.Int64Counter(
			"archwise.compliance.passthrough_total",
			metric.WithDescription("Resolved ids outside the framework vocabulary"),
			metric.WithUnit("{count}"),
		)
		if metricsInitErr != nil {
			return
		}

		recommendationCounter, metricsInitErr = meter.Int64Counter(
			"archwise.recommend.requests_total",
			metric.WithDescription("Recommendation source calls partitioned by outcome"),
			metric.WithUnit("{count}"),
		)
		if metricsInitErr != nil {
			return
		}

		recommendationLatencyHis, metricsInitErr = meter.Float64Histogram(
			"archwise.recommend.duration_ms",
			metric.WithDescription("Observed recommendation source latency"),
			metric.WithUnit("ms"),
		)
	})

	return metricsInitErr
}
