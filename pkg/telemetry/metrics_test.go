package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupMeter(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() {
		otel.SetMeterProvider(prev)
		ResetMetricsForTest()
	})
	ResetMetricsForTest()
	return reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumValue(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	data, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "unexpected data type for %s", m.Name)
	var total int64
	for _, dp := range data.DataPoints {
		total += dp.Value
	}
	return total
}

func TestRecordResolution(t *testing.T) {
	reader := setupMeter(t)
	ctx := context.Background()

	RecordResolution(ctx, ResolutionMetrics{Industry: "retail", Input: 3, Output: 2, Suppressed: 1, Passthrough: 1})
	RecordResolution(ctx, ResolutionMetrics{Industry: "healthcare", Input: 0, Output: 3, Added: 3})

	metrics := collect(t, reader)

	resolutions, ok := metrics["archwise.compliance.resolutions_total"]
	require.True(t, ok)
	assert.Equal(t, int64(2), sumValue(t, resolutions))

	data := resolutions.Data.(metricdata.Sum[int64])
	industries := map[string]bool{}
	for _, dp := range data.DataPoints {
		v, ok := dp.Attributes.Value(attribute.Key("industry"))
		require.True(t, ok)
		industries[v.AsString()] = true
	}
	assert.Equal(t, map[string]bool{"retail": true, "healthcare": true}, industries)

	assert.Equal(t, int64(1), sumValue(t, metrics["archwise.compliance.suppressed_total"]))
	assert.Equal(t, int64(1), sumValue(t, metrics["archwise.compliance.passthrough_total"]))
}

func TestRecordResolutionSpanEvent(t *testing.T) {
	setupMeter(t)
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	ctx, span := tp.Tracer("test").Start(context.Background(), "resolve")
	RecordResolution(ctx, ResolutionMetrics{Industry: "", Suppressed: 2})
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "compliance.resolved", events[0].Name)
	assert.Contains(t, events[0].Attributes, attribute.String("compliance.industry", "none"))
	assert.Contains(t, events[0].Attributes, attribute.Int("compliance.suppressed.count", 2))
}

func TestRecordRecommendation(t *testing.T) {
	reader := setupMeter(t)

	RecordRecommendation(context.Background(), RecommendationMetrics{Model: "gpt-4", Outcome: "ok", Duration: 1200 * time.Millisecond})
	RecordRecommendation(context.Background(), RecommendationMetrics{Model: "gpt-4", Outcome: "invalid"})

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumValue(t, metrics["archwise.recommend.requests_total"]))

	hist, ok := metrics["archwise.recommend.duration_ms"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}

func TestSetupProviderWithoutEndpoint(t *testing.T) {
	shutdown, err := SetupProvider(context.Background(), Config{})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
