package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swas/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

func TestSetup_Disabled(t *testing.T) {
	p, err := Setup(context.Background(), config.TelemetryConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.NotNil(t, p.Meter("test"))

	logger := zap.NewNop()
	assert.Same(t, logger, p.TeeLogger(logger, zapcore.InfoLevel))
	p.EnableSpanProfiles()
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func sumFor(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Sum[int64] {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				return sum
			}
		}
	}
	t.Fatalf("metric %s not collected", name)
	return metricdata.Sum[int64]{}
}

func TestOrderMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewOrderMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordIntake(ctx, "SMVAL-B-NCR", 3, 1250)
	m.RecordIntake(ctx, "SMVAL-B-NCR", 1, 400)
	m.RecordPayment(ctx, "SMVAL-B-NCR", "GCash", 400)
	m.RecordStatusTransition(ctx, "VAL-B-NCR", "Queued", "Ready for Delivery")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	intakes := sumFor(t, rm, metricIntakes)
	require.Len(t, intakes.DataPoints, 1)
	assert.Equal(t, int64(2), intakes.DataPoints[0].Value)

	pairs := sumFor(t, rm, metricIntakePairs)
	assert.Equal(t, int64(4), pairs.DataPoints[0].Value)

	payments := sumFor(t, rm, metricPayments)
	mode, ok := payments.DataPoints[0].Attributes.Value(attribute.Key("payment_mode"))
	require.True(t, ok)
	assert.Equal(t, "GCash", mode.AsString())

	transitions := sumFor(t, rm, metricStatusTransitions)
	to, _ := transitions.DataPoints[0].Attributes.Value(attribute.Key("to"))
	assert.Equal(t, "Ready for Delivery", to.AsString())
}

func TestStartSpanAndRecordError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	ctx, span := StartSpan(context.Background(), "analytics.refresh", attribute.String("job", "rollup"))
	assert.NotEmpty(t, TraceID(ctx))
	RecordError(span, gorm.ErrRecordNotFound)
	RecordError(span, errors.New("boom"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "analytics.refresh", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Len(t, ended[0].Events(), 1)

	assert.Empty(t, TraceID(context.Background()))
}

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Stop())

	_, err = NewProfiler(ProfilerConfig{Enabled: true}, zap.NewNop())
	assert.Error(t, err)

	ran := false
	WithProfilingLabels(context.Background(), "/api/v1/line-items", "GET", func(context.Context) { ran = true })
	assert.True(t, ran)
}
