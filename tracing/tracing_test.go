package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// useExporter installs a fresh synchronous provider for the duration of the test.
func useExporter(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return exporter
}

func TestSpans(t *testing.T) {
	exporter := useExporter(t)

	ctx, outer := StartSpan(context.Background(), "dispatch worker")
	outer.WithAttributes(map[string]string{"vector": "SWI0"}).WithInt("priority", 1)
	assert.True(t, trace.SpanFromContext(ctx).SpanContext().IsValid())

	_, inner := StartSpan(ctx, "dispatch uart")
	EndSpan(inner, errors.New("boom"))
	EndSpan(outer, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "dispatch uart", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.String("parent.span_id", spans[1].SpanContext.SpanID().String()))
	assert.Equal(t, "dispatch worker", spans[1].Name)
	assert.Contains(t, spans[1].Attributes, attribute.Int("priority", 1))
	EndSpan(nil, nil)
}

func TestInitWithNilExporter(t *testing.T) {
	assert.NoError(t, InitWithExporter("rtsched", "0.0.1", nil))
}
