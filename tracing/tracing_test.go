package tracing

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	defer otel.SetTracerProvider(previous)

	ctx, parent := StartSpan(context.Background(), "elop.load")
	parent.WithAttributes(map[string]string{"icd": "icd.csv"})
	_, child := StartSpan(ctx, "icd.load")
	child.WithInt("rows", 2)
	EndSpan(child, errors.New("boom"))
	EndSpan(parent, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "icd.load", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, "elop.load", spans[1].Name)
	assert.Equal(t, codes.Ok, spans[1].Status.Code)
}

func TestNilSpan(t *testing.T) {
	var span *Span
	assert.Nil(t, span.WithAttributes(map[string]string{"k": "v"}))
	assert.Nil(t, span.WithInt("k", 1))
	EndSpan(nil, nil)
}

func TestInit_FirstWins(t *testing.T) {
	previous := otel.GetTracerProvider()
	defer otel.SetTracerProvider(previous)

	require.NoError(t, InitWithExporter("elop", "test", tracetest.NewInMemoryExporter()))
	installed := otel.GetTracerProvider()

	output := filepath.Join(t.TempDir(), "trace.json")
	require.NoError(t, Init("elop", "test", output))
	assert.NoFileExists(t, output)
	assert.Same(t, installed, otel.GetTracerProvider())
	assert.NoError(t, InitWithExporter("elop", "test", nil))
}
