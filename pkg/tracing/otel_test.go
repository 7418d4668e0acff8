package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracer_RecordsSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	tr := NewWithProvider(tp)

	ctx, span := tr.StartValuationSpan(context.Background(), "stmts", "exec-1")
	assert.NotEmpty(t, GetTraceID(ctx))
	RecordSpanSuccess(span)
	span.End()

	_, span = tr.StartIndexBuildSpan(context.Background())
	RecordSpanError(span, errors.New("no catalogs"))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "indicator.valuate", ended[0].Name())
	assert.Equal(t, codes.Ok, ended[0].Status().Code)
	assert.Equal(t, "sizeindex.build", ended[1].Name())
	assert.Equal(t, codes.Error, ended[1].Status().Code)
}

func TestNewTracer_NoEndpointIsNoop(t *testing.T) {
	tr, err := NewTracer(Config{ServiceName: "covindicator"})
	require.NoError(t, err)

	ctx, span := tr.StartIndexBuildSpan(context.Background())
	span.End()
	assert.Empty(t, GetTraceID(ctx))
	assert.NoError(t, tr.Shutdown(context.Background()))
}
