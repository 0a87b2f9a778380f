// Distributed tracing helpers, grounded on the teacher's
// telemetry/trace_context.go: package-level functions that operate on
// whatever span is already attached to ctx, safe to call even when no
// span (or only a no-op span) is present.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "deckforge"

// StartSpan starts a new span named name, attached to the returned
// context. Callers must call span.End() (typically via defer).
func StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name)
}

// AddSpanEvent marks a point in time within the current span (stage
// transitions, partial re-runs). A no-op if ctx carries no recording
// span.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}

// RecordSpanError records err on the current span and marks it failed.
// A no-op if ctx carries no recording span or err is nil.
func RecordSpanError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanAttributes adds business-context attributes to the current
// span (job id, stage, language). A no-op if ctx carries no recording
// span.
func SetSpanAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attrs...)
	}
}
