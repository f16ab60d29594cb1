package otel

import (
	"context"
	"strconv"

	"github.com/ourritual/sdk-go/keys"

	"go.opentelemetry.io/otel/trace"
)

// SpanAttributes renders the current span's identifiers as string message
// attributes (trace_id, span_id, trace_sampled, trace_valid). Returns nil
// when no span is recording a usable context.
func SpanAttributes(ctx context.Context) map[string]string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return nil
	}
	return map[string]string{
		keys.TraceID:      sc.TraceID().String(),
		keys.SpanID:       sc.SpanID().String(),
		keys.TraceSampled: strconv.FormatBool(sc.IsSampled()),
		keys.TraceValid:   strconv.FormatBool(sc.IsValid()),
	}
}
