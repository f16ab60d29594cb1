// Package httphandler propagates the annotation context over HTTP: inbound
// middleware installing a per-request store, and an outbound RoundTripper
// attaching the current snapshot to client requests.
package httphandler

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/ourritual/sdk-go/global"
	"github.com/ourritual/sdk-go/keys"
	"github.com/ourritual/sdk-go/logging"
	"github.com/ourritual/sdk-go/otel"
	"github.com/ourritual/sdk-go/rcontext"
)

// Middleware wraps next with per-request context recovery. Each request gets
// a fresh annotation store populated from the inbound ourritual-context
// header (when present), the trace context is extracted and a server span
// made current, and the store is reset when the request completes.
func Middleware(next http.Handler) http.Handler {
	tracer := otel.GetTracerProvider().Tracer(
		global.InstrumentationName(),
		trace.WithInstrumentationVersion(global.InstrumentationVersion()),
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := rcontext.WithNew(r.Context())
		store := rcontext.FromContext(ctx)
		defer store.Clear()

		if header := r.Header.Get(keys.ContextHeader); header != "" {
			decoded := rcontext.Decode(header)
			if len(decoded.ToMap()) == 0 {
				logging.Warn("dropping undecodable context header",
					"key", keys.ContextHeader, "path", r.URL.Path)
			}
			store.Merge(decoded)
		}
		ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(r.Header))

		ctx, span := tracer.Start(ctx, r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
			),
		)
		defer span.End()

		m := httpsnoop.CaptureMetrics(next, w, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.response.status_code", m.Code))
		if m.Code >= http.StatusInternalServerError {
			span.SetStatus(otelcodes.Error, http.StatusText(m.Code))
		}
		logging.Debug("handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", m.Code,
			"duration", m.Duration.String(),
		)
	})
}
