package messaging

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/ourritual/sdk-go/global"
	"github.com/ourritual/sdk-go/keys"
	"github.com/ourritual/sdk-go/logging"
	"github.com/ourritual/sdk-go/otel"
	"github.com/ourritual/sdk-go/rcontext"
)

// Handler processes one message delivery.
type Handler func(ctx context.Context, msg *Message) error

// WrapHandler wraps a per-message handler with context and trace recovery.
//
// For every delivery the wrapped handler gets a fresh annotation store
// populated from the ourritual-context attribute (when present and
// decodable), and the message's trace context made current for the duration
// of the call under a consumer span. A handler error is recorded on the span
// and returned unchanged. The store is reset and the span ended on every
// exit path, including panics, so nothing leaks into the next delivery
// processed by the same worker.
func WrapHandler(h Handler) Handler {
	tracer := otel.GetTracerProvider().Tracer(
		global.InstrumentationName(),
		trace.WithInstrumentationVersion(global.InstrumentationVersion()),
	)

	return func(ctx context.Context, msg *Message) error {
		ctx = rcontext.WithNew(ctx)
		store := rcontext.FromContext(ctx)
		defer store.Clear()

		if header := msg.Attributes[keys.ContextHeader]; header != "" {
			decoded := rcontext.Decode(header)
			if len(decoded.ToMap()) == 0 {
				logging.Warn("dropping undecodable context attribute",
					"key", keys.ContextHeader, "message_id", msg.ID)
			}
			store.Merge(decoded)
		}
		if len(msg.Attributes) > 0 {
			ctx = tracePropagator.Extract(ctx, propagation.MapCarrier(msg.Attributes))
		}

		ctx, span := tracer.Start(ctx, global.ServiceName()+" - callback",
			trace.WithSpanKind(trace.SpanKindConsumer),
			trace.WithAttributes(
				attribute.String("messaging.system", "pubsub"),
				attribute.String("messaging.operation", "process"),
				attribute.String("messaging.message_id", msg.ID),
				attribute.String("service.name", global.ServiceName()),
			),
		)
		defer span.End()

		if err := h(ctx, msg); err != nil {
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
			return err
		}
		return nil
	}
}
