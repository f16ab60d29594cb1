// Package messaging attaches and recovers the per-unit annotation context at
// message-broker boundaries. The producer side rides on any broker client
// implementing Client; the consumer side wraps per-message handlers.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
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

// Client is a minimal broker-agnostic publish interface. Users can provide a
// wrapper around their broker connection to satisfy this; concrete adapters
// live in the nats, rabbitmq, kafka, and memory subpackages.
type Client interface {
	// Publish publishes a message to a topic with optional attributes.
	Publish(topic string, data []byte, attributes map[string]string) error
}

// Message is one delivery as seen by a consumer handler.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// NewMessage builds a Message with a generated ID.
func NewMessage(data []byte, attributes map[string]string) *Message {
	return &Message{
		ID:         uuid.NewString(),
		Data:       data,
		Attributes: attributes,
	}
}

// ErrorMessage is the envelope used for dead-letter publishes.
type ErrorMessage struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Publisher publishes messages with the annotation context and the trace
// context attached as independent attribute channels.
type Publisher struct {
	client Client
	tracer trace.Tracer
}

func NewPublisher(client Client) *Publisher {
	return &Publisher{
		client: client,
		tracer: otel.GetTracerProvider().Tracer(
			global.InstrumentationName(),
			trace.WithInstrumentationVersion(global.InstrumentationVersion()),
		),
	}
}

// tracePropagator carries only the trace channel. The annotation context is
// attached separately under its own key so the two never overwrite each other.
var tracePropagator = propagation.NewCompositeTextMapPropagator(
	propagation.TraceContext{},
	propagation.Baggage{},
)

// Publish sends data to topic. Immediately before the publish it snapshots
// the current annotation context into the ourritual-context attribute and
// adds the trace identifiers under their own attribute keys. Caller-supplied
// attributes are preserved.
func (p *Publisher) Publish(ctx context.Context, topic string, data []byte, attributes map[string]string) error {
	ctx, span := p.tracer.Start(ctx, global.ServiceName()+"_publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "pubsub"),
			attribute.String("messaging.destination.name", topic),
			attribute.String("service.name", global.ServiceName()),
		),
	)
	defer span.End()

	attrs := make(map[string]string, len(attributes)+6)
	for k, v := range attributes {
		attrs[k] = v
	}
	tracePropagator.Inject(ctx, propagation.MapCarrier(attrs))
	for k, v := range otel.SpanAttributes(ctx) {
		attrs[k] = v
	}
	if header := rcontext.Encode(rcontext.FromContext(ctx)); header != "" {
		attrs[keys.ContextHeader] = header
	}

	if err := p.client.Publish(topic, data, attrs); err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// PublishToDLQ wraps data and the failure in an ErrorMessage envelope and
// publishes it to the dead-letter topic. No context or trace attributes are
// attached; the envelope itself carries the failure.
func (p *Publisher) PublishToDLQ(ctx context.Context, dlqTopic string, data []byte, cause error) error {
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	body, err := json.Marshal(ErrorMessage{Message: string(data), Error: reason})
	if err != nil {
		return fmt.Errorf("marshal dlq envelope: %w", err)
	}
	if err := p.client.Publish(dlqTopic, body, nil); err != nil {
		return fmt.Errorf("publish to dlq %s: %w", dlqTopic, err)
	}
	logging.Info("published message to dlq", "topic", dlqTopic)
	return nil
}
