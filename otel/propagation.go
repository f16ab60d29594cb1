package otel

import (
	"context"
	"net/http"

	"github.com/ourritual/sdk-go/keys"
	"github.com/ourritual/sdk-go/rcontext"
	"google.golang.org/grpc/metadata"

	"go.opentelemetry.io/otel/propagation"
)

// RitualHeaders carries the annotation context over any OTel text map
// carrier, independently of (and alongside) the W3C trace headers.
type RitualHeaders struct{}

// Assert that RitualHeaders implements the TextMapPropagator interface
var _ propagation.TextMapPropagator = RitualHeaders{}

// Inject sets the encoded annotation context from ctx into the carrier.
// Nothing is written when the unit has no context.
func (RitualHeaders) Inject(ctx context.Context, carrier propagation.TextMapCarrier) {
	if header := rcontext.Encode(rcontext.FromContext(ctx)); header != "" {
		carrier.Set(keys.ContextHeader, header)
	}
}

// Extract returns a copy of parent with the annotation context from the
// carrier installed. When the receiving unit already has a store (a
// transport hook installed one), the decoded entries merge into it;
// otherwise a fresh store is installed. Parent is returned unchanged when
// the carrier has no context header.
func (RitualHeaders) Extract(parent context.Context, carrier propagation.TextMapCarrier) context.Context {
	header := carrier.Get(keys.ContextHeader)
	if header == "" {
		return parent
	}
	store, ok := rcontext.Lookup(parent)
	if !ok {
		parent = rcontext.WithNew(parent)
		store = rcontext.FromContext(parent)
	}
	store.Merge(rcontext.Decode(header))
	return parent
}

// Fields returns the keys who's values are set with Inject.
func (RitualHeaders) Fields() []string {
	return []string{keys.ContextHeader}
}

// Assert that MetadataSupplier implements the TextMapCarrier interface
var _ propagation.TextMapCarrier = &MetadataSupplier{}

type MetadataSupplier struct {
	Metadata *metadata.MD
}

// Get returns the value for the given key from metadata.
func (s *MetadataSupplier) Get(key string) string {
	values := s.Metadata.Get(key)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Set sets key-value pairs in metadata.
func (s *MetadataSupplier) Set(key string, value string) {
	s.Metadata.Set(key, value)
}

// Keys returns the keys who's values are set with Inject.
func (s *MetadataSupplier) Keys() []string {
	out := make([]string, 0, len(*s.Metadata))
	for key := range *s.Metadata {
		out = append(out, key)
	}
	return out
}

// ContextWithHeaders extracts OTEL TraceContext, Baggage, and RitualHeaders
// from a given http.Request.
func ContextWithHeaders(r *http.Request) context.Context {
	return GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}
