package keys

type ContextKey string

const (
	// RootPrefix namespaces every encoded context entry.
	RootPrefix = "ourritual"

	// TopicPath is the reserved entry carrying the topic label.
	TopicPath = RootPrefix + "/topic/name"

	// ContextHeader is the attribute/header/metadata key under which the
	// encoded annotation context travels, on every transport.
	ContextHeader = "ourritual-context"
)

// Trace attributes attached to outgoing messages alongside (and independent
// of) the annotation context.
const (
	TraceID      = "trace_id"
	SpanID       = "span_id"
	TraceSampled = "trace_sampled"
	TraceValid   = "trace_valid"
)
