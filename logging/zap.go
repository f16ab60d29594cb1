package logging

import (
	"context"

	"go.uber.org/zap"

	"github.com/ourritual/sdk-go/rcontext"
)

// ContextField is the structured-payload field the annotation context is
// merged under on every record.
const ContextField = "context"

// Fields returns the zap fields carrying the current unit's annotation
// context. Returns nothing when the unit has no context, so records are
// emitted unmodified rather than failing.
func Fields(ctx context.Context) []zap.Field {
	m := rcontext.FromContext(ctx).ToMap()
	if len(m) == 0 {
		return nil
	}
	return []zap.Field{zap.Any(ContextField, m)}
}

// For returns l with the current unit's annotation context attached. Safe to
// call with any ctx; on a nil logger the zap global is used so logging never
// fails because of a context problem.
func For(ctx context.Context, l *zap.Logger) *zap.Logger {
	if l == nil {
		l = zap.L()
	}
	f := Fields(ctx)
	if len(f) == 0 {
		return l
	}
	return l.With(f...)
}
