package workflow

import (
	"context"

	"github.com/ourritual/sdk-go/keys"
	"github.com/ourritual/sdk-go/logging"
	"github.com/ourritual/sdk-go/rcontext"
)

// ContextPropagator moves the annotation context in and out of engine call
// headers. It is stateless and safe for concurrent use.
type ContextPropagator struct{}

// Inject snapshots the current unit's context and writes it into header
// under the context key. Latest wins: an inherited context header is
// overwritten so updates made since the last hop are reflected. Nothing is
// written (and any inherited header is left alone) when the current unit has
// no context.
func (ContextPropagator) Inject(ctx context.Context, header Header) {
	encoded := rcontext.Encode(rcontext.FromContext(ctx))
	if encoded == "" {
		return
	}
	header[keys.ContextHeader] = Payload(encoded)
}

// Extract decodes the context header (when present) and installs it as the
// new unit's store. Undecodable headers degrade to an empty store; Extract
// never fails.
func (ContextPropagator) Extract(ctx context.Context, header Header) context.Context {
	ctx = rcontext.WithNew(ctx)
	if payload, ok := header[keys.ContextHeader]; ok && len(payload) > 0 {
		decoded := rcontext.Decode(string(payload))
		if len(decoded.ToMap()) == 0 {
			logging.Warn("dropping undecodable context header", "key", keys.ContextHeader)
		}
		rcontext.FromContext(ctx).Merge(decoded)
	}
	return ctx
}
