package workflow

import (
	"context"

	"github.com/ourritual/sdk-go/logging"
	"github.com/ourritual/sdk-go/rcontext"
)

// ResultWithContext pairs an activity or child-workflow result with an
// encoded context snapshot. It is the explicit return path for context
// mutations made inside an isolated execution unit:
//
//	func myActivity(ctx context.Context, in Input) (*workflow.ResultWithContext, error) {
//		rcontext.FromContext(ctx).SetCustom("session_id", in.SessionID)
//		return &workflow.ResultWithContext{
//			Result:        out,
//			ContextHeader: workflow.CaptureContextHeader(ctx),
//		}, nil
//	}
//
// The caller detects the wrapper and reinstalls the snapshot:
//
//	if r, ok := res.(*workflow.ResultWithContext); ok {
//		workflow.RestoreContextFromHeader(ctx, r.ContextHeader)
//		res = r.Result
//	}
type ResultWithContext struct {
	Result        any    `json:"result"`
	ContextHeader string `json:"context_header,omitempty"`
}

// CaptureContextHeader encodes the current unit's context for embedding in a
// ResultWithContext. Returns the empty string when there is nothing to carry.
func CaptureContextHeader(ctx context.Context) string {
	return rcontext.Encode(rcontext.FromContext(ctx))
}

// RestoreContextFromHeader decodes header and merges it into the current
// unit's store, overwriting existing values. A blank or undecodable header
// is a no-op; it never fails.
func RestoreContextFromHeader(ctx context.Context, header string) {
	if header == "" {
		return
	}
	decoded := rcontext.Decode(header)
	if len(decoded.ToMap()) == 0 {
		logging.Warn("dropping undecodable result context header")
	}
	rcontext.FromContext(ctx).Merge(decoded)
}
