// Package workflow propagates the annotation context across workflow-engine
// boundaries: workflow starts, activity calls, and child workflows. The
// engine is abstracted behind a header map and a pair of interceptor
// extension points, so the propagation logic runs (and tests) without any
// real engine.
//
// Activities and workflows execute in isolated units (separate workers,
// possibly sandboxed), so a callee's context mutations are not visible to
// its caller. Callees that need the caller to observe updates return a
// ResultWithContext; the caller detects the wrapper and calls
// RestoreContextFromHeader before continuing.
package workflow

import "context"

// Payload is the opaque value type of an engine header entry. The encoded
// annotation context is carried as its raw bytes.
type Payload []byte

// Header is the outgoing/incoming call header map of the engine.
type Header map[string]Payload

// Clone returns a copy of h; a nil receiver yields an empty Header.
func (h Header) Clone() Header {
	out := make(Header, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// CallKind identifies which boundary a call crosses.
type CallKind int

const (
	CallWorkflow CallKind = iota
	CallChildWorkflow
	CallActivity
	CallLocalActivity
)

func (k CallKind) String() string {
	switch k {
	case CallWorkflow:
		return "workflow"
	case CallChildWorkflow:
		return "child_workflow"
	case CallActivity:
		return "activity"
	case CallLocalActivity:
		return "local_activity"
	default:
		return "unknown"
	}
}

// CallInput describes one intercepted call.
type CallInput struct {
	Kind   CallKind
	Name   string
	Header Header
}

// Next invokes the rest of the interceptor chain, ending at the engine (on
// the outbound side) or the target function (on the inbound side).
type Next func(ctx context.Context, in *CallInput) (any, error)
