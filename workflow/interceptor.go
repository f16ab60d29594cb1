package workflow

import (
	"context"

	"github.com/ourritual/sdk-go/logging"
	"github.com/ourritual/sdk-go/rcontext"
)

// Interceptor wires the ContextPropagator into an engine's call chain.
// Register InterceptOutbound where calls are issued (client workflow starts,
// workflow-to-activity, workflow-to-child-workflow) and InterceptInbound
// where they begin executing (activity and workflow workers).
type Interceptor struct {
	prop ContextPropagator
}

func NewInterceptor() *Interceptor {
	return &Interceptor{}
}

// InterceptOutbound snapshots the current context into the call's headers
// before the call is issued. The snapshot is taken at call-issue time;
// later mutations in the caller do not affect the dispatched call.
func (i *Interceptor) InterceptOutbound(ctx context.Context, in *CallInput, next Next) (any, error) {
	if in.Header == nil {
		in.Header = Header{}
	}
	i.prop.Inject(ctx, in.Header)
	logging.Debug("injected context into outbound call", "kind", in.Kind.String(), "name", in.Name)
	return next(ctx, in)
}

// InterceptInbound installs the propagated context as a fresh store for the
// new execution unit, invokes the target, and resets the store on every
// exit path. Target errors propagate unchanged.
func (i *Interceptor) InterceptInbound(ctx context.Context, in *CallInput, next Next) (any, error) {
	ctx = i.prop.Extract(ctx, in.Header)
	defer rcontext.FromContext(ctx).Clear()
	return next(ctx, in)
}
