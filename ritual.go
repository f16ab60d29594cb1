// Package ritual is the OurRitual propagation SDK: it carries a logical
// request's annotation context (topic label plus custom key/values) across
// execution boundaries (HTTP calls, message-queue publish/consume cycles,
// workflow-engine activity and child-workflow hops) and merges it into
// structured logs on the far side.
package ritual

import (
	"context"
	"fmt"

	"github.com/ourritual/sdk-go/global"
	"github.com/ourritual/sdk-go/otel"
	"github.com/ourritual/sdk-go/rcontext"
)

type ClientOptions struct {
	Name        string // defines the service name --REQUIRED--
	Release     string // defines the service version (default: v0.0.0)
	Environment string // defines the deployment environment (default: dev)

	// OTLPCollectorURL is the gRPC trace collector endpoint. Empty keeps
	// traces on stdout (debug mode).
	OTLPCollectorURL string
	OTLPHeaders      map[string]string
	TraceSampleRate  float64
}

// Init initializes the SDK with ClientOptions: global state, the trace
// pipeline, and the text map propagator chain (which includes the
// annotation-context propagator). The returned shutdown flushes the trace
// exporter. The returned error is non-nil if options is invalid or if the
// SDK was already initialized.
func Init(ctx context.Context, options ClientOptions) (func(context.Context) error, error) {
	if options.Name == "" {
		return nil, fmt.Errorf("Name is a required option")
	}
	if options.Release == "" {
		options.Release = "v0.0.0"
	}
	if options.Environment == "" {
		options.Environment = "dev"
	}

	if err := global.NewState(options.Name, options.Release, options.Environment); err != nil {
		return nil, err
	}

	return otel.Init(ctx, otel.Config{
		ServiceName:        options.Name,
		ServiceRelease:     options.Release,
		ServiceEnvironment: options.Environment,
		CollectorURL:       options.OTLPCollectorURL,
		Headers:            options.OTLPHeaders,
		SampleRate:         options.TraceSampleRate,
	})
}

// Context returns the current unit's annotation store.
func Context(ctx context.Context) *rcontext.Context {
	return rcontext.FromContext(ctx)
}

// WithNewContext installs a fresh annotation store for a new logical unit.
// Transport hooks call this automatically; use it directly when a unit is
// started by hand (a cron tick, a background job).
func WithNewContext(ctx context.Context) context.Context {
	return rcontext.WithNew(ctx)
}
