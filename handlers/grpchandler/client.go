// Package grpchandler propagates the annotation context over gRPC metadata.
package grpchandler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/ourritual/sdk-go/global"
	"github.com/ourritual/sdk-go/keys"
	"github.com/ourritual/sdk-go/otel"
	"github.com/ourritual/sdk-go/rcontext"
)

// NewUnaryClientInterceptor returns a grpc.UnaryClientInterceptor that
// attaches the current unit's annotation context and trace headers to the
// outgoing call metadata.
func NewUnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		callOpts ...grpc.CallOption,
	) error {
		return invoker(outgoing(ctx), method, req, reply, cc, callOpts...)
	}
}

// NewStreamClientInterceptor returns the stream variant of
// NewUnaryClientInterceptor.
func NewStreamClientInterceptor() grpc.StreamClientInterceptor {
	return func(
		ctx context.Context,
		desc *grpc.StreamDesc,
		cc *grpc.ClientConn,
		method string,
		streamer grpc.Streamer,
		callOpts ...grpc.CallOption,
	) (grpc.ClientStream, error) {
		return streamer(outgoing(ctx), desc, cc, method, callOpts...)
	}
}

func outgoing(ctx context.Context) context.Context {
	md, ok := metadata.FromOutgoingContext(ctx)
	if !ok {
		md = metadata.MD{}
	}
	md = md.Copy()

	otel.GetTextMapPropagator().Inject(ctx, &otel.MetadataSupplier{Metadata: &md})
	if header := rcontext.Encode(rcontext.FromContext(ctx)); header != "" {
		md.Set(keys.ContextHeader, header)
	}
	if len(md.Get("user-agent")) == 0 {
		md.Set("user-agent", global.UserAgent())
	}
	return metadata.NewOutgoingContext(ctx, md)
}
