package grpchandler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/ourritual/sdk-go/keys"
	"github.com/ourritual/sdk-go/logging"
	"github.com/ourritual/sdk-go/otel"
	"github.com/ourritual/sdk-go/rcontext"
)

// NewUnaryServerInterceptor returns a grpc.UnaryServerInterceptor that
// installs a fresh annotation store per call, populated from the incoming
// metadata, and resets it when the call completes.
func NewUnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		ctx = rcontext.WithNew(ctx)
		store := rcontext.FromContext(ctx)
		defer store.Clear()

		if md, ok := metadata.FromIncomingContext(ctx); ok {
			ctx = otel.GetTextMapPropagator().Extract(ctx, &otel.MetadataSupplier{Metadata: &md})
			if vals := md.Get(keys.ContextHeader); len(vals) > 0 && vals[0] != "" {
				decoded := rcontext.Decode(vals[0])
				if len(decoded.ToMap()) == 0 {
					logging.Warn("dropping undecodable context metadata",
						"key", keys.ContextHeader, "method", info.FullMethod)
				}
				store.Merge(decoded)
			}
		}
		return handler(ctx, req)
	}
}
