package grpchandler_test

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/ourritual/sdk-go/handlers/grpchandler"
	"github.com/ourritual/sdk-go/keys"
	"github.com/ourritual/sdk-go/logging"
	"github.com/ourritual/sdk-go/rcontext"
)

func TestClientInterceptorAttachesMetadata(t *testing.T) {
	ctx := rcontext.WithNew(context.Background())
	rcontext.FromContext(ctx).SetTopic("billing").SetCustom("order_id", "42")

	var outgoing metadata.MD
	invoker := func(ctx context.Context, method string, req, reply interface{},
		cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		outgoing, _ = metadata.FromOutgoingContext(ctx)
		return nil
	}

	err := grpchandler.NewUnaryClientInterceptor()(ctx, "/ritual.v1.Sessions/Create", nil, nil, nil, invoker)
	require.NoError(t, err)

	vals := outgoing.Get(keys.ContextHeader)
	require.Len(t, vals, 1)
	decoded := rcontext.Decode(vals[0])
	topic, _ := decoded.Topic()
	assert.Equal(t, "billing", topic)
	assert.Equal(t, "42", decoded.Custom()["order_id"])
	assert.NotEmpty(t, outgoing.Get("user-agent"))
}

func TestClientInterceptorWithoutContext(t *testing.T) {
	var outgoing metadata.MD
	invoker := func(ctx context.Context, method string, req, reply interface{},
		cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		outgoing, _ = metadata.FromOutgoingContext(ctx)
		return nil
	}

	err := grpchandler.NewUnaryClientInterceptor()(context.Background(), "/x/Y", nil, nil, nil, invoker)
	require.NoError(t, err)
	assert.Empty(t, outgoing.Get(keys.ContextHeader))
}

func TestServerInterceptorInstallsAndResets(t *testing.T) {
	encoded := rcontext.Encode(rcontext.New().SetTopic("billing").SetCustom("order_id", "42"))
	inbound := metadata.Pairs(keys.ContextHeader, encoded)
	ctx := metadata.NewIncomingContext(context.Background(), inbound)

	var store *rcontext.Context
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		store = rcontext.FromContext(ctx)
		topic, _ := store.Topic()
		assert.Equal(t, "billing", topic)
		assert.Equal(t, "42", store.Custom()["order_id"])
		return "ok", nil
	}

	res, err := grpchandler.NewUnaryServerInterceptor()(ctx, nil, &grpc.UnaryServerInfo{}, handler)
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Empty(t, store.ToMap(), "store must be reset after the call")
}

func TestServerInterceptorWarnsOnUndecodableMetadata(t *testing.T) {
	var lines []string
	logging.SetLogger(funcr.New(func(_, args string) { lines = append(lines, args) }, funcr.Options{}))
	t.Cleanup(func() { logging.SetLogger(logr.Discard()) })

	inbound := metadata.Pairs(keys.ContextHeader, "not-valid-base64!!!")
	ctx := metadata.NewIncomingContext(context.Background(), inbound)
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		assert.Empty(t, rcontext.FromContext(ctx).ToMap())
		return nil, nil
	}

	_, err := grpchandler.NewUnaryServerInterceptor()(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/x/Y"}, handler)
	require.NoError(t, err)
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "undecodable context metadata")
}

func TestClientServerRoundTrip(t *testing.T) {
	callerCtx := rcontext.WithNew(context.Background())
	rcontext.FromContext(callerCtx).SetTopic("billing")

	var serverSawTopic string
	serverHandler := func(ctx context.Context, req interface{}) (interface{}, error) {
		serverSawTopic, _ = rcontext.FromContext(ctx).Topic()
		return nil, nil
	}

	invoker := func(ctx context.Context, method string, req, reply interface{},
		cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		// simulate the wire: outgoing metadata becomes incoming metadata
		md, _ := metadata.FromOutgoingContext(ctx)
		serverCtx := metadata.NewIncomingContext(context.Background(), md)
		_, err := grpchandler.NewUnaryServerInterceptor()(serverCtx, req, &grpc.UnaryServerInfo{}, serverHandler)
		return err
	}

	err := grpchandler.NewUnaryClientInterceptor()(callerCtx, "/ritual.v1.Sessions/Create", nil, nil, nil, invoker)
	require.NoError(t, err)
	assert.Equal(t, "billing", serverSawTopic)
}
