package messaging_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ourritual/sdk-go/keys"
	"github.com/ourritual/sdk-go/logging"
	"github.com/ourritual/sdk-go/messaging"
	"github.com/ourritual/sdk-go/rcontext"
)

func TestWrapHandlerEndToEnd(t *testing.T) {
	fc := &fakeClient{}
	pub := messaging.NewPublisher(fc)

	// producer side
	ctx := rcontext.WithNew(context.Background())
	rcontext.FromContext(ctx).SetTopic("billing").SetCustom("order_id", "42")
	require.NoError(t, pub.Publish(ctx, "events", []byte(`{"ok":true}`), nil))

	// consumer side, isolated unit
	var seenTopic string
	var seenOrder any
	handler := messaging.WrapHandler(func(ctx context.Context, msg *messaging.Message) error {
		store := rcontext.FromContext(ctx)
		seenTopic, _ = store.Topic()
		seenOrder = store.Custom()["order_id"]
		return nil
	})

	msg := messaging.NewMessage([]byte(`{"ok":true}`), fc.last(t))
	require.NoError(t, handler(context.Background(), msg))
	assert.Equal(t, "billing", seenTopic)
	assert.Equal(t, "42", seenOrder)
}

func TestWrapHandlerMissingAttributeYieldsEmptyContext(t *testing.T) {
	handler := messaging.WrapHandler(func(ctx context.Context, msg *messaging.Message) error {
		store := rcontext.FromContext(ctx)
		if _, ok := store.Topic(); ok {
			t.Error("topic should be unset without a context attribute")
		}
		assert.Nil(t, store.Custom())
		return nil
	})
	require.NoError(t, handler(context.Background(), messaging.NewMessage(nil, nil)))
}

func TestWrapHandlerUndecodableAttributeIgnored(t *testing.T) {
	handler := messaging.WrapHandler(func(ctx context.Context, msg *messaging.Message) error {
		assert.Empty(t, rcontext.FromContext(ctx).ToMap())
		return nil
	})
	msg := messaging.NewMessage(nil, map[string]string{keys.ContextHeader: "not-valid-base64!!!"})
	require.NoError(t, handler(context.Background(), msg))
}

func TestWrapHandlerUndecodableAttributeWarns(t *testing.T) {
	var lines []string
	logging.SetLogger(funcr.New(func(_, args string) { lines = append(lines, args) }, funcr.Options{}))
	t.Cleanup(func() { logging.SetLogger(logr.Discard()) })

	handler := messaging.WrapHandler(func(ctx context.Context, msg *messaging.Message) error {
		return nil
	})

	// a decodable attribute stays silent
	good := map[string]string{keys.ContextHeader: rcontext.Encode(rcontext.New().SetTopic("billing"))}
	require.NoError(t, handler(context.Background(), messaging.NewMessage(nil, good)))
	assert.Empty(t, lines)

	bad := map[string]string{keys.ContextHeader: "not-valid-base64!!!"}
	require.NoError(t, handler(context.Background(), messaging.NewMessage(nil, bad)))
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "undecodable context attribute")
}

func TestWrapHandlerScopedRelease(t *testing.T) {
	var store *rcontext.Context
	handler := messaging.WrapHandler(func(ctx context.Context, msg *messaging.Message) error {
		store = rcontext.FromContext(ctx)
		store.SetCustom("scratch", "value")
		return nil
	})

	require.NoError(t, handler(context.Background(), messaging.NewMessage(nil, nil)))
	assert.Empty(t, store.ToMap(), "store must be reset after a successful delivery")
}

func TestWrapHandlerScopedReleaseOnError(t *testing.T) {
	cause := errors.New("handler failed")
	var store *rcontext.Context
	handler := messaging.WrapHandler(func(ctx context.Context, msg *messaging.Message) error {
		store = rcontext.FromContext(ctx)
		store.SetCustom("scratch", "value")
		return cause
	})

	err := handler(context.Background(), messaging.NewMessage(nil, nil))
	assert.Equal(t, cause, err, "handler error must propagate unchanged")
	assert.Empty(t, store.ToMap(), "store must be reset after a failed delivery")
}

func TestWrapHandlerIsolationUnderConcurrency(t *testing.T) {
	encode := func(topic string) map[string]string {
		c := rcontext.New().SetTopic(topic).SetCustom("unit", topic)
		return map[string]string{keys.ContextHeader: rcontext.Encode(c)}
	}

	handler := messaging.WrapHandler(func(ctx context.Context, msg *messaging.Message) error {
		want := string(msg.Data)
		store := rcontext.FromContext(ctx)
		for i := 0; i < 50; i++ {
			topic, _ := store.Topic()
			if topic != want || store.Custom()["unit"] != want {
				return errors.New("observed foreign context")
			}
		}
		return nil
	})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, topic := range []string{"alpha", "beta"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			msg := messaging.NewMessage([]byte(topic), encode(topic))
			errs[i] = handler(context.Background(), msg)
		}()
	}
	wg.Wait()
	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
}
