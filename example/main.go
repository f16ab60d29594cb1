// Example below shows how the annotation context set at an HTTP boundary
// travels through a message-queue hop and into the consumer's logs.

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	ritual "github.com/ourritual/sdk-go"
	"github.com/ourritual/sdk-go/handlers/httphandler"
	"github.com/ourritual/sdk-go/logging"
	"github.com/ourritual/sdk-go/messaging"
	"github.com/ourritual/sdk-go/messaging/memory"

	"go.uber.org/zap"
)

var (
	wg    sync.WaitGroup
	env   string
	debug bool
	port  int

	name      = "ritual-example"
	release   = "1.0.0"
	ritualOpt = ritual.ClientOptions{
		Name:    name,
		Release: release,
		// Environment is set from the -environment flag in main
	}
)

func main() {
	flag.StringVar(&env, "environment", "dev", "Environment: for example, dev, staging, qa (default dev)")
	flag.IntVar(&port, "port", 3000, "Port to listen/accept requests on")
	flag.BoolVar(&debug, "debug", true, "Debugging on/off")
	flag.Parse()
	ritualOpt.Environment = env

	// Create an interruptible context to use for graceful server shutdowns
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Configure structured logger.
	logger := newZapLogger(env, debug)
	defer logger.Sync()

	// Init the OurRitual propagation SDK
	ritualExit, ritualInitErr := ritual.Init(ctx, ritualOpt)
	if ritualInitErr != nil {
		fmt.Printf("\n%s\n\n", ritualInitErr.Error())
		os.Exit(-1)
	}
	defer ritualExit(context.Background())

	// In-process broker standing in for Pub/Sub, NATS, RabbitMQ or Kafka.
	broker := memory.New()
	publisher := messaging.NewPublisher(broker)

	// The consumer side: the wrapped handler restores the annotation
	// context published alongside the message, so logging.For picks up
	// the topic and order id set by the HTTP handler below.
	broker.Subscribe("orders", messaging.WrapHandler(func(ctx context.Context, msg *messaging.Message) error {
		logging.For(ctx, logger).Info("order received", zap.Int("bytes", len(msg.Data)))
		return nil
	}))

	mux := http.NewServeMux()
	mux.Handle("/orders", httphandler.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store := ritual.Context(r.Context())
		store.SetTopic("billing").SetCustom("order_id", r.URL.Query().Get("id"))

		if err := publisher.Publish(r.Context(), "orders", []byte(`{"status":"created"}`), nil); err != nil {
			logging.For(r.Context(), logger).Error("publish", zap.Error(err))
			http.Error(w, "publish failed", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})))

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("srv.ListenAndServe", zap.Error(err))
			os.Exit(-1)
		}
	}()

	// GRACEFUL SHUTDOWN
	// - watches for a "Done" signal to the context we setup at the start
	// - triggered by os.Interrupt, syscall.SIGINT, or syscall.SIGTERM
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	wg.Wait()
	os.Exit(2)
}
