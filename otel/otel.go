package otel

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/ourritual/sdk-go/logging"

	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Config struct {
	ServiceName        string
	ServiceRelease     string
	ServiceEnvironment string

	// CollectorURL is the OTLP gRPC endpoint. Empty selects the stdout
	// exporter (debug mode).
	CollectorURL string
	Headers      map[string]string
	SampleRate   float64
}

// Init bootstraps the OpenTelemetry trace pipeline and installs the text map
// propagator chain (W3C TraceContext, Baggage, RitualHeaders). If it does not
// return an error, make sure to call shutdown for proper cleanup.
func Init(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	res, err := newResource(ctx, cfg.ServiceName, cfg.ServiceRelease, cfg.ServiceEnvironment)
	if err != nil {
		return nil, fmt.Errorf("creating opentelemetry resource: %w", err)
	}

	if ratio, ok := os.LookupEnv("OURRITUAL_TRACE_SAMPLE_RATE"); ok {
		newRatio, err := strconv.ParseFloat(ratio, 64)
		if err != nil {
			logging.Error(err, "parsing OURRITUAL_TRACE_SAMPLE_RATE")
		} else {
			cfg.SampleRate = newRatio
		}
	}
	if cfg.SampleRate <= 0 || cfg.SampleRate > 1.0 {
		cfg.SampleRate = 1.0
	}

	var tp *trace.TracerProvider
	if cfg.CollectorURL == "" || os.Getenv("OURRITUAL_DEBUG") != "" {
		tp, err = initDebugTracer(res, cfg.SampleRate)
	} else {
		tp, err = initGrpcTracer(ctx, res, cfg)
	}
	if err != nil {
		return nil, err
	}

	InitTextMapPropagator(RitualHeaders{})

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		logging.Debug("shutdown opentelemetry trace exporter")
		return err
	}, nil
}

func newResource(ctx context.Context, name, rel, env string) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithHost(),
		resource.WithFromEnv(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(name),
			semconv.ServiceVersionKey.String(rel),
			semconv.DeploymentEnvironmentKey.String(env),
		),
	)
}
