package tracer

import (
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/stay-client/internal/platform/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const exporterSetupTimeout = 10 * time.Second

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(ctx context.Context) error

// Init installs a global tracer provider exporting over OTLP/gRPC. With an
// empty endpoint tracing stays disabled and the returned shutdown is a
// no-op. The W3C propagator is installed either way so outgoing requests
// carry traceparent headers when a span is active.
func Init(serviceName, otlpEndpoint string, log logger.Logger) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if otlpEndpoint == "" {
		log.Info("OpenTelemetry tracing is disabled: OTEL_EXPORTER_OTLP_ENDPOINT is not set")
		return func(context.Context) error { return nil }, nil
	}

	conn, err := grpc.NewClient(otlpEndpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP gRPC connection to %s: %w", otlpEndpoint, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), exporterSetupTimeout)
	defer cancel()

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceNameKey.String(serviceName)),
	)
	if err != nil {
		_ = exporter.Shutdown(ctx)
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create OpenTelemetry resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	log.Info("OpenTelemetry tracer initialized", "service_name", serviceName, "otlp_endpoint", otlpEndpoint)

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if cerr := conn.Close(); err == nil {
			err = cerr
		}
		return err
	}, nil
}
