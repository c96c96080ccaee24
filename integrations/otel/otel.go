// Package otel exports the traces started by the router and the API client.
package otel

import (
	"context"
	"log/slog"

	"github.com/KiloProjects/blogfront"
	"github.com/KiloProjects/blogfront/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	enabled  = config.GenFlag[bool]("integrations.otel.enabled", false, "Export traces over OTLP")
	endpoint = config.GenFlag[string]("integrations.otel.endpoint", "localhost:4317", "OTLP gRPC collector address")
	insecure = config.GenFlag[bool]("integrations.otel.insecure", true, "Talk to the collector without TLS")
)

// Init installs the global tracer provider. The returned function flushes
// pending spans and must be called on shutdown.
func Init(ctx context.Context) (func(context.Context) error, error) {
	if !enabled.Value() {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint.Value())}
	if insecure.Value() {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			attribute.String("service.name", "blogfront"),
			attribute.String("service.version", blogfront.Version),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	slog.InfoContext(ctx, "Exporting traces", slog.String("endpoint", endpoint.Value()))
	return tp.Shutdown, nil
}
