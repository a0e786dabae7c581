// Package otel wires OpenTelemetry trace export for the defence commands.
package otel

import (
	"context"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// noopShutdown stands in when tracing is disabled.
func noopShutdown(context.Context) error { return nil }

// exportEnabled reports whether a collector endpoint is configured and the
// explicit kill switch is not set.
func exportEnabled() (endpoint string, ok bool) {
	if strings.EqualFold(os.Getenv("DEFENCE_OTEL_ENABLED"), "false") {
		return "", false
	}
	endpoint = os.Getenv("DEFENCE_OTEL_ENDPOINT")
	return endpoint, endpoint != ""
}

// Setup registers a global tracer provider exporting OTLP over HTTP to
// DEFENCE_OTEL_ENDPOINT. Tracing is opt-in: with no endpoint, or with
// DEFENCE_OTEL_ENABLED=false, Setup registers nothing and the returned
// shutdown is a no-op. Callers defer shutdown to flush pending spans.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	endpoint, ok := exportEnabled()
	if !ok {
		return noopShutdown, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return noopShutdown, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noopShutdown, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return provider.Shutdown, nil
}
