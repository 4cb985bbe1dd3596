// Package telemetry wires an optional OpenTelemetry tracer provider
// around the pipeline's three stages (accept, analyze, supervise). When
// no collector endpoint is configured, Setup leaves OTel's default
// no-op tracer in place so every Span call in the pipeline is free.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Options configures the tracer provider. An empty Endpoint leaves
// tracing disabled: Setup returns a no-op shutdown func and the
// process's global tracer stays the default no-op implementation.
type Options struct {
	Endpoint       string
	ServiceName    string
	ServiceVersion string
	Insecure       bool
}

// Setup installs a tracer provider exporting spans to Options.Endpoint
// via OTLP/gRPC, or leaves the default no-op provider installed when
// Endpoint is empty. The returned shutdown func flushes and closes the
// exporter; callers must call it before process exit.
func Setup(ctx context.Context, opts Options) (shutdown func(context.Context) error, err error) {
	if opts.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	dialOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(opts.Endpoint)}
	if opts.Insecure {
		dialOpts = append(dialOpts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create OTLP exporter: %w", err)
	}

	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = "bear"
	}
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(opts.ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return func(shutdownCtx context.Context) error {
		shutdownCtx, cancel := context.WithTimeout(shutdownCtx, 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("telemetry: shutdown tracer provider: %w", err)
		}
		return nil
	}, nil
}

// Tracer returns the package-scoped tracer used for the pipeline's
// spans. It's backed by whatever provider Setup installed (or the
// default no-op one).
func Tracer() trace.Tracer {
	return otel.Tracer("github.com/banksean/bear/internal/pipeline")
}

// StartAccept opens a span around a topology's producer stage
// (collecting Events off the transport, or reading them from a
// recorded event log in replay).
func StartAccept(ctx context.Context) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "pipeline.accept")
}

// StartAnalyze opens a span around recognizing, filtering and
// formatting a single captured Execution.
func StartAnalyze(ctx context.Context, executable string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "pipeline.analyze", trace.WithAttributes(
		attribute.String("bear.executable", executable),
	))
}

// StartSupervise opens a span around running the user's build command
// to completion.
func StartSupervise(ctx context.Context, argv []string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.Int("bear.argc", len(argv))}
	if len(argv) > 0 {
		attrs = append(attrs, attribute.String("bear.argv0", argv[0]))
	}
	return Tracer().Start(ctx, "pipeline.supervise", trace.WithAttributes(attrs...))
}

// End records err on span (if non-nil) and closes it. Pipeline call
// sites defer telemetry.End(span, &err) right after StartXxx.
func End(span trace.Span, err *error) {
	if err != nil && *err != nil {
		span.RecordError(*err)
		span.SetStatus(codes.Error, (*err).Error())
	}
	span.End()
}
