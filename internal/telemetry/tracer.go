package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// Option configures InitTracer.
type Option func(*options)

type options struct {
	writer   io.Writer
	sampler  sdktrace.Sampler
	register bool
}

// WithWriter sends exported spans to w instead of stdout.
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.writer = w }
}

// WithSampler overrides the default parent-based always-on sampler.
func WithSampler(s sdktrace.Sampler) Option {
	return func(o *options) { o.sampler = s }
}

// WithoutGlobal skips registering the provider as the global tracer provider.
func WithoutGlobal() Option {
	return func(o *options) { o.register = false }
}

// InitTracer initializes OpenTelemetry tracing and returns the provider. Call
// Shutdown on it to flush pending spans.
func InitTracer(serviceName string, logger *slog.Logger, opts ...Option) (*sdktrace.TracerProvider, error) {
	o := options{
		writer:   os.Stdout,
		sampler:  sdktrace.ParentBased(sdktrace.AlwaysSample()),
		register: true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	// Create stdout exporter for development
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(o.writer))
	if err != nil {
		return nil, err
	}

	// Create resource with service name
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(o.sampler),
	)

	if o.register {
		otel.SetTracerProvider(tp)
	}

	logger.Info("OpenTelemetry initialized", slog.String("service", serviceName))

	return tp, nil
}

// Shutdown flushes and stops tp.
func Shutdown(ctx context.Context, tp *sdktrace.TracerProvider) error {
	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}
