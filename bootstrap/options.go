package bootstrap

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/livecoll/logger"
	"github.com/kbukum/livecoll/reactive"
)

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout *time.Duration
	metricReader    sdkmetric.Reader
	spanProcessor   sdktrace.SpanProcessor
	summaryOut      io.Writer
	telemetryOut    io.Writer
	registerer      prometheus.Registerer
	runtimeOpts     []reactive.Option
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the global logger is initialized from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithMetricReader replaces the OTLP exporter with reader when metrics are
// enabled. The meter provider is not installed globally.
func WithMetricReader(r sdkmetric.Reader) Option {
	return func(o *appOptions) {
		o.metricReader = r
	}
}

// WithSpanProcessor replaces the OTLP exporter with p when tracing is
// enabled. The tracer provider is not installed globally.
func WithSpanProcessor(p sdktrace.SpanProcessor) Option {
	return func(o *appOptions) {
		o.spanProcessor = p
	}
}

// WithPrometheusRegisterer sets the registry the prometheus metric
// exporter registers with. Defaults to prometheus.DefaultRegisterer.
func WithPrometheusRegisterer(r prometheus.Registerer) Option {
	return func(o *appOptions) {
		o.registerer = r
	}
}

// WithTelemetryOutput sets where the stdout exporters write. Defaults to
// stdout.
func WithTelemetryOutput(w io.Writer) Option {
	return func(o *appOptions) {
		o.telemetryOut = w
	}
}

// WithSummaryOutput sets where the startup summary is printed. Defaults to
// stdout.
func WithSummaryOutput(w io.Writer) Option {
	return func(o *appOptions) {
		o.summaryOut = w
	}
}

// WithRuntimeOptions appends options applied after the ones derived from
// config, so they win.
func WithRuntimeOptions(opts ...reactive.Option) Option {
	return func(o *appOptions) {
		o.runtimeOpts = append(o.runtimeOpts, opts...)
	}
}
