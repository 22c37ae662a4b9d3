package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/livecoll/logger"
)

// InstrumentationName names the meter and tracer used by livecoll.
const InstrumentationName = "github.com/kbukum/livecoll"

// Exporter names accepted by MeterConfig and TracerConfig.
const (
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterPrometheus = "prometheus"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Exporter selects the reader: otlp, stdout or prometheus.
	Exporter string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval for push exporters.
	Interval time.Duration
	// Registerer receives the prometheus collector. Defaults to
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
	// Writer receives stdout exports. Defaults to os.Stdout.
	Writer io.Writer
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Exporter:       ExporterOTLP,
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// NewMetricReader builds the reader selected by config.Exporter.
func NewMetricReader(ctx context.Context, config *MeterConfig) (sdkmetric.Reader, error) {
	switch config.Exporter {
	case ExporterOTLP, "":
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(config.Endpoint),
		}
		if config.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("creating metric exporter: %w", err)
		}
		return periodic(exporter, config.Interval), nil
	case ExporterStdout:
		w := config.Writer
		if w == nil {
			w = os.Stdout
		}
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("creating stdout metric exporter: %w", err)
		}
		return periodic(exporter, config.Interval), nil
	case ExporterPrometheus:
		reg := config.Registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		exporter, err := promexporter.New(promexporter.WithRegisterer(reg))
		if err != nil {
			return nil, fmt.Errorf("creating prometheus exporter: %w", err)
		}
		return exporter, nil
	default:
		return nil, fmt.Errorf("unknown metric exporter %q", config.Exporter)
	}
}

func periodic(exporter sdkmetric.Exporter, interval time.Duration) sdkmetric.Reader {
	var opts []sdkmetric.PeriodicReaderOption
	if interval > 0 {
		opts = append(opts, sdkmetric.WithInterval(interval))
	}
	return sdkmetric.NewPeriodicReader(exporter, opts...)
}

// InitMeter initializes the meter provider with the configured exporter
// and installs it globally.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	reader, err := NewMetricReader(ctx, config)
	if err != nil {
		return nil, err
	}

	mp, err := NewMeterProvider(config, reader)
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"exporter", config.Exporter,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// NewMeterProvider builds a meter provider with the service resource and
// the given reader, without touching the global provider.
func NewMeterProvider(config *MeterConfig, reader sdkmetric.Reader) (*sdkmetric.MeterProvider, error) {
	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	), nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metric instrument names.
const (
	MetricEvaluations  = "pipeline.evaluations"
	MetricDiffs        = "pipeline.diffs"
	MetricDiffEntries  = "pipeline.diff.entries"
	MetricDiffDuration = "pipeline.diff.duration"
	MetricSortRebuilds = "pipeline.sort.rebuilds"
	MetricDisposals    = "pipeline.disposals"
	MetricErrors       = "pipeline.errors"
)

// TransformMetrics holds the instruments recorded by pipeline engines.
type TransformMetrics struct {
	evaluations  metric.Int64Counter
	diffs        metric.Int64Counter
	diffEntries  metric.Int64Histogram
	diffDuration metric.Float64Histogram
	rebuilds     metric.Int64Counter
	disposals    metric.Int64Counter
	errors       metric.Int64Counter
}

// NewTransformMetrics creates metric instruments on the given meter.
func NewTransformMetrics(meter metric.Meter) (*TransformMetrics, error) {
	evaluations, err := meter.Int64Counter(MetricEvaluations,
		metric.WithDescription("Mapping evaluations performed by element state trackers"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricEvaluations, err)
	}

	diffs, err := meter.Int64Counter(MetricDiffs,
		metric.WithDescription("Structural diffs applied to derived collections"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricDiffs, err)
	}

	diffEntries, err := meter.Int64Histogram(MetricDiffEntries,
		metric.WithDescription("Entries per applied diff"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricDiffEntries, err)
	}

	diffDuration, err := meter.Float64Histogram(MetricDiffDuration,
		metric.WithDescription("Time spent applying a diff in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricDiffDuration, err)
	}

	rebuilds, err := meter.Int64Counter(MetricSortRebuilds,
		metric.WithDescription("Full re-sorts after an item could not be located"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricSortRebuilds, err)
	}

	disposals, err := meter.Int64Counter(MetricDisposals,
		metric.WithDescription("Element states retired by removal or collection disposal"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricDisposals, err)
	}

	errorTotal, err := meter.Int64Counter(MetricErrors,
		metric.WithDescription("Errors returned from engines by code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricErrors, err)
	}

	return &TransformMetrics{
		evaluations:  evaluations,
		diffs:        diffs,
		diffEntries:  diffEntries,
		diffDuration: diffDuration,
		rebuilds:     rebuilds,
		disposals:    disposals,
		errors:       errorTotal,
	}, nil
}

// NopTransformMetrics returns metrics backed by a no-op meter.
func NopTransformMetrics() *TransformMetrics {
	m, _ := NewTransformMetrics(noop.NewMeterProvider().Meter(InstrumentationName))
	return m
}

func transformAttr(transform string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String(AttrTransform, transform))
}

// RecordEvaluation counts one mapping evaluation.
func (m *TransformMetrics) RecordEvaluation(ctx context.Context, transform string) {
	m.evaluations.Add(ctx, 1, transformAttr(transform))
}

// RecordDiff records an applied diff with its size and duration.
func (m *TransformMetrics) RecordDiff(ctx context.Context, transform string, entries int, duration time.Duration) {
	attrs := transformAttr(transform)
	m.diffs.Add(ctx, 1, attrs)
	m.diffEntries.Record(ctx, int64(entries), attrs)
	m.diffDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRebuild counts a full SortBy rebuild.
func (m *TransformMetrics) RecordRebuild(ctx context.Context, transform string, size int) {
	m.rebuilds.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrTransform, transform),
		attribute.Int(AttrSize, size),
	))
}

// RecordDisposal counts retired element states.
func (m *TransformMetrics) RecordDisposal(ctx context.Context, transform string, items int) {
	if items <= 0 {
		return
	}
	m.disposals.Add(ctx, int64(items), transformAttr(transform))
}

// RecordError counts an error returned by a transformation.
func (m *TransformMetrics) RecordError(ctx context.Context, transform, code string) {
	m.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrTransform, transform),
		attribute.String(AttrErrorCode, code),
	))
}
