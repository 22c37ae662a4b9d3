package config

import (
	"time"

	"github.com/kbukum/livecoll/diff"
	"github.com/kbukum/livecoll/logger"
	"github.com/kbukum/livecoll/observability"
	"github.com/kbukum/livecoll/validation"
	"github.com/kbukum/livecoll/version"
)

// Config is the configuration of a livecoll runtime.
//
// Projects embed it in their own config structs:
//
//	type MyConfig struct {
//	    config.Config `yaml:",inline" mapstructure:",squash"`
//	    Feeds FeedsConfig `yaml:"feeds" mapstructure:"feeds"`
//	}
type Config struct {
	Name        string          `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string          `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string          `yaml:"version" mapstructure:"version"`
	Debug       bool            `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config   `yaml:"logging" mapstructure:"logging"`
	Runtime     RuntimeConfig   `yaml:"runtime" mapstructure:"runtime"`
	Telemetry   TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// RuntimeConfig holds the defaults a runtime hands to every transformation.
type RuntimeConfig struct {
	// DefaultThrottle delays output publication of transformations that do
	// not set their own throttle. Zero publishes synchronously.
	DefaultThrottle time.Duration `yaml:"default_throttle" mapstructure:"default_throttle" validate:"gte=0"`
	// MoveDetection correlates removals and additions of equal elements
	// into moves when diffing sources.
	MoveDetection bool `yaml:"move_detection" mapstructure:"move_detection"`
	// MoveCompareLimit caps failed comparisons during move detection.
	// Zero keeps the default; negative removes the cap.
	MoveCompareLimit int `yaml:"move_compare_limit" mapstructure:"move_compare_limit"`
}

// DiffOptions converts the runtime settings into diff options.
func (c RuntimeConfig) DiffOptions() diff.Options {
	return diff.Options{DetectMoves: c.MoveDetection, CompareLimit: c.MoveCompareLimit}
}

// TelemetryConfig enables OTLP export of transformation metrics and spans.
type TelemetryConfig struct {
	Metrics bool `yaml:"metrics" mapstructure:"metrics"`
	Tracing bool `yaml:"tracing" mapstructure:"tracing"`
	// MetricExporter is otlp, stdout or prometheus.
	MetricExporter string `yaml:"metric_exporter" mapstructure:"metric_exporter" validate:"omitempty,oneof=otlp stdout prometheus"`
	// TraceExporter is otlp or stdout.
	TraceExporter string        `yaml:"trace_exporter" mapstructure:"trace_exporter" validate:"omitempty,oneof=otlp stdout"`
	Endpoint      string        `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure      bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate    float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Interval      time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// Enabled reports whether any exporter is configured.
func (c TelemetryConfig) Enabled() bool { return c.Metrics || c.Tracing }

// needsEndpoint reports whether an enabled exporter pushes over OTLP.
func (c TelemetryConfig) needsEndpoint() bool {
	return (c.Metrics && c.MetricExporter == observability.ExporterOTLP) ||
		(c.Tracing && c.TraceExporter == observability.ExporterOTLP)
}

// Default returns the configuration used when no file or environment
// overrides it. LoadConfig decodes on top of the value it is given, so
// start from Default to keep these values for absent keys.
func Default(name string) Config {
	return Config{
		Name:        name,
		Environment: "development",
		Runtime: RuntimeConfig{
			MoveDetection: true,
		},
		Telemetry: TelemetryConfig{
			MetricExporter: observability.ExporterOTLP,
			TraceExporter:  observability.ExporterOTLP,
			Endpoint:       "localhost:4318",
			Insecure:       true,
			SampleRate:     1.0,
			Interval:       15 * time.Second,
		},
	}
}

// ApplyDefaults fills unset fields.
// Embedding structs override this and call c.Config.ApplyDefaults() first.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Version == "" {
		c.Version = version.Get().Version
	}
	// Propagate service name into logging so the logger uses the right tag.
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
	if c.Telemetry.MetricExporter == "" {
		c.Telemetry.MetricExporter = observability.ExporterOTLP
	}
	if c.Telemetry.TraceExporter == "" {
		c.Telemetry.TraceExporter = observability.ExporterOTLP
	}
	if c.Telemetry.Enabled() && c.Telemetry.Interval == 0 {
		c.Telemetry.Interval = 15 * time.Second
	}
}

// Validate checks struct tags, then the sections tags cannot express.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := validation.New().
		Check(!c.Telemetry.needsEndpoint() || c.Telemetry.Endpoint != "", "telemetry.endpoint", "is required for otlp export").
		Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}

// MeterConfig returns the meter settings for this service.
func (c *Config) MeterConfig() *observability.MeterConfig {
	return &observability.MeterConfig{
		ServiceName:    c.Name,
		ServiceVersion: c.Version,
		Environment:    c.Environment,
		Exporter:       c.Telemetry.MetricExporter,
		Endpoint:       c.Telemetry.Endpoint,
		Insecure:       c.Telemetry.Insecure,
		Interval:       c.Telemetry.Interval,
	}
}

// TracerConfig returns the tracer settings for this service.
func (c *Config) TracerConfig() observability.TracerConfig {
	return observability.TracerConfig{
		ServiceName:    c.Name,
		ServiceVersion: c.Version,
		Environment:    c.Environment,
		Exporter:       c.Telemetry.TraceExporter,
		Endpoint:       c.Telemetry.Endpoint,
		Insecure:       c.Telemetry.Insecure,
		SampleRate:     c.Telemetry.SampleRate,
	}
}
