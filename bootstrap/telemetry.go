package bootstrap

import (
	"context"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/livecoll/errors"
	"github.com/kbukum/livecoll/observability"
	"github.com/kbukum/livecoll/reactive"
)

// initTelemetry returns the runtime options for the enabled exporters and
// records each provider for shutdown.
func (a *App) initTelemetry(ctx context.Context) ([]reactive.Option, error) {
	var opts []reactive.Option
	tel := a.Cfg.Telemetry

	if tel.Metrics {
		mp, target, err := a.meterProvider(ctx)
		if err != nil {
			return nil, errors.Telemetry("metrics", err)
		}
		a.shutdowns = append(a.shutdowns, mp.Shutdown)
		m, err := observability.NewTransformMetrics(mp.Meter(observability.InstrumentationName))
		if err != nil {
			return nil, errors.Telemetry("metrics", err)
		}
		opts = append(opts, reactive.WithMetrics(m))
		a.Summary.TrackExporter("metrics", target)
	}

	if tel.Tracing {
		tp, target, err := a.tracerProvider(ctx)
		if err != nil {
			return nil, errors.Telemetry("tracing", err)
		}
		a.shutdowns = append(a.shutdowns, tp.Shutdown)
		opts = append(opts, reactive.WithTracer(tp.Tracer(observability.InstrumentationName)))
		a.Summary.TrackExporter("tracing", target)
	}

	return opts, nil
}

func (a *App) meterProvider(ctx context.Context) (*sdkmetric.MeterProvider, string, error) {
	if a.opts.metricReader != nil {
		mp, err := observability.NewMeterProvider(a.Cfg.MeterConfig(), a.opts.metricReader)
		return mp, "custom reader", err
	}
	mc := a.Cfg.MeterConfig()
	mc.Registerer = a.opts.registerer
	mc.Writer = a.opts.telemetryOut
	mp, err := observability.InitMeter(ctx, mc)
	return mp, exporterTarget(mc.Exporter, mc.Endpoint), err
}

func (a *App) tracerProvider(ctx context.Context) (*sdktrace.TracerProvider, string, error) {
	if a.opts.spanProcessor != nil {
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(a.opts.spanProcessor),
			sdktrace.WithSampler(observability.Sampler(a.Cfg.Telemetry.SampleRate)),
		)
		return tp, "custom processor", nil
	}
	tc := a.Cfg.TracerConfig()
	tc.Writer = a.opts.telemetryOut
	tp, err := observability.InitTracer(ctx, tc)
	return tp, exporterTarget(tc.Exporter, tc.Endpoint), err
}

func exporterTarget(exporter, endpoint string) string {
	if exporter == observability.ExporterOTLP {
		return exporter + " " + endpoint
	}
	return exporter
}
