// Package observability provides OpenTelemetry metrics and tracing for
// livecoll engines.
//
// TransformMetrics counts mapping evaluations, applied diffs, SortBy
// rebuilds, disposals and errors per transformation kind. Engines wrap every
// diff application in a span named SpanApplyDiff. Both default to the global
// OpenTelemetry providers, which are no-ops until an application installs
// real ones.
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("inventory"))
//	defer mp.Shutdown(ctx)
//
//	m, err := observability.NewTransformMetrics(observability.Meter(observability.InstrumentationName))
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("inventory"))
//	defer tp.Shutdown(ctx)
package observability
