// Package bootstrap builds a ready reactive.Runtime from a config.Config.
//
// It initializes the logger, exports metrics and spans over OTLP when the
// telemetry section enables them, applies the runtime defaults (throttle,
// move detection) and flushes the exporters on shutdown.
//
// # Quick Start
//
//	cfg, err := config.Load("feeds")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app, err := bootstrap.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = app.RunTask(ctx, func(ctx context.Context, rt *reactive.Runtime) error {
//	    return watchFeeds(ctx, rt)
//	})
//
// NewRuntime is the short form for callers that manage their own lifecycle.
package bootstrap
