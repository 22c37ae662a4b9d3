package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kbukum/livecoll/config"
	"github.com/kbukum/livecoll/logger"
	"github.com/kbukum/livecoll/reactive"
	"github.com/kbukum/livecoll/version"
)

// App owns a runtime and the telemetry providers behind it.
//
// Example:
//
//	app, err := bootstrap.New(cfg)
//	app.OnStop(func(ctx context.Context) error {
//	    feed.Dispose()
//	    return nil
//	})
//	err = app.RunTask(ctx, watch)
type App struct {
	Name    string
	Version string
	Cfg     *config.Config
	Logger  *logger.Logger
	Runtime *reactive.Runtime
	Summary *Summary

	opts            *appOptions
	gracefulTimeout time.Duration
	summaryOut      io.Writer
	shutdowns       []func(context.Context) error

	onStart []Hook
	onStop  []Hook

	mu      sync.Mutex
	started bool
	stopped bool
}

// New creates an application from cfg. It applies defaults, validates the
// config and initializes the logger; Start builds the runtime.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	o := resolveOptions(opts)
	app := &App{
		Name:            cfg.Name,
		Version:         cfg.Version,
		Cfg:             cfg,
		opts:            o,
		gracefulTimeout: 15 * time.Second,
		summaryOut:      os.Stdout,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.summaryOut != nil {
		app.summaryOut = o.summaryOut
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(cfg.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	app.Summary = NewSummary(cfg.Name, cfg.Version)
	return app, nil
}

// NewRuntime builds and starts a runtime from cfg. The returned function
// flushes telemetry and must be called on exit.
func NewRuntime(ctx context.Context, cfg *config.Config, opts ...Option) (*reactive.Runtime, func(context.Context) error, error) {
	app, err := New(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	if err := app.Start(ctx); err != nil {
		return nil, nil, err
	}
	return app.Runtime, app.Shutdown, nil
}

// Start initializes telemetry, builds the runtime and runs the OnStart
// hooks. Calling it again is a no-op.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return nil
	}
	start := time.Now()

	a.Logger.Info("Starting runtime", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	telemetryOpts, err := a.initTelemetry(ctx)
	if err != nil {
		a.flush(ctx)
		return fmt.Errorf("telemetry initialization failed: %w", err)
	}

	rtOpts := []reactive.Option{
		reactive.WithLogger(a.Logger),
		reactive.WithContext(ctx),
		reactive.WithDiffOptions(a.Cfg.Runtime.DiffOptions()),
		reactive.WithDefaultThrottle(a.Cfg.Runtime.DefaultThrottle),
	}
	rtOpts = append(rtOpts, telemetryOpts...)
	rtOpts = append(rtOpts, a.opts.runtimeOpts...)
	a.Runtime = reactive.NewRuntime(rtOpts...)

	if err := runHooks(ctx, a.onStart); err != nil {
		a.flush(ctx)
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	a.started = true

	a.Summary.TrackRuntime(a.Runtime.ID(), a.Cfg.Environment, version.Get().String(), a.Cfg.Runtime)
	a.Summary.SetStartupDuration(time.Since(start))
	a.Summary.DisplaySummary(a.summaryOut, a.Logger)
	return nil
}

// RunTask starts the runtime, runs task and shuts down when it returns or
// the process receives SIGINT/SIGTERM, which cancels the task context.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context, rt *reactive.Runtime) error) error {
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(taskCtx); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", map[string]interface{}{
				"signal": sig.String(),
			})
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx, a.Runtime)

	if stopErr := a.Shutdown(context.Background()); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// Shutdown runs the OnStop hooks and flushes the telemetry providers
// within the graceful timeout. Calling it again is a no-op.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started || a.stopped {
		return nil
	}
	a.stopped = true

	a.Logger.Info("Shutting down runtime", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})

	ctx, cancel := context.WithTimeout(ctx, a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.ErrorFields("on_stop", err))
		errs = append(errs, err)
	}
	if err := a.flush(ctx); err != nil {
		errs = append(errs, err)
	}

	a.Logger.Info("Runtime shutdown complete")
	return stderrors.Join(errs...)
}

// flush shuts the providers down in reverse order of creation.
func (a *App) flush(ctx context.Context) error {
	var errs []error
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		if err := a.shutdowns[i](ctx); err != nil {
			a.Logger.Error("telemetry shutdown error", logger.ErrorFields("shutdown", err))
			errs = append(errs, err)
		}
	}
	a.shutdowns = nil
	return stderrors.Join(errs...)
}
