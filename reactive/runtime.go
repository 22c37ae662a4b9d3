package reactive

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/livecoll/diff"
	"github.com/kbukum/livecoll/logger"
	"github.com/kbukum/livecoll/observability"
)

// Runtime is the context shared by a graph of reactive values.
type Runtime struct {
	id  string
	mu  sync.Mutex
	ctx context.Context

	frames []*frame

	log       *logger.Logger
	metrics   *observability.TransformMetrics
	tracer    trace.Tracer
	scheduler Scheduler
	diffOpts  diff.Options
	throttle  time.Duration
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger handed to engines.
func WithLogger(l *logger.Logger) Option {
	return func(rt *Runtime) { rt.log = l }
}

// WithMetrics sets the transform metrics.
func WithMetrics(m *observability.TransformMetrics) Option {
	return func(rt *Runtime) { rt.metrics = m }
}

// WithTracer sets the tracer used for diff application spans.
func WithTracer(t trace.Tracer) Option {
	return func(rt *Runtime) { rt.tracer = t }
}

// WithScheduler sets the scheduler used by throttles.
func WithScheduler(s Scheduler) Option {
	return func(rt *Runtime) { rt.scheduler = s }
}

// WithContext sets the context used for metrics and spans.
func WithContext(ctx context.Context) Option {
	return func(rt *Runtime) { rt.ctx = ctx }
}

// WithID overrides the generated runtime id.
func WithID(id string) Option {
	return func(rt *Runtime) { rt.id = id }
}

// WithDiffOptions sets how arrays compute their change scripts.
func WithDiffOptions(opts diff.Options) Option {
	return func(rt *Runtime) { rt.diffOpts = opts }
}

// WithDefaultThrottle sets the throttle applied to transformations that do
// not configure their own.
func WithDefaultThrottle(d time.Duration) Option {
	return func(rt *Runtime) { rt.throttle = d }
}

// NewRuntime creates a runtime. Without options it logs nothing, records
// metrics and spans on the global OpenTelemetry providers, and schedules
// throttles on real timers.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		id:       uuid.NewString(),
		ctx:      context.Background(),
		log:      logger.Nop(),
		diffOpts: diff.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.metrics == nil {
		m, err := observability.NewTransformMetrics(observability.Meter(observability.InstrumentationName))
		if err != nil {
			rt.log.Warn("falling back to no-op metrics", logger.ErrorFields("metrics", err))
			m = observability.NopTransformMetrics()
		}
		rt.metrics = m
	}
	if rt.tracer == nil {
		rt.tracer = observability.Tracer(observability.InstrumentationName)
	}
	if rt.scheduler == nil {
		rt.scheduler = &timerScheduler{rt: rt}
	}
	rt.log = rt.log.WithFields(logger.Fields(logger.FieldRuntime, rt.id))
	return rt
}

// ID returns the runtime instance id.
func (rt *Runtime) ID() string { return rt.id }

// Context returns the context used for telemetry.
func (rt *Runtime) Context() context.Context { return rt.ctx }

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *logger.Logger { return rt.log }

// Metrics returns the transform metrics.
func (rt *Runtime) Metrics() *observability.TransformMetrics { return rt.metrics }

// Tracer returns the tracer for engine spans.
func (rt *Runtime) Tracer() trace.Tracer { return rt.tracer }

// Scheduler returns the scheduler used by throttles.
func (rt *Runtime) Scheduler() Scheduler { return rt.scheduler }

// DiffOptions returns the options arrays use to compute change scripts.
func (rt *Runtime) DiffOptions() diff.Options { return rt.diffOpts }

// DefaultThrottle returns the throttle for transformations without their own.
func (rt *Runtime) DefaultThrottle() time.Duration { return rt.throttle }

// Do runs fn while holding the runtime lock. Scheduler callbacks take the
// same lock. Do is not reentrant.
func (rt *Runtime) Do(fn func() error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return fn()
}

// --- dependency tracking ---

// dependency is anything a Computed can subscribe to for change notifications.
type dependency interface {
	subscribeChange(fn func() error) *Subscription
}

type frame struct {
	owner  dependency
	ignore bool
	deps   []dependency
	seen   map[dependency]struct{}
}

func (rt *Runtime) begin(owner dependency) *frame {
	f := &frame{owner: owner}
	rt.frames = append(rt.frames, f)
	return f
}

func (rt *Runtime) end() {
	rt.frames = rt.frames[:len(rt.frames)-1]
}

// track records d as a dependency of the innermost evaluation, if any.
func (rt *Runtime) track(d dependency) {
	if len(rt.frames) == 0 {
		return
	}
	f := rt.frames[len(rt.frames)-1]
	if f.ignore || d == f.owner {
		return
	}
	if f.seen == nil {
		f.seen = make(map[dependency]struct{})
	}
	if _, ok := f.seen[d]; ok {
		return
	}
	f.seen[d] = struct{}{}
	f.deps = append(f.deps, d)
}

// Ignore runs fn without recording dependencies for the enclosing evaluation.
func (rt *Runtime) Ignore(fn func()) {
	rt.frames = append(rt.frames, &frame{ignore: true})
	defer rt.end()
	fn()
}

// Tracking reports whether reads are currently recorded as dependencies.
func (rt *Runtime) Tracking() bool {
	return len(rt.frames) > 0 && !rt.frames[len(rt.frames)-1].ignore
}
