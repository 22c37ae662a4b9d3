package pipeline

import (
	"time"

	"github.com/kbukum/livecoll/errors"
	"github.com/kbukum/livecoll/reactive"
)

// Mapped is a mapping result paired with a cleanup hook. Dispose runs when
// the value is replaced by a re-evaluation, when its element leaves the
// source, or when the transformation is disposed. A nil Dispose is allowed.
type Mapped[U any] struct {
	Value   U
	Dispose func()
}

// MapOptions configures Map. Exactly one of Mapping and MappingWithDispose
// must be set; DisposeItem may only accompany Mapping.
type MapOptions[T, U any] struct {
	// Name labels the transformation in logs, metrics and spans.
	Name string

	// Mapping projects an element. index is the element's output position
	// (or the position it would take when excluded); reading it with Get
	// re-runs the mapping whenever the position changes.
	Mapping func(item T, index reactive.ReadOnly[int]) U

	// MappingWithDispose projects an element and returns a hook that
	// releases whatever the projection allocated.
	MappingWithDispose func(item T, index reactive.ReadOnly[int]) Mapped[U]

	// DisposeItem receives every mapped value that is replaced or removed.
	DisposeItem func(U)

	// Throttle delays output notifications until the output has been quiet
	// for this long. Zero uses the runtime default; negative disables it.
	Throttle time.Duration
}

// Option adjusts the settings shared by every transformation.
type Option func(*settings)

type settings struct {
	name     string
	throttle time.Duration
}

// WithName labels the transformation in logs, metrics and spans.
func WithName(name string) Option {
	return func(s *settings) { s.name = name }
}

// WithThrottle delays output notifications. See MapOptions.Throttle.
func WithThrottle(d time.Duration) Option {
	return func(s *settings) { s.throttle = d }
}

func applyOptions(opts []Option) settings {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// resolveThrottle maps a configured throttle to the one in effect.
func resolveThrottle(rt *reactive.Runtime, d time.Duration) time.Duration {
	if d == 0 {
		d = rt.DefaultThrottle()
	}
	if d < 0 {
		return 0
	}
	return d
}

// mapper is the validated mapping configuration shared by every engine.
type mapper[T, P any] struct {
	mapping     func(T, reactive.ReadOnly[int]) P
	withDispose func(T, reactive.ReadOnly[int]) Mapped[P]
	disposeItem func(P)
}

func newMapper[T, P any](
	mapping func(T, reactive.ReadOnly[int]) P,
	withDispose func(T, reactive.ReadOnly[int]) Mapped[P],
	disposeItem func(P),
) (mapper[T, P], error) {
	m := mapper[T, P]{mapping: mapping, withDispose: withDispose, disposeItem: disposeItem}
	if withDispose != nil {
		if mapping != nil || disposeItem != nil {
			return m, errors.Configuration("MappingWithDispose cannot be used in conjunction with Mapping or DisposeItem")
		}
		return m, nil
	}
	if mapping == nil {
		return m, errors.Configuration("specify either Mapping or MappingWithDispose")
	}
	return m, nil
}

// run evaluates the mapping, returning the projection and its cleanup hook.
func (m mapper[T, P]) run(item T, index reactive.ReadOnly[int]) (P, func()) {
	if m.withDispose != nil {
		r := m.withDispose(item, index)
		return r.Value, r.Dispose
	}
	return m.mapping(item, index), nil
}

// probe evaluates the mapping without recording dependencies and releases
// the result immediately.
func (m mapper[T, P]) probe(rt *reactive.Runtime, item T) P {
	var (
		v    P
		hook func()
	)
	rt.Ignore(func() { v, hook = m.run(item, nil) })
	if hook != nil {
		hook()
	}
	if m.disposeItem != nil {
		m.disposeItem(v)
	}
	return v
}

// peek evaluates a plain Mapping without recording dependencies. It
// reports false when only MappingWithDispose is configured, since that
// would allocate a resource just to read the value.
func (m mapper[T, P]) peek(rt *reactive.Runtime, item T) (P, bool) {
	var v P
	if m.mapping == nil {
		return v, false
	}
	rt.Ignore(func() { v = m.mapping(item, nil) })
	return v, true
}

// ignoreIndex adapts an index-free mapping.
func ignoreIndex[T, P any](fn func(T) P) func(T, reactive.ReadOnly[int]) P {
	if fn == nil {
		return nil
	}
	return func(item T, _ reactive.ReadOnly[int]) P { return fn(item) }
}

func ignoreIndexDispose[T, P any](fn func(T) Mapped[P]) func(T, reactive.ReadOnly[int]) Mapped[P] {
	if fn == nil {
		return nil
	}
	return func(item T, _ reactive.ReadOnly[int]) Mapped[P] { return fn(item) }
}
