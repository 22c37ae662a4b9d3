package pipeline

import (
	"time"

	"github.com/kbukum/livecoll/diff"
	"github.com/kbukum/livecoll/errors"
	"github.com/kbukum/livecoll/reactive"
)

// Collection is the read-only output of Map, Filter and SortBy. It is a
// Source itself, so transformations chain:
//
//	adults, _ := pipeline.Filter(people, isAdult)
//	byAge, _ := adults.SortBy(pipeline.SortOptions[Person]{Mapping: age})
type Collection[T any] struct {
	b        *base
	out      *reactive.Array[T]
	view     *reactive.Array[T]
	throttle *reactive.Throttle
	viewSub  *reactive.Subscription
	release  func()
	disposed bool
}

func newCollection[T any](b *base, out *reactive.Array[T], throttle time.Duration, release func()) *Collection[T] {
	c := &Collection[T]{b: b, out: out, view: out, release: release}
	if throttle > 0 {
		c.view = reactive.NewArray(b.rt, out.Peek()...)
		c.throttle = reactive.NewThrottle(b.rt, throttle)
		c.viewSub = out.Subscribe(func([]T) error {
			c.throttle.Trigger(func() error { return c.view.Set(c.out.Peek()) })
			return nil
		})
	}
	return c
}

// ID returns the instance id used in logs, metrics and spans.
func (c *Collection[T]) ID() string { return c.b.id }

// Name returns the configured name, or the transformation kind.
func (c *Collection[T]) Name() string { return c.b.name }

// Runtime returns the owning runtime.
func (c *Collection[T]) Runtime() *reactive.Runtime { return c.b.rt }

// Get returns the contents and records a dependency. The slice must not be
// modified.
func (c *Collection[T]) Get() []T { return c.view.Get() }

// Peek returns the contents without recording a dependency.
func (c *Collection[T]) Peek() []T { return c.view.Peek() }

// Len returns the number of elements.
func (c *Collection[T]) Len() int { return c.view.Len() }

// At returns the element at i.
func (c *Collection[T]) At(i int) (T, bool) { return c.view.At(i) }

// Subscribe registers fn to receive the contents after every change.
func (c *Collection[T]) Subscribe(fn func([]T) error) *reactive.Subscription {
	return c.view.Subscribe(fn)
}

// SubscribeChanges registers fn to receive the diff of every change.
func (c *Collection[T]) SubscribeChanges(fn func(diff.Script[T]) error) *reactive.Subscription {
	return c.view.SubscribeChanges(fn)
}

// Flush publishes a throttled change immediately.
func (c *Collection[T]) Flush() error {
	if c.throttle == nil {
		return nil
	}
	return c.throttle.Flush()
}

// Filter chains Filter on this collection.
func (c *Collection[T]) Filter(pred func(T) bool, opts ...Option) (*Collection[T], error) {
	return Filter[T](c, pred, opts...)
}

// SortBy chains SortBy on this collection.
func (c *Collection[T]) SortBy(opts SortOptions[T]) (*Collection[T], error) {
	return SortBy[T](c, opts)
}

// Dispose stops propagation into this collection and releases every
// per-element resource. It is safe to call more than once.
func (c *Collection[T]) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	if c.throttle != nil {
		c.throttle.Stop()
		c.viewSub.Dispose()
	}
	c.release()
}

// Disposed reports whether Dispose has been called.
func (c *Collection[T]) Disposed() bool { return c.disposed }

// checkSource rejects sources that have been disposed.
func checkSource(src any) error {
	if d, ok := src.(interface{ Disposed() bool }); ok && d.Disposed() {
		return errors.Disposed("source collection")
	}
	return nil
}
