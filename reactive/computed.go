package reactive

// Computed is a value derived from other reactive values. It evaluates once
// on creation and again, synchronously, whenever one of the dependencies
// read by its last evaluation notifies.
type Computed[T any] struct {
	rt    *Runtime
	fn    func() T
	equal func(a, b T) bool
	value T

	deps map[dependency]*Subscription
	subs listeners[T]

	evaluating bool
	disposed   bool
}

// NewComputed creates a computed that notifies when its result is not
// Identical to the previous one.
func NewComputed[T any](rt *Runtime, fn func() T) *Computed[T] {
	return NewComputedFunc(rt, fn, Identical[T])
}

// NewComputedFunc creates a computed with a custom change test. An equal
// that always returns false notifies after every re-evaluation.
func NewComputedFunc[T any](rt *Runtime, fn func() T, equal func(a, b T) bool) *Computed[T] {
	c := &Computed[T]{rt: rt, fn: fn, equal: equal, deps: make(map[dependency]*Subscription)}
	c.evaluate()
	return c
}

func (c *Computed[T]) evaluate() {
	f := c.rt.begin(c)
	func() {
		c.evaluating = true
		defer func() {
			c.evaluating = false
			c.rt.end()
		}()
		c.value = c.fn()
	}()
	c.resubscribe(f.deps)
}

func (c *Computed[T]) resubscribe(deps []dependency) {
	if c.disposed {
		c.release()
		return
	}
	next := make(map[dependency]*Subscription, len(deps))
	for _, d := range deps {
		if sub, ok := c.deps[d]; ok {
			next[d] = sub
			delete(c.deps, d)
			continue
		}
		next[d] = d.subscribeChange(c.dependencyChanged)
	}
	for _, sub := range c.deps {
		sub.Dispose()
	}
	c.deps = next
}

func (c *Computed[T]) dependencyChanged() error {
	if c.disposed || c.evaluating {
		return nil
	}
	old := c.value
	c.evaluate()
	if c.disposed || c.equal(old, c.value) {
		return nil
	}
	return c.subs.notify(c.value)
}

// Get returns the value and records a dependency.
func (c *Computed[T]) Get() T {
	c.rt.track(c)
	return c.value
}

// Peek returns the value without recording a dependency.
func (c *Computed[T]) Peek() T { return c.value }

// Subscribe registers fn to receive each changed value.
func (c *Computed[T]) Subscribe(fn func(T) error) *Subscription {
	return c.subs.add(fn)
}

// SubscriberCount returns the number of live subscriptions.
func (c *Computed[T]) SubscriberCount() int { return c.subs.len() }

// DependencyCount returns how many values the last evaluation read.
func (c *Computed[T]) DependencyCount() int { return len(c.deps) }

// Dispose releases every dependency subscription. The computed keeps its
// last value and never re-evaluates again.
func (c *Computed[T]) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.release()
}

// Disposed reports whether Dispose has been called.
func (c *Computed[T]) Disposed() bool { return c.disposed }

func (c *Computed[T]) release() {
	for _, sub := range c.deps {
		sub.Dispose()
	}
	c.deps = nil
}

func (c *Computed[T]) subscribeChange(fn func() error) *Subscription {
	return c.subs.add(func(T) error { return fn() })
}
