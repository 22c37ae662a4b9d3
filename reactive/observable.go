package reactive

// ReadOnly is the read side shared by Observable and Computed.
type ReadOnly[T any] interface {
	// Get returns the current value and records a dependency when called
	// inside a Computed evaluation.
	Get() T
	// Peek returns the current value without recording a dependency.
	Peek() T
	// Subscribe registers fn to receive each new value.
	Subscribe(fn func(T) error) *Subscription
}

// Observable is a settable value that notifies subscribers on change.
type Observable[T any] struct {
	rt    *Runtime
	value T
	subs  listeners[T]
	depth int
}

// NewObservable creates an observable holding initial.
func NewObservable[T any](rt *Runtime, initial T) *Observable[T] {
	return &Observable[T]{rt: rt, value: initial}
}

// Runtime returns the owning runtime.
func (o *Observable[T]) Runtime() *Runtime { return o.rt }

// Get returns the value and records a dependency.
func (o *Observable[T]) Get() T {
	o.rt.track(o)
	return o.value
}

// Peek returns the value without recording a dependency.
func (o *Observable[T]) Peek() T { return o.value }

// Set stores v and notifies subscribers unless v is Identical to the
// current value.
func (o *Observable[T]) Set(v T) error {
	if Identical(o.value, v) {
		return nil
	}
	o.value = v
	return o.Notify()
}

// Update replaces the value with fn applied to it.
func (o *Observable[T]) Update(fn func(T) T) error {
	return o.Set(fn(o.value))
}

// Notify delivers the current value to subscribers. Inside a
// WillMutate/HasMutated bracket delivery waits for the outermost
// HasMutated.
func (o *Observable[T]) Notify() error {
	if o.depth > 0 {
		return nil
	}
	return o.subs.notify(o.value)
}

// WillMutate opens a bracket for in-place changes to the held value.
func (o *Observable[T]) WillMutate() { o.depth++ }

// HasMutated closes a bracket. The outermost one notifies subscribers.
func (o *Observable[T]) HasMutated() error {
	if o.depth > 0 {
		o.depth--
	}
	if o.depth > 0 {
		return nil
	}
	return o.subs.notify(o.value)
}

// Subscribe registers fn to receive every notified value.
func (o *Observable[T]) Subscribe(fn func(T) error) *Subscription {
	return o.subs.add(fn)
}

// SubscriberCount returns the number of live subscriptions.
func (o *Observable[T]) SubscriberCount() int { return o.subs.len() }

func (o *Observable[T]) subscribeChange(fn func() error) *Subscription {
	return o.subs.add(func(T) error { return fn() })
}
