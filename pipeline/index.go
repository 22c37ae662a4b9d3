package pipeline

import (
	"maps"
	"slices"
	"time"

	"github.com/kbukum/livecoll/reactive"
)

// indexOutput is the read side shared by Index and UniqueIndex.
type indexOutput[M any] struct {
	b        *base
	out      *reactive.Observable[M]
	view     *reactive.Observable[M]
	throttle *reactive.Throttle
	viewSub  *reactive.Subscription
	release  func()
	disposed bool
}

func newIndexOutput[M any](b *base, out *reactive.Observable[M], throttle time.Duration, clone func(M) M, release func()) *indexOutput[M] {
	o := &indexOutput[M]{b: b, out: out, view: out, release: release}
	if throttle > 0 {
		o.view = reactive.NewObservable(b.rt, clone(out.Peek()))
		o.throttle = reactive.NewThrottle(b.rt, throttle)
		o.viewSub = out.Subscribe(func(M) error {
			o.throttle.Trigger(func() error { return o.view.Set(clone(o.out.Peek())) })
			return nil
		})
	}
	return o
}

// ID returns the instance id used in logs, metrics and spans.
func (o *indexOutput[M]) ID() string { return o.b.id }

// Name returns the configured name, or the transformation kind.
func (o *indexOutput[M]) Name() string { return o.b.name }

// Runtime returns the owning runtime.
func (o *indexOutput[M]) Runtime() *reactive.Runtime { return o.b.rt }

// Get returns the index and records a dependency. The map must not be
// modified.
func (o *indexOutput[M]) Get() M { return o.view.Get() }

// Peek returns the index without recording a dependency.
func (o *indexOutput[M]) Peek() M { return o.view.Peek() }

// Subscribe registers fn to receive the index after every change.
func (o *indexOutput[M]) Subscribe(fn func(M) error) *reactive.Subscription {
	return o.view.Subscribe(fn)
}

// Flush publishes a throttled change immediately.
func (o *indexOutput[M]) Flush() error {
	if o.throttle == nil {
		return nil
	}
	return o.throttle.Flush()
}

// Dispose stops propagation into the index and releases every per-element
// resource. It is safe to call more than once.
func (o *indexOutput[M]) Dispose() {
	if o.disposed {
		return
	}
	o.disposed = true
	if o.throttle != nil {
		o.throttle.Stop()
		o.viewSub.Dispose()
	}
	o.release()
}

// Disposed reports whether Dispose has been called.
func (o *indexOutput[M]) Disposed() bool { return o.disposed }

// Index maps each key to every element currently indexed under it. Bucket
// order is the order elements were indexed in.
type Index[T any, K comparable] struct {
	*indexOutput[map[K][]T]
}

// IndexBy indexes the elements of src under the keys its mapping derives.
// An element may appear under several keys, and a key may hold several
// elements.
func IndexBy[T any, K comparable](src Source[T], opts IndexOptions[T, K]) (*Index[T, K], error) {
	if err := checkSource(src); err != nil {
		return nil, err
	}
	e, err := newIndexEngine(src, KindIndexBy, opts, make(map[K][]T), multiBuckets[T, K]())
	if err != nil {
		return nil, err
	}
	clone := func(m map[K][]T) map[K][]T { return maps.Clone(m) }
	return &Index[T, K]{newIndexOutput(e.base, e.out, resolveThrottle(src.Runtime(), opts.Throttle), clone, e.dispose)}, nil
}

// IndexByFunc is IndexBy with a single-key mapping.
func IndexByFunc[T any, K comparable](src Source[T], fn func(T) K, opts ...Option) (*Index[T, K], error) {
	s := applyOptions(opts)
	return IndexBy(src, IndexOptions[T, K]{Name: s.name, Mapping: Key(fn), Throttle: s.throttle})
}

// Lookup returns the elements indexed under key.
func (x *Index[T, K]) Lookup(key K) []T { return x.Peek()[key] }

// Keys returns the keys in no particular order.
func (x *Index[T, K]) Keys() []K { return slices.Collect(maps.Keys(x.Peek())) }

// Len returns the number of keys.
func (x *Index[T, K]) Len() int { return len(x.Peek()) }

// UniqueIndex maps each key to the one element indexed under it.
type UniqueIndex[T any, K comparable] struct {
	*indexOutput[map[K]T]
}

// UniqueIndexBy indexes the elements of src under the keys its mapping
// derives. Two elements mapping to the same key fail the mutation that
// caused it with errors.ErrCodeDuplicateKey.
func UniqueIndexBy[T any, K comparable](src Source[T], opts IndexOptions[T, K]) (*UniqueIndex[T, K], error) {
	if err := checkSource(src); err != nil {
		return nil, err
	}
	e, err := newIndexEngine(src, KindUniqueIndexBy, opts, make(map[K]T), uniqueBuckets[T, K]())
	if err != nil {
		return nil, err
	}
	clone := func(m map[K]T) map[K]T { return maps.Clone(m) }
	return &UniqueIndex[T, K]{newIndexOutput(e.base, e.out, resolveThrottle(src.Runtime(), opts.Throttle), clone, e.dispose)}, nil
}

// UniqueIndexByFunc is UniqueIndexBy with a single-key mapping.
func UniqueIndexByFunc[T any, K comparable](src Source[T], fn func(T) K, opts ...Option) (*UniqueIndex[T, K], error) {
	s := applyOptions(opts)
	return UniqueIndexBy(src, IndexOptions[T, K]{Name: s.name, Mapping: Key(fn), Throttle: s.throttle})
}

// Lookup returns the element indexed under key.
func (x *UniqueIndex[T, K]) Lookup(key K) (T, bool) {
	v, ok := x.Peek()[key]
	return v, ok
}

// Keys returns the keys in no particular order.
func (x *UniqueIndex[T, K]) Keys() []K { return slices.Collect(maps.Keys(x.Peek())) }

// Len returns the number of keys.
func (x *UniqueIndex[T, K]) Len() int { return len(x.Peek()) }
