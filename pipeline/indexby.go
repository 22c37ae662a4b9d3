package pipeline

import (
	"slices"
	"time"

	"github.com/kbukum/livecoll/diff"
	"github.com/kbukum/livecoll/errors"
	"github.com/kbukum/livecoll/reactive"
)

// IndexOptions configures IndexBy and UniqueIndexBy. Exactly one of
// Mapping and MappingWithDispose must be set.
type IndexOptions[T any, K comparable] struct {
	// Name labels the transformation in logs, metrics and spans.
	Name string

	// Mapping derives the keys an element is indexed under. Use Key for a
	// single key.
	Mapping func(item T) []K

	// MappingWithDispose derives the keys and a cleanup hook.
	MappingWithDispose func(item T) Mapped[[]K]

	// DisposeItem receives every key list that is replaced or released.
	DisposeItem func([]K)

	// Throttle delays output notifications. See MapOptions.Throttle.
	Throttle time.Duration
}

// Key adapts a single-key function to an index mapping.
func Key[T any, K comparable](fn func(T) K) func(T) []K {
	return func(item T) []K { return []K{fn(item)} }
}

// bucketOps is how an index output stores elements under a key.
type bucketOps[T any, K comparable, M any] struct {
	insert func(out M, key K, item T)
	remove func(out M, key K, item T)
	// conflict reports a key that cannot take a new element, if any.
	conflict func(out M, keys []K) (K, bool)
}

func multiBuckets[T any, K comparable]() bucketOps[T, K, map[K][]T] {
	return bucketOps[T, K, map[K][]T]{
		insert: func(out map[K][]T, key K, item T) {
			out[key] = append(out[key], item)
		},
		remove: func(out map[K][]T, key K, item T) {
			bucket := out[key]
			i := slices.IndexFunc(bucket, func(x T) bool { return reactive.Identical(x, item) })
			switch {
			case i < 0:
			case len(bucket) == 1:
				delete(out, key)
			default:
				// Copy so slices handed out earlier keep their contents.
				out[key] = append(bucket[:i:i], bucket[i+1:]...)
			}
		},
	}
}

func uniqueBuckets[T any, K comparable]() bucketOps[T, K, map[K]T] {
	return bucketOps[T, K, map[K]T]{
		insert: func(out map[K]T, key K, item T) {
			out[key] = item
		},
		remove: func(out map[K]T, key K, item T) {
			if existing, ok := out[key]; ok && reactive.Identical(existing, item) {
				delete(out, key)
			}
		},
		conflict: func(out map[K]T, keys []K) (K, bool) {
			seen := make(map[K]struct{}, len(keys))
			for _, k := range keys {
				if _, ok := out[k]; ok {
					return k, true
				}
				if _, ok := seen[k]; ok {
					return k, true
				}
				seen[k] = struct{}{}
			}
			var zero K
			return zero, false
		},
	}
}

type indexState[T any, K comparable] struct {
	tr   *tracker[T, []K]
	keys []K
}

func (st *indexState[T, K]) item() T { return st.tr.item }

// indexEngine keeps a map from derived keys to the elements indexed under
// them. Tracked elements are found again through the first key their
// current mapping derives, without releasing anything, or by identity
// among the live elements.
type indexEngine[T any, K comparable, M any] struct {
	*base
	m       mapper[T, []K]
	ops     bucketOps[T, K, M]
	out     *reactive.Observable[M]
	byFirst map[K][]*indexState[T, K]
	live    map[*indexState[T, K]]struct{}
}

func newIndexEngine[T any, K comparable, M any](
	src Source[T],
	kind string,
	opts IndexOptions[T, K],
	empty M,
	ops bucketOps[T, K, M],
) (*indexEngine[T, K, M], error) {
	m, err := newMapper(ignoreIndex(opts.Mapping), ignoreIndexDispose(opts.MappingWithDispose), opts.DisposeItem)
	if err != nil {
		return nil, err
	}
	rt := src.Runtime()
	e := &indexEngine[T, K, M]{
		base:    newBase(rt, kind, opts.Name),
		m:       m,
		ops:     ops,
		out:     reactive.NewObservable(rt, empty),
		byFirst: make(map[K][]*indexState[T, K]),
		live:    make(map[*indexState[T, K]]struct{}),
	}
	if err := e.insert(src.Peek()); err != nil {
		e.dispose()
		return nil, err
	}
	e.sub = src.SubscribeChanges(func(script diff.Script[T]) error {
		return e.apply(len(script), func() error {
			if script.OnlyMoves() {
				return nil
			}
			e.out.WillMutate()
			err := applyKeyed[T, *indexState[T, K]](e.base, e, script)
			if herr := e.out.HasMutated(); err == nil {
				err = herr
			}
			return err
		})
	})
	return e, nil
}

func (e *indexEngine[T, K, M]) newState(item T) *indexState[T, K] {
	st := &indexState[T, K]{}
	st.tr = newTracker(e.base, item, e.m, nil, slices.Equal[[]K],
		func(keys []K) error { return e.keysChanged(st, keys) })
	st.keys = st.tr.value()
	return st
}

func (e *indexEngine[T, K, M]) track(st *indexState[T, K]) {
	e.live[st] = struct{}{}
	if len(st.keys) > 0 {
		e.byFirst[st.keys[0]] = append(e.byFirst[st.keys[0]], st)
	}
}

func (e *indexEngine[T, K, M]) untrack(st *indexState[T, K]) {
	delete(e.live, st)
	if len(st.keys) == 0 {
		return
	}
	first := st.keys[0]
	states := slices.DeleteFunc(e.byFirst[first], func(x *indexState[T, K]) bool { return x == st })
	if len(states) == 0 {
		delete(e.byFirst, first)
	} else {
		e.byFirst[first] = states
	}
}

// place adds st to the output under each of its keys. A unique index
// checks every key before storing any.
func (e *indexEngine[T, K, M]) place(st *indexState[T, K]) error {
	out := e.out.Peek()
	if e.ops.conflict != nil {
		if k, ok := e.ops.conflict(out, st.keys); ok {
			return errors.DuplicateKey(k)
		}
	}
	for _, k := range st.keys {
		e.ops.insert(out, k, st.item())
	}
	return nil
}

func (e *indexEngine[T, K, M]) unplace(st *indexState[T, K]) {
	out := e.out.Peek()
	for _, k := range st.keys {
		e.ops.remove(out, k, st.item())
	}
}

// keysChanged re-buckets an element under its new keys.
func (e *indexEngine[T, K, M]) keysChanged(st *indexState[T, K], keys []K) (err error) {
	if slices.Equal(keys, st.keys) {
		return nil
	}
	e.out.WillMutate()
	defer func() {
		if herr := e.out.HasMutated(); err == nil {
			err = herr
		}
	}()
	e.unplace(st)
	e.untrack(st)
	st.keys = keys
	e.track(st)
	return e.place(st)
}

func (e *indexEngine[T, K, M]) locate(item T) (*indexState[T, K], bool) {
	match := func(st *indexState[T, K]) bool { return reactive.Identical(st.item(), item) }
	if keys, ok := e.m.peek(e.rt, item); ok && len(keys) > 0 {
		if i := slices.IndexFunc(e.byFirst[keys[0]], match); i >= 0 {
			return e.byFirst[keys[0]][i], true
		}
	}
	for st := range e.live {
		if match(st) {
			return st, true
		}
	}
	return nil, false
}

func (e *indexEngine[T, K, M]) remove(st *indexState[T, K]) error {
	e.unplace(st)
	e.untrack(st)
	st.tr.dispose()
	return nil
}

// insert indexes items in order. A duplicate key stops the batch; elements
// indexed before it stay indexed.
func (e *indexEngine[T, K, M]) insert(items []T) error {
	for _, item := range items {
		st := e.newState(item)
		if err := e.place(st); err != nil {
			st.tr.dispose()
			return err
		}
		e.track(st)
	}
	return nil
}

func (e *indexEngine[T, K, M]) dispose() {
	n := len(e.live)
	for st := range e.live {
		st.tr.dispose()
	}
	clear(e.live)
	clear(e.byFirst)
	if e.sub != nil {
		e.released(n)
	}
}
