package pipeline

import (
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/livecoll/diff"
	"github.com/kbukum/livecoll/logger"
	"github.com/kbukum/livecoll/observability"
	"github.com/kbukum/livecoll/reactive"
)

// SortOptions configures SortBy. Exactly one of Mapping and
// MappingWithDispose must be set.
type SortOptions[T any] struct {
	// Name labels the transformation in logs, metrics and spans.
	Name string

	// Mapping derives the sort key tuple of an element. Wrap a component
	// with Desc to reverse it.
	Mapping func(item T) Keys

	// MappingWithDispose derives the key tuple and a cleanup hook.
	MappingWithDispose func(item T) Mapped[Keys]

	// DisposeItem receives every key tuple that is replaced or released.
	DisposeItem func(Keys)

	// Comparator orders single key components. Nil means DefaultComparator.
	Comparator Comparator

	// Throttle delays output notifications. See MapOptions.Throttle.
	Throttle time.Duration
}

type sortState[T any] struct {
	tr  *tracker[T, Keys]
	key Keys
}

func (st *sortState[T]) item() T { return st.tr.item }

// sortEngine keeps the source elements ordered by their key tuples. states
// and the output are parallel: states[i] tracks output element i.
type sortEngine[T any] struct {
	*base
	m       mapper[T, Keys]
	compare Comparator
	states  []*sortState[T]
	out     *reactive.Array[T]
}

// SortBy orders the elements of src by the key tuple its mapping derives.
// Key changes relocate a single element; structural changes insert and
// remove by binary search.
func SortBy[T any](src Source[T], opts SortOptions[T]) (*Collection[T], error) {
	if err := checkSource(src); err != nil {
		return nil, err
	}
	m, err := newMapper(ignoreIndex(opts.Mapping), ignoreIndexDispose(opts.MappingWithDispose), opts.DisposeItem)
	if err != nil {
		return nil, err
	}
	compare := opts.Comparator
	if compare == nil {
		compare = DefaultComparator
	}
	rt := src.Runtime()
	e := &sortEngine[T]{
		base:    newBase(rt, KindSortBy, opts.Name),
		m:       m,
		compare: compare,
		out:     reactive.NewArray[T](rt),
	}

	for _, item := range src.Peek() {
		e.states = append(e.states, e.newState(item))
	}
	slices.SortStableFunc(e.states, e.byKey)
	e.out.WillMutate()
	out := e.out.Backing()
	for _, st := range e.states {
		*out = append(*out, st.item())
	}
	_ = e.out.HasMutated()

	e.sub = src.SubscribeChanges(func(script diff.Script[T]) error {
		return e.apply(len(script), func() error {
			if script.OnlyMoves() {
				return nil
			}
			e.out.WillMutate()
			err := applyKeyed[T, int](e.base, e, script)
			if herr := e.out.HasMutated(); err == nil {
				err = herr
			}
			return err
		})
	})
	return newCollection(e.base, e.out, resolveThrottle(rt, opts.Throttle), e.dispose), nil
}

// SortByFunc is SortBy with a plain key mapping.
func SortByFunc[T any](src Source[T], fn func(T) Keys, opts ...Option) (*Collection[T], error) {
	s := applyOptions(opts)
	return SortBy(src, SortOptions[T]{Name: s.name, Mapping: fn, Throttle: s.throttle})
}

func (e *sortEngine[T]) newState(item T) *sortState[T] {
	st := &sortState[T]{}
	st.tr = newTracker(e.base, item, e.m, nil, keysEqual, func(keys Keys) error { return e.keyChanged(st, keys) })
	st.key = st.tr.value()
	return st
}

func (e *sortEngine[T]) byKey(a, b *sortState[T]) int {
	return compareKeys(a.key, b.key, e.compare)
}

// keyAt returns the stored key at i, or a fresh evaluation of it.
func (e *sortEngine[T]) keyAt(i int, fresh bool) Keys {
	if fresh {
		return e.m.probe(e.rt, e.states[i].item())
	}
	return e.states[i].key
}

// search returns a position whose key compares equal to target, or -1.
func (e *sortEngine[T]) search(target Keys, fresh bool) int {
	left, right := -1, len(e.states)
	for right-left > 1 {
		mid := int(uint(left+right) >> 1)
		switch c := compareKeys(e.keyAt(mid, fresh), target, e.compare); {
		case c < 0:
			left = mid
		case c > 0:
			right = mid
		default:
			return mid
		}
	}
	return -1
}

// indexOf locates the element matching match among those whose key equals
// target. Keys need not be unique, so the run of equal keys around the
// search hit is scanned backward, then forward.
func (e *sortEngine[T]) indexOf(target Keys, match func(*sortState[T]) bool, fresh bool) int {
	hit := e.search(target, fresh)
	if hit < 0 {
		return -1
	}
	if match(e.states[hit]) {
		return hit
	}
	for i := hit - 1; i >= 0 && compareKeys(e.keyAt(i, fresh), target, e.compare) == 0; i-- {
		if match(e.states[i]) {
			return i
		}
	}
	for i := hit + 1; i < len(e.states) && compareKeys(e.keyAt(i, fresh), target, e.compare) == 0; i++ {
		if match(e.states[i]) {
			return i
		}
	}
	return -1
}

// insertionIndex returns the first position whose key is not less than key.
func (e *sortEngine[T]) insertionIndex(key Keys) int {
	i, _ := slices.BinarySearchFunc(e.states, key, func(st *sortState[T], k Keys) int {
		return compareKeys(st.key, k, e.compare)
	})
	return i
}

func (e *sortEngine[T]) place(st *sortState[T]) error {
	i := e.insertionIndex(st.key)
	e.states = slices.Insert(e.states, i, st)
	return e.out.Insert(i, st.item())
}

func (e *sortEngine[T]) take(i int) error {
	e.states = slices.Delete(e.states, i, i+1)
	_, err := e.out.RemoveAt(i)
	return err
}

// keyChanged relocates an element whose key changed.
func (e *sortEngine[T]) keyChanged(st *sortState[T], keys Keys) error {
	if keysEqual(keys, st.key) {
		return nil
	}
	if !sameShape(keys, st.key) {
		// The ordering relation itself changed, so the stored keys of the
		// elements not yet re-evaluated cannot place this one.
		return e.rebuild()
	}
	old := e.indexOf(st.key, func(x *sortState[T]) bool { return x == st }, false)
	if old < 0 {
		return e.rebuild()
	}
	e.out.WillMutate()
	err := e.take(old)
	if err == nil {
		st.key = keys
		err = e.place(st)
	}
	if herr := e.out.HasMutated(); err == nil {
		err = herr
	}
	return err
}

// rebuild re-derives every key and sorts from scratch. It runs when the
// stored keys no longer locate an element.
func (e *sortEngine[T]) rebuild() error {
	ctx, span := e.rt.Tracer().Start(e.rt.Context(), observability.SpanSortRebuild, trace.WithAttributes(
		attribute.String(observability.AttrCollectionID, e.id),
		attribute.String(observability.AttrName, e.name),
		attribute.Int(observability.AttrSize, len(e.states)),
	))
	for _, st := range e.states {
		st.key = e.m.probe(e.rt, st.item())
	}
	// The output holds the same elements afterwards, so it is published
	// as a permutation of the current positions.
	order := make([]int, len(e.states))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(x, y int) int { return e.byKey(e.states[x], e.states[y]) })
	sorted := make([]*sortState[T], len(order))
	for i, p := range order {
		sorted[i] = e.states[p]
	}
	e.states = sorted
	e.rt.Metrics().RecordRebuild(ctx, e.kind, len(e.states))
	e.log.Debug("sort order rebuilt", logger.Fields(logger.FieldSize, len(e.states)))

	err := e.out.Reorder(order)
	observability.EndSpan(span, err)
	return err
}

// locate finds a deleted source element. The stored keys are tried first;
// when the element was removed because a value its key depends on changed,
// its stored key is stale, so fresh keys are tried next and a linear scan
// last.
func (e *sortEngine[T]) locate(item T) (int, bool) {
	match := func(st *sortState[T]) bool { return reactive.Identical(st.item(), item) }
	target := e.m.probe(e.rt, item)
	i := e.indexOf(target, match, false)
	if i < 0 {
		i = e.indexOf(target, match, true)
	}
	if i < 0 {
		i = slices.IndexFunc(e.states, match)
	}
	return i, i >= 0
}

func (e *sortEngine[T]) remove(i int) error {
	st := e.states[i]
	if err := e.take(i); err != nil {
		return err
	}
	st.tr.dispose()
	return nil
}

func (e *sortEngine[T]) insert(items []T) error {
	if len(e.states) == 0 {
		// Building from nothing: one sort instead of a search per element.
		for _, item := range items {
			e.states = append(e.states, e.newState(item))
		}
		slices.SortStableFunc(e.states, e.byKey)
		sorted := make([]T, len(e.states))
		for i, st := range e.states {
			sorted[i] = st.item()
		}
		return e.out.Push(sorted...)
	}
	for _, item := range items {
		if err := e.place(e.newState(item)); err != nil {
			return err
		}
	}
	return nil
}

func (e *sortEngine[T]) dispose() {
	n := len(e.states)
	for _, st := range e.states {
		st.tr.dispose()
	}
	e.states = nil
	e.released(n)
}
