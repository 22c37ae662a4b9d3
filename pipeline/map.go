package pipeline

import (
	"slices"
	"time"

	"github.com/kbukum/livecoll/diff"
	"github.com/kbukum/livecoll/errors"
	"github.com/kbukum/livecoll/reactive"
)

// projection is a mapping result that may be left out of the output.
type projection[U any] struct {
	value    U
	included bool
}

type mapState[T, U any] struct {
	tr       *tracker[T, projection[U]]
	index    *reactive.Observable[int]
	pos      int
	included bool
}

// mapEngine keeps an output sequence that holds the projection of every
// included source element, in source order.
type mapEngine[T, U any] struct {
	*base
	m      mapper[T, projection[U]]
	states []*mapState[T, U]
	out    *reactive.Array[U]
}

// Map projects every element of src. The output follows src's order and
// re-evaluates an element only when something its mapping read changes.
func Map[T, U any](src Source[T], opts MapOptions[T, U]) (*Collection[U], error) {
	if err := checkSource(src); err != nil {
		return nil, err
	}
	m, err := newMapper(opts.Mapping, opts.MappingWithDispose, opts.DisposeItem)
	if err != nil {
		return nil, err
	}
	rt := src.Runtime()
	return newMapEngine(src, newBase(rt, KindMap, opts.Name), includeAll(m), resolveThrottle(rt, opts.Throttle)), nil
}

// MapFunc is Map with an index-free mapping.
func MapFunc[T, U any](src Source[T], fn func(T) U, opts ...Option) (*Collection[U], error) {
	s := applyOptions(opts)
	return Map(src, MapOptions[T, U]{Name: s.name, Mapping: ignoreIndex[T](fn), Throttle: s.throttle})
}

// FilterMap projects every element and keeps those for which fn reports
// true.
func FilterMap[T, U any](src Source[T], fn func(item T, index reactive.ReadOnly[int]) (U, bool), opts ...Option) (*Collection[U], error) {
	if err := checkSource(src); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, errors.Configuration("specify a projection")
	}
	s := applyOptions(opts)
	m := mapper[T, projection[U]]{mapping: func(item T, index reactive.ReadOnly[int]) projection[U] {
		v, ok := fn(item, index)
		return projection[U]{value: v, included: ok}
	}}
	rt := src.Runtime()
	return newMapEngine(src, newBase(rt, KindMap, s.name), m, resolveThrottle(rt, s.throttle)), nil
}

func includeAll[T, U any](m mapper[T, U]) mapper[T, projection[U]] {
	var pm mapper[T, projection[U]]
	if m.withDispose != nil {
		pm.withDispose = func(item T, index reactive.ReadOnly[int]) Mapped[projection[U]] {
			r := m.withDispose(item, index)
			return Mapped[projection[U]]{Value: projection[U]{value: r.Value, included: true}, Dispose: r.Dispose}
		}
	} else {
		pm.mapping = func(item T, index reactive.ReadOnly[int]) projection[U] {
			return projection[U]{value: m.mapping(item, index), included: true}
		}
	}
	if m.disposeItem != nil {
		pm.disposeItem = func(p projection[U]) { m.disposeItem(p.value) }
	}
	return pm
}

func newMapEngine[T, U any](src Source[T], b *base, m mapper[T, projection[U]], throttle time.Duration) *Collection[U] {
	e := &mapEngine[T, U]{base: b, m: m, out: reactive.NewArray[U](b.rt)}

	e.out.WillMutate()
	out := e.out.Backing()
	for i, item := range src.Peek() {
		st := e.newState(item, i, len(*out))
		e.states = append(e.states, st)
		if st.included {
			*out = append(*out, st.tr.value().value)
		}
	}
	_ = e.out.HasMutated()

	e.sub = src.SubscribeChanges(func(script diff.Script[T]) error {
		return e.apply(len(script), func() error { return e.applyDiff(script) })
	})
	return newCollection(b, e.out, throttle, e.dispose)
}

func (e *mapEngine[T, U]) newState(item T, pos, outputIndex int) *mapState[T, U] {
	st := &mapState[T, U]{pos: pos, index: reactive.NewObservable(e.rt, outputIndex)}
	st.tr = newTracker(e.base, item, e.m, reactive.ReadOnly[int](st.index), reactive.Identical[projection[U]],
		func(p projection[U]) error { return e.itemChanged(st, p) })
	st.included = st.tr.value().included
	return st
}

// applyDiff walks source positions from the first edited one to the end,
// applying each entry at its post-operation position and re-indexing the
// elements in between.
func (e *mapEngine[T, U]) applyDiff(script diff.Script[T]) (err error) {
	if len(script) == 0 {
		return nil
	}
	e.out.WillMutate()
	defer func() {
		if herr := e.out.HasMutated(); err == nil {
			err = herr
		}
	}()

	moved := make(map[int]*mapState[T, U])
	for _, entry := range script {
		if entry.Status != diff.Added || !entry.IsMove() {
			continue
		}
		if entry.Moved < 0 || entry.Moved >= len(e.states) {
			return errors.MalformedDiff("move source out of range")
		}
		moved[entry.Moved] = e.states[entry.Moved]
	}

	first := script[0]
	if first.Index < 0 {
		return errors.MalformedDiff("negative entry index")
	}
	o := e.out.Len()
	if o > 0 && first.Index < len(e.states) {
		o = e.states[first.Index].index.Peek()
	}

	next, editOffset := 0, 0
	for s := first.Index; next < len(script) || s < len(e.states); s++ {
		if next < len(script) && script[next].PostOperationIndex(editOffset) == s {
			entry := script[next]
			switch entry.Status {
			case diff.Added:
				st, err := e.insert(entry, moved, s, o)
				if err != nil {
					return err
				}
				o += b2i(st.included)
				editOffset++
			case diff.Deleted:
				if err := e.remove(entry, s, o); err != nil {
					return err
				}
				editOffset--
				s--
			}
			next++
			continue
		}
		if s >= len(e.states) {
			return errors.MalformedDiff("entry does not match any tracked position")
		}
		o, err = e.retain(e.states[s], s, o)
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *mapEngine[T, U]) insert(entry diff.Entry[T], moved map[int]*mapState[T, U], s, o int) (*mapState[T, U], error) {
	if s > len(e.states) {
		return nil, errors.MalformedDiff("insertion beyond end")
	}
	var st *mapState[T, U]
	if entry.IsMove() {
		st = moved[entry.Moved]
		if st == nil {
			return nil, errors.MalformedDiff("moved element not tracked")
		}
	} else {
		st = e.newState(entry.Value, s, o)
	}
	e.states = slices.Insert(e.states, s, st)
	if st.included {
		if o > e.out.Len() {
			return nil, errors.MalformedDiff("insertion beyond end of output")
		}
		if err := e.out.Insert(o, st.tr.value().value); err != nil {
			return nil, err
		}
	}
	if entry.IsMove() {
		// Re-indexing may re-run an index-aware mapping, which writes to
		// the slot at the new index, so it must follow the splice.
		st.pos = s
		if err := st.index.Set(o); err != nil {
			return nil, err
		}
	}
	return st, nil
}

func (e *mapEngine[T, U]) remove(entry diff.Entry[T], s, o int) error {
	if s >= len(e.states) {
		return errors.MalformedDiff("deletion beyond end")
	}
	st := e.states[s]
	e.states = slices.Delete(e.states, s, s+1)
	if st.included {
		if o >= e.out.Len() {
			return errors.MalformedDiff("deletion beyond end of output")
		}
		if _, err := e.out.RemoveAt(o); err != nil {
			return err
		}
	}
	if !entry.IsMove() {
		st.tr.dispose()
	}
	return nil
}

func (e *mapEngine[T, U]) retain(st *mapState[T, U], s, o int) (int, error) {
	st.pos = s
	if err := st.index.Set(o); err != nil {
		return o, err
	}
	return o + b2i(st.included), nil
}

// itemChanged handles a re-evaluation outside a structural change.
func (e *mapEngine[T, U]) itemChanged(st *mapState[T, U], p projection[U]) (err error) {
	e.out.WillMutate()
	defer func() {
		if herr := e.out.HasMutated(); err == nil {
			err = herr
		}
	}()

	o := st.index.Peek()
	if p.included == st.included {
		if p.included {
			if o >= e.out.Len() {
				return errors.MalformedDiff("output index out of range")
			}
			return e.out.SetAt(o, p.value)
		}
		return nil
	}

	delta := 1
	if p.included {
		if err := e.out.Insert(min(o, e.out.Len()), p.value); err != nil {
			return err
		}
	} else {
		if o >= e.out.Len() {
			return errors.MalformedDiff("output index out of range")
		}
		if _, err := e.out.RemoveAt(o); err != nil {
			return err
		}
		delta = -1
	}
	st.included = p.included
	if st.pos+1 > len(e.states) {
		return nil
	}
	for _, later := range e.states[st.pos+1:] {
		if err := later.index.Set(later.index.Peek() + delta); err != nil {
			return err
		}
	}
	return nil
}

func (e *mapEngine[T, U]) dispose() {
	n := len(e.states)
	for _, st := range e.states {
		st.tr.dispose()
	}
	e.states = nil
	e.released(n)
}
