package reactive

import (
	"slices"

	"github.com/kbukum/livecoll/diff"
	"github.com/kbukum/livecoll/errors"
)

// Array is an observable sequence. Each mutation publishes the diff between
// the previously published contents and the current ones to change
// subscribers, then the contents to value subscribers.
//
// Mutations made between WillMutate and the matching HasMutated are
// published once, when the outermost bracket closes.
//
// Positional mutators (Push, Insert, Splice, RemoveAt, SetAt, Reorder and
// the like) record where each element came from, so their diff costs time
// linear in the length. Edits through Backing, Mutate or Set are diffed by
// comparing snapshots instead.
type Array[T any] struct {
	rt        *Runtime
	items     []T
	published []T
	depth     int
	equal     func(a, b T) bool

	// origin[j] is the published index of items[j], or -1 for an element
	// added since. It is valid while tracked is set and untracked is not.
	origin    []int
	tracked   bool
	untracked bool

	values  listeners[[]T]
	changes listeners[diff.Script[T]]
}

// NewArray creates an array holding a copy of items.
func NewArray[T any](rt *Runtime, items ...T) *Array[T] {
	a := &Array[T]{rt: rt, items: slices.Clone(items), equal: Identical[T]}
	a.published = slices.Clone(a.items)
	return a
}

// Runtime returns the owning runtime.
func (a *Array[T]) Runtime() *Runtime { return a.rt }

// Get returns the contents and records a dependency. The slice is shared
// with the array and must not be modified.
func (a *Array[T]) Get() []T {
	a.rt.track(a)
	return a.items
}

// Peek returns the contents without recording a dependency.
func (a *Array[T]) Peek() []T { return a.items }

// Len returns the number of elements without recording a dependency.
func (a *Array[T]) Len() int { return len(a.items) }

// At returns the element at i without recording a dependency.
func (a *Array[T]) At(i int) (T, bool) {
	if i < 0 || i >= len(a.items) {
		var zero T
		return zero, false
	}
	return a.items[i], true
}

// IndexOf returns the position of the first element Identical to v, or -1.
func (a *Array[T]) IndexOf(v T) int {
	return slices.IndexFunc(a.items, func(x T) bool { return a.equal(x, v) })
}

// Subscribe registers fn to receive the contents after every mutation.
func (a *Array[T]) Subscribe(fn func([]T) error) *Subscription {
	return a.values.add(fn)
}

// SubscribeChanges registers fn to receive the diff of every mutation that
// changed the contents.
func (a *Array[T]) SubscribeChanges(fn func(diff.Script[T]) error) *Subscription {
	return a.changes.add(fn)
}

// SubscriberCount returns the number of live value and change subscriptions.
func (a *Array[T]) SubscriberCount() int { return a.values.len() + a.changes.len() }

func (a *Array[T]) subscribeChange(fn func() error) *Subscription {
	return a.values.add(func([]T) error { return fn() })
}

// --- brackets ---

// WillMutate opens a mutation bracket.
func (a *Array[T]) WillMutate() { a.depth++ }

// HasMutated closes a mutation bracket. Closing the outermost one publishes.
func (a *Array[T]) HasMutated() error {
	if a.depth > 0 {
		a.depth--
	}
	if a.depth > 0 {
		return nil
	}
	return a.publish()
}

// Backing exposes the underlying slice for in-place edits. Edits must be
// made inside a WillMutate/HasMutated bracket; the next publication diffs
// snapshots.
func (a *Array[T]) Backing() *[]T {
	a.untracked = true
	return &a.items
}

// Mutate runs fn on the underlying slice inside a bracket.
func (a *Array[T]) Mutate(fn func(items *[]T)) error {
	return a.edit(fn, nil)
}

// edit runs fn inside a bracket. track applies the same edit to the origin
// slice; a nil track makes the next publication diff snapshots.
func (a *Array[T]) edit(fn func(items *[]T), track func(origin *[]int)) error {
	a.WillMutate()
	switch {
	case track == nil:
		a.untracked = true
	case !a.untracked:
		if !a.tracked {
			a.origin = make([]int, len(a.items))
			for i := range a.origin {
				a.origin[i] = i
			}
			a.tracked = true
		}
		track(&a.origin)
	}
	fn(&a.items)
	return a.HasMutated()
}

func (a *Array[T]) publish() error {
	var script diff.Script[T]
	switch {
	case a.untracked:
		script = diff.CompareWith(a.published, a.items, a.equal, a.rt.diffOpts)
	case a.tracked:
		script = diff.FromOrigins(a.published, a.items, a.origin, a.equal, a.rt.diffOpts)
	}
	a.origin, a.tracked, a.untracked = nil, false, false
	a.published = slices.Clone(a.items)
	if len(script) > 0 {
		if err := a.changes.notify(script); err != nil {
			return err
		}
	}
	return a.values.notify(a.items)
}

// --- mutators ---

// Push appends items.
func (a *Array[T]) Push(items ...T) error {
	return a.splice(len(a.items), len(a.items), items)
}

// Pop removes and returns the last element. It reports false on an empty
// array without publishing.
func (a *Array[T]) Pop() (T, bool, error) {
	var v T
	if len(a.items) == 0 {
		return v, false, nil
	}
	last := len(a.items) - 1
	v = a.items[last]
	return v, true, a.splice(last, last+1, nil)
}

// Shift removes and returns the first element.
func (a *Array[T]) Shift() (T, bool, error) {
	var v T
	if len(a.items) == 0 {
		return v, false, nil
	}
	v = a.items[0]
	return v, true, a.splice(0, 1, nil)
}

// Unshift prepends items.
func (a *Array[T]) Unshift(items ...T) error {
	return a.splice(0, 0, items)
}

// Insert places items before position i. i may equal Len.
func (a *Array[T]) Insert(i int, items ...T) error {
	if i < 0 || i > len(a.items) {
		return errors.InvalidInput("index", "insert position out of range")
	}
	return a.splice(i, i, items)
}

// Splice removes up to deleteCount elements at start, inserts items there
// and returns the removed elements.
func (a *Array[T]) Splice(start, deleteCount int, items ...T) ([]T, error) {
	if start < 0 || start > len(a.items) {
		return nil, errors.InvalidInput("start", "splice start out of range")
	}
	if deleteCount < 0 {
		return nil, errors.InvalidInput("deleteCount", "must not be negative")
	}
	end := min(start+deleteCount, len(a.items))
	removed := slices.Clone(a.items[start:end])
	return removed, a.splice(start, end, items)
}

// splice replaces items[start:end] with items, recording origins.
func (a *Array[T]) splice(start, end int, items []T) error {
	return a.edit(
		func(s *[]T) { *s = slices.Replace(*s, start, end, items...) },
		func(o *[]int) {
			added := make([]int, len(items))
			for i := range added {
				added[i] = diff.NotMoved
			}
			*o = slices.Replace(*o, start, end, added...)
		},
	)
}

// RemoveAt removes and returns the element at i.
func (a *Array[T]) RemoveAt(i int) (T, error) {
	var v T
	if i < 0 || i >= len(a.items) {
		return v, errors.InvalidInput("index", "remove position out of range")
	}
	v = a.items[i]
	return v, a.splice(i, i+1, nil)
}

// Remove removes every element Identical to v and reports how many.
func (a *Array[T]) Remove(v T) (int, error) {
	return a.RemoveFunc(func(x T) bool { return a.equal(x, v) })
}

// RemoveFunc removes every element matching pred. Nothing is published
// when no element matches.
func (a *Array[T]) RemoveFunc(pred func(T) bool) (int, error) {
	drop := make([]bool, len(a.items))
	n := 0
	for i, x := range a.items {
		if pred(x) {
			drop[i] = true
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return n, a.edit(
		func(s *[]T) { *s = compact(*s, drop) },
		func(o *[]int) { *o = compact(*o, drop) },
	)
}

// compact removes the elements whose drop flag is set, in place.
func compact[E any](s []E, drop []bool) []E {
	kept := s[:0]
	for i, x := range s {
		if !drop[i] {
			kept = append(kept, x)
		}
	}
	clear(s[len(kept):])
	return kept
}

// Replace swaps the first element Identical to old for next.
func (a *Array[T]) Replace(old, next T) (bool, error) {
	i := a.IndexOf(old)
	if i < 0 {
		return false, nil
	}
	return true, a.SetAt(i, next)
}

// SetAt overwrites the element at i.
func (a *Array[T]) SetAt(i int, v T) error {
	if i < 0 || i >= len(a.items) {
		return errors.InvalidInput("index", "position out of range")
	}
	same := a.equal(a.items[i], v)
	return a.edit(
		func(s *[]T) { (*s)[i] = v },
		func(o *[]int) {
			if !same {
				(*o)[i] = diff.NotMoved
			}
		},
	)
}

// Reorder rearranges the elements so position j holds the element that was
// at order[j]. order must be a permutation of the positions. Elements
// outside the longest run that keeps its relative order are published as
// moves.
func (a *Array[T]) Reorder(order []int) error {
	if len(order) != len(a.items) {
		return errors.InvalidInput("order", "length does not match the array")
	}
	seen := make([]bool, len(order))
	for _, p := range order {
		if p < 0 || p >= len(order) || seen[p] {
			return errors.InvalidInput("order", "not a permutation")
		}
		seen[p] = true
	}
	return a.edit(
		func(s *[]T) { *s = permute(*s, order) },
		func(o *[]int) { *o = permute(*o, order) },
	)
}

func permute[E any](s []E, order []int) []E {
	out := make([]E, len(order))
	for j, p := range order {
		out[j] = s[p]
	}
	return out
}

// Set replaces the whole contents with a copy of items.
func (a *Array[T]) Set(items []T) error {
	return a.Mutate(func(s *[]T) { *s = slices.Clone(items) })
}

// Clear removes every element.
func (a *Array[T]) Clear() error {
	return a.edit(
		func(s *[]T) { *s = nil },
		func(o *[]int) { *o = nil },
	)
}

// Reverse reverses the order in place.
func (a *Array[T]) Reverse() error {
	order := make([]int, len(a.items))
	for j := range order {
		order[j] = len(order) - 1 - j
	}
	return a.Reorder(order)
}

// Sort sorts in place, keeping the order of elements cmp considers equal.
func (a *Array[T]) Sort(cmp func(x, y T) int) error {
	order := make([]int, len(a.items))
	for j := range order {
		order[j] = j
	}
	slices.SortStableFunc(order, func(x, y int) int { return cmp(a.items[x], a.items[y]) })
	return a.Reorder(order)
}
