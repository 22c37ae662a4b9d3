package pipeline

import (
	"github.com/kbukum/livecoll/errors"
	"github.com/kbukum/livecoll/reactive"
)

// Filter keeps the elements of src for which pred reports true, in source
// order. pred re-runs for an element when anything it read changes.
func Filter[T any](src Source[T], pred func(T) bool, opts ...Option) (*Collection[T], error) {
	if err := checkSource(src); err != nil {
		return nil, err
	}
	if pred == nil {
		return nil, errors.Configuration("specify a predicate")
	}
	s := applyOptions(opts)
	m := mapper[T, projection[T]]{mapping: func(item T, _ reactive.ReadOnly[int]) projection[T] {
		return projection[T]{value: item, included: pred(item)}
	}}
	rt := src.Runtime()
	return newMapEngine(src, newBase(rt, KindFilter, s.name), m, resolveThrottle(rt, s.throttle)), nil
}
