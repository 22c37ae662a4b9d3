package pipeline

import (
	"github.com/kbukum/livecoll/reactive"
)

// tracker owns the projection of one live source element. The mapping runs
// inside a Computed so every value it reads becomes a dependency; when one
// changes the mapping re-runs and onChange receives the new projection if
// it differs from the previous one.
type tracker[T, P any] struct {
	eng       *base
	item      T
	m         mapper[T, P]
	index     reactive.ReadOnly[int]
	computed  *reactive.Computed[P]
	hook      func()
	evaluated bool
	disposed  bool
}

func newTracker[T, P any](
	eng *base,
	item T,
	m mapper[T, P],
	index reactive.ReadOnly[int],
	equal func(a, b P) bool,
	onChange func(P) error,
) *tracker[T, P] {
	tr := &tracker[T, P]{eng: eng, item: item, m: m, index: index}
	tr.computed = reactive.NewComputedFunc(eng.rt, tr.evaluate, equal)
	tr.computed.Subscribe(func(p P) error {
		if tr.disposed {
			return nil
		}
		return onChange(p)
	})
	return tr
}

func (tr *tracker[T, P]) evaluate() P {
	if tr.evaluated {
		// Replacing in place: release what the previous run produced.
		tr.release(tr.computed.Peek())
	}
	tr.evaluated = true
	v, hook := tr.m.run(tr.item, tr.index)
	tr.hook = hook
	tr.eng.rt.Metrics().RecordEvaluation(tr.eng.rt.Context(), tr.eng.kind)
	return v
}

// value returns the latest projection.
func (tr *tracker[T, P]) value() P { return tr.computed.Peek() }

func (tr *tracker[T, P]) release(v P) {
	if tr.hook != nil {
		hook := tr.hook
		tr.hook = nil
		hook()
	}
	if tr.m.disposeItem != nil {
		tr.m.disposeItem(v)
	}
}

func (tr *tracker[T, P]) dispose() {
	if tr.disposed {
		return
	}
	tr.disposed = true
	tr.computed.Dispose()
	tr.release(tr.computed.Peek())
}
