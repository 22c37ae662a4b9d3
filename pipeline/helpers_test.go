package pipeline

import (
	"slices"
	"testing"

	"github.com/kbukum/livecoll/observability"
	"github.com/kbukum/livecoll/reactive"
)

func newTestRuntime() (*reactive.Runtime, *reactive.ManualScheduler) {
	sched := reactive.NewManualScheduler()
	rt := reactive.NewRuntime(
		reactive.WithScheduler(sched),
		reactive.WithMetrics(observability.NopTransformMetrics()),
	)
	return rt, sched
}

// must panics on err so constructors can be used inline.
func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func assertSlice[T comparable](t *testing.T, got, want []T) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// recorder collects copies of every published value.
type recorder[T any] struct {
	values [][]T
}

func record[T any](c interface {
	Subscribe(func([]T) error) *reactive.Subscription
}) *recorder[T] {
	r := &recorder[T]{}
	c.Subscribe(func(v []T) error {
		r.values = append(r.values, slices.Clone(v))
		return nil
	})
	return r
}

func (r *recorder[T]) count() int { return len(r.values) }

func (r *recorder[T]) last() []T {
	if len(r.values) == 0 {
		return nil
	}
	return r.values[len(r.values)-1]
}
