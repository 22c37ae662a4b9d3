package reactive

import "slices"

// Subscription is a handle on a registered callback.
type Subscription struct {
	cancel   func()
	disposed bool
}

func newSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

// Dispose unregisters the callback. It is safe to call more than once and
// on a nil Subscription.
func (s *Subscription) Dispose() {
	if s == nil || s.disposed {
		return
	}
	s.disposed = true
	if s.cancel != nil {
		s.cancel()
	}
}

// Disposed reports whether Dispose has been called.
func (s *Subscription) Disposed() bool {
	return s == nil || s.disposed
}

// listeners is an ordered callback list.
type listeners[A any] struct {
	entries []*listener[A]
}

type listener[A any] struct {
	fn     func(A) error
	active bool
}

func (l *listeners[A]) add(fn func(A) error) *Subscription {
	e := &listener[A]{fn: fn, active: true}
	l.entries = append(l.entries, e)
	return newSubscription(func() {
		e.active = false
		l.entries = slices.DeleteFunc(l.entries, func(x *listener[A]) bool { return x == e })
	})
}

// notify calls every listener registered before the call, in registration
// order, skipping those disposed meanwhile. The first error stops delivery.
func (l *listeners[A]) notify(v A) error {
	if len(l.entries) == 0 {
		return nil
	}
	snapshot := slices.Clone(l.entries)
	for _, e := range snapshot {
		if !e.active {
			continue
		}
		if err := e.fn(v); err != nil {
			return err
		}
	}
	return nil
}

func (l *listeners[A]) len() int { return len(l.entries) }
