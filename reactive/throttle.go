package reactive

import (
	"time"

	"github.com/kbukum/livecoll/logger"
)

// Throttle defers work until no trigger has arrived for the configured
// delay, then runs only the most recent one.
type Throttle struct {
	rt      *Runtime
	delay   time.Duration
	pending func() error
	cancel  func()
	gen     uint64
	stopped bool
}

// NewThrottle creates a throttle on rt's scheduler.
func NewThrottle(rt *Runtime, delay time.Duration) *Throttle {
	return &Throttle{rt: rt, delay: delay}
}

// Delay returns the quiet period.
func (t *Throttle) Delay() time.Duration { return t.delay }

// Trigger replaces any pending work with fn and restarts the quiet period.
func (t *Throttle) Trigger(fn func() error) {
	if t.stopped {
		return
	}
	t.pending = fn
	t.cancelTimer()
	gen := t.gen
	t.cancel = t.rt.scheduler.After(t.delay, func() { t.fire(gen) })
}

func (t *Throttle) fire(gen uint64) {
	if t.stopped || gen != t.gen {
		return
	}
	t.cancel = nil
	if err := t.Flush(); err != nil {
		t.rt.log.Error("throttled publish failed", logger.ErrorFields("throttle", err))
	}
}

// Flush runs pending work now.
func (t *Throttle) Flush() error {
	t.cancelTimer()
	fn := t.pending
	t.pending = nil
	if fn == nil {
		return nil
	}
	return fn()
}

// Pending reports whether work is waiting for the quiet period to end.
func (t *Throttle) Pending() bool { return t.pending != nil }

// Stop drops pending work. Later triggers are ignored.
func (t *Throttle) Stop() {
	t.stopped = true
	t.pending = nil
	t.cancelTimer()
}

func (t *Throttle) cancelTimer() {
	t.gen++
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
