package reactive

import (
	"slices"
	"sync"
	"time"
)

// Scheduler runs deferred work for throttles.
type Scheduler interface {
	// After arranges for fn to run once d has elapsed and returns a
	// function that cancels it. Cancelling after fn ran has no effect.
	After(d time.Duration, fn func()) (cancel func())
}

// timerScheduler runs callbacks on real timers under the runtime lock.
type timerScheduler struct {
	rt *Runtime
}

func (s *timerScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, func() {
		_ = s.rt.Do(func() error {
			fn()
			return nil
		})
	})
	return func() { t.Stop() }
}

// ManualScheduler is a Scheduler driven by Advance instead of a clock.
// Callbacks run synchronously on the goroutine calling Advance.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks []*manualTask
}

type manualTask struct {
	at        time.Duration
	seq       uint64
	fn        func()
	cancelled bool
}

// NewManualScheduler creates a scheduler at time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// After schedules fn at the current manual time plus d.
func (s *ManualScheduler) After(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTask{at: s.now + d, seq: s.seq, fn: fn}
	s.tasks = append(s.tasks, t)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		t.cancelled = true
		s.tasks = slices.DeleteFunc(s.tasks, func(x *manualTask) bool { return x == t })
	}
}

// Advance moves the clock forward by d, running every task that falls due
// in time order. Tasks scheduled by a running task run in the same call if
// they fall due within d.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()
	for {
		s.mu.Lock()
		t := s.nextDue(target)
		if t == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = t.at
		s.tasks = slices.DeleteFunc(s.tasks, func(x *manualTask) bool { return x == t })
		s.mu.Unlock()
		if !t.cancelled {
			t.fn()
		}
	}
}

func (s *ManualScheduler) nextDue(target time.Duration) *manualTask {
	var next *manualTask
	for _, t := range s.tasks {
		if t.at > target {
			continue
		}
		if next == nil || t.at < next.at || (t.at == next.at && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

// Pending returns the number of scheduled tasks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Now returns the elapsed manual time.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}
