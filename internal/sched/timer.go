package sched

import (
	"sync"
	"time"
)

// Timer arms callbacks with time.AfterFunc. Callbacks run on their own goroutine.
type Timer struct {
	mu     sync.Mutex
	timers map[*time.Timer]struct{}
	closed bool
}

func NewTimer() *Timer {
	return &Timer{timers: make(map[*time.Timer]struct{})}
}

// Arm runs fn once after the delay.
func (s *Timer) Arm(after time.Duration, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	var t *time.Timer
	t = time.AfterFunc(after, func() {
		s.mu.Lock()
		delete(s.timers, t)
		s.mu.Unlock()
		fn()
	})
	s.timers[t] = struct{}{}
	return nil
}

// Pending returns the number of armed callbacks that have not fired.
func (s *Timer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Close stops pending callbacks and rejects further arms.
func (s *Timer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for t := range s.timers {
		t.Stop()
	}
	clear(s.timers)
}
