// Package sched provides single-shot schedulers for the engine: Queue arms
// callbacks as bubbletea commands, Timer arms them on the wall clock.
package sched

import (
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var ErrClosed = errors.New("scheduler closed")

// FireMsg is delivered by bubbletea when an armed callback is due.
// The receiving model calls Fire from its Update.
type FireMsg struct {
	At time.Time
	fn func()
}

// Fire runs the armed callback.
func (m FireMsg) Fire() {
	if m.fn != nil {
		m.fn()
	}
}

// Queue collects armed callbacks as tea.Tick commands until the model drains them.
type Queue struct {
	mu      sync.Mutex
	pending []tea.Cmd
	closed  bool
}

func NewQueue() *Queue {
	return &Queue{}
}

// Arm queues fn to be delivered as a FireMsg after the delay.
func (q *Queue) Arm(after time.Duration, fn func()) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.pending = append(q.pending, tea.Tick(after, func(t time.Time) tea.Msg {
		return FireMsg{At: t, fn: fn}
	}))
	return nil
}

// Drain returns the queued commands as one command and empties the queue.
func (q *Queue) Drain() tea.Cmd {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	cmd := tea.Batch(q.pending...)
	q.pending = nil
	return cmd
}

// Close rejects further arms and drops queued ones.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.pending = nil
}
