package sched

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestTimerFires(t *testing.T) {
	s := NewTimer()
	defer s.Close()

	done := make(chan struct{})
	if err := s.Arm(5*time.Millisecond, func() { close(done) }); err != nil {
		t.Fatal(err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback did not fire")
	}
	// The timer forgets a fired callback.
	deadline := time.Now().Add(time.Second)
	for s.Pending() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if n := s.Pending(); n != 0 {
		t.Errorf("Pending() = %d after firing", n)
	}
}

func TestTimerClose(t *testing.T) {
	s := NewTimer()
	var fired atomic.Bool
	if err := s.Arm(50*time.Millisecond, func() { fired.Store(true) }); err != nil {
		t.Fatal(err)
	}
	s.Close()

	if err := s.Arm(time.Millisecond, func() {}); !errors.Is(err, ErrClosed) {
		t.Errorf("Arm after Close = %v, want ErrClosed", err)
	}
	time.Sleep(100 * time.Millisecond)
	if fired.Load() {
		t.Error("pending callback fired after Close")
	}
}

func TestQueueDrain(t *testing.T) {
	q := NewQueue()
	if cmd := q.Drain(); cmd != nil {
		t.Fatal("empty queue drained a command")
	}

	calls := 0
	if err := q.Arm(time.Millisecond, func() { calls++ }); err != nil {
		t.Fatal(err)
	}
	cmd := q.Drain()
	if cmd == nil {
		t.Fatal("Drain() = nil after Arm")
	}
	if q.Drain() != nil {
		t.Error("second Drain() returned a command")
	}

	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		msg = batch[0]()
	}
	fire, ok := msg.(FireMsg)
	if !ok {
		t.Fatalf("message = %T, want FireMsg", msg)
	}
	if fire.At.IsZero() {
		t.Error("FireMsg without time")
	}
	fire.Fire()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestQueueClose(t *testing.T) {
	q := NewQueue()
	q.Arm(time.Second, func() {})
	q.Close()
	if q.Drain() != nil {
		t.Error("Close kept queued commands")
	}
	if err := q.Arm(time.Millisecond, func() {}); !errors.Is(err, ErrClosed) {
		t.Errorf("Arm after Close = %v, want ErrClosed", err)
	}
}
