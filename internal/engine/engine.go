// Package engine drives the marker over the grid: it decides on every tick
// whether a move is due, repaints the board and re-arms itself.
package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/vinser/bounce/internal/grid"
)

// Renderer receives tile paint instructions. Its size is fixed.
type Renderer interface {
	ClearAllTiles()
	PaintTile(kind grid.TileKind, col, row int)
	Size() (width, height int)
}

// Scheduler runs fn once after the given delay. It must not call fn before Arm returns.
type Scheduler interface {
	Arm(after time.Duration, fn func()) error
}

const minGridSize = 3

var (
	ErrSchedulerRejected = errors.New("scheduler rejected callback")
	ErrOutOfBounds       = errors.New("position outside the grid")
	ErrRunning           = errors.New("engine is running")
	ErrGridTooSmall      = fmt.Errorf("grid must be at least %dx%d", minGridSize, minGridSize)
	ErrInvalidDelay      = errors.New("move delay must be a positive whole number of milliseconds")
)

// SchedulerRejectedError is fatal: the engine has stopped and cannot tick again
// until resumed.
type SchedulerRejectedError struct {
	After time.Duration
	Err   error
}

func (e *SchedulerRejectedError) Error() string {
	return fmt.Sprintf("engine: arming tick after %v: %v", e.After, e.Err)
}

func (e *SchedulerRejectedError) Unwrap() error { return e.Err }

func (e *SchedulerRejectedError) Is(target error) bool {
	return target == ErrSchedulerRejected
}

// Advance describes one committed move.
type Advance struct {
	From      grid.Position
	To        grid.Position
	Direction grid.Direction // facing after the move
	Flipped   bool
	At        time.Time
}

type Option func(*Engine)

// WithMoveDelay sets the delay between advances. It must be whole milliseconds.
func WithMoveDelay(d time.Duration) Option {
	return func(e *Engine) { e.state.MoveDelay = d }
}

// WithClock replaces time.Now for scheduled ticks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithAdvanceHook registers fn to observe every advance. It runs with the
// engine locked and must not call back into the engine.
func WithAdvanceHook(fn func(Advance)) Option {
	return func(e *Engine) { e.onAdvance = fn }
}

// WithFatalHook registers fn to receive the error of a scheduled tick that
// could not re-arm.
func WithFatalHook(fn func(error)) Option {
	return func(e *Engine) { e.onFatal = fn }
}

type Engine struct {
	mu       sync.Mutex
	state    *grid.State
	renderer Renderer
	sched    Scheduler
	width    int
	height   int

	running bool
	gen     uint64 // generation of the armed callback
	err     error

	now       func() time.Time
	log       *slog.Logger
	onAdvance func(Advance)
	onFatal   func(error)
}

// New returns a stopped engine painting on r and timed by s.
func New(r Renderer, s Scheduler, opts ...Option) (*Engine, error) {
	w, h := r.Size()
	if w < minGridSize || h < minGridSize {
		return nil, fmt.Errorf("engine: %dx%d: %w", w, h, ErrGridTooSmall)
	}
	e := &Engine{
		state:    grid.New(),
		renderer: r,
		sched:    s,
		width:    w,
		height:   h,
		now:      time.Now,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	// Snapshots carry the delay in milliseconds.
	if d := e.state.MoveDelay; d < time.Millisecond || d%time.Millisecond != 0 {
		return nil, fmt.Errorf("engine: %v: %w", e.state.MoveDelay, ErrInvalidDelay)
	}
	return e, nil
}

// Start places the marker on the start tile and arms the first tick.
func (e *Engine) Start(startCol, startRow int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.inBounds(grid.Position{Col: startCol, Row: startRow}) {
		return fmt.Errorf("engine: start (%d,%d): %w", startCol, startRow, ErrOutOfBounds)
	}
	e.state.Initialize(startCol, startRow)
	e.running = true
	e.err = nil
	e.log.Info("started", "col", startCol, "row", startRow, "delay", e.state.MoveDelay)
	return e.armLocked()
}

// Tick evaluates one update at now. It is a no-op on a stopped engine.
// The only error is a rejected re-arm, after which the engine is stopped.
func (e *Engine) Tick(now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return nil
	}
	return e.tickLocked(now)
}

// Stop cancels re-arming. A callback already armed is ignored when it fires.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	e.running = false
	e.gen++
	e.log.Info("stopped", "col", e.state.Position.Col, "row", e.state.Position.Row)
}

// Resume re-arms a stopped engine.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return nil
	}
	e.running = true
	e.err = nil
	e.log.Info("resumed")
	return e.armLocked()
}

// Running reports whether ticks are being armed.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Snapshot captures the persisted part of the grid state.
func (e *Engine) Snapshot() grid.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Serialize()
}

// Restore replaces the grid state with snap. The engine must be stopped.
// On error the state is left as it was.
func (e *Engine) Restore(snap grid.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return ErrRunning
	}
	next := *e.state
	if err := next.Deserialize(snap); err != nil {
		return err
	}
	if !e.inBounds(next.Position) {
		return fmt.Errorf("engine: restore (%d,%d): %w", next.Position.Col, next.Position.Row, ErrOutOfBounds)
	}
	*e.state = next
	e.log.Info("restored", "col", next.Position.Col, "row", next.Position.Row, "direction", next.Direction)
	return nil
}

// StartFrom resumes from snap when it is complete and fits the grid, and
// otherwise starts fresh on the given tile. It reports whether snap was used.
func (e *Engine) StartFrom(snap grid.Snapshot, startCol, startRow int) (bool, error) {
	if snap != nil {
		err := e.Restore(snap)
		if err == nil {
			return true, e.Resume()
		}
		e.log.Warn("snapshot dropped", "err", err)
	}
	return false, e.Start(startCol, startRow)
}

// State returns a copy of the grid state.
func (e *Engine) State() grid.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.state
}

// Err returns the error that stopped the engine, if any.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

func (e *Engine) tickLocked(now time.Time) error {
	if e.state.Due(now) {
		e.renderer.ClearAllTiles()
		e.paintWalls()
		e.advance(now)
	}
	return e.armLocked()
}

// fire is the armed callback. Stale generations are dropped.
func (e *Engine) fire(gen uint64) {
	e.mu.Lock()
	if !e.running || gen != e.gen {
		e.mu.Unlock()
		return
	}
	err := e.tickLocked(e.now())
	fatal := e.onFatal
	e.mu.Unlock()

	if err != nil && fatal != nil {
		fatal(err)
	}
}

func (e *Engine) armLocked() error {
	e.gen++
	gen := e.gen
	delay := e.state.MoveDelay
	if err := e.sched.Arm(delay, func() { e.fire(gen) }); err != nil {
		e.running = false
		e.err = &SchedulerRejectedError{After: delay, Err: err}
		e.log.Error("tick not armed, engine stopped", "after", delay, "err", err)
		return e.err
	}
	return nil
}

func (e *Engine) inBounds(p grid.Position) bool {
	return p.Col >= 0 && p.Col < e.width && p.Row >= 0 && p.Row < e.height
}
