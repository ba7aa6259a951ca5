package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vinser/bounce/internal/board"
	"github.com/vinser/bounce/internal/engine"
	"github.com/vinser/bounce/internal/sched"
	"github.com/vinser/bounce/internal/state"
)

// RunHeadless drives the engine on the wall clock and logs every move. It
// returns after steps moves (never when steps is 0), when ctx is done or when
// the engine fails. The snapshot is saved on the way out either way.
func RunHeadless(ctx context.Context, st *state.State, steps int, logger *slog.Logger) (int, error) {
	b := board.New(st.Width, st.Height, board.SpriteSmall, 1)
	timer := sched.NewTimer()
	defer timer.Close()

	var (
		moves int
		once  sync.Once
		done  = make(chan struct{})
		fatal = make(chan error, 1)
	)
	eng, err := engine.New(b, timer,
		engine.WithMoveDelay(time.Duration(st.MoveDelayMs)*time.Millisecond),
		engine.WithLogger(logger),
		engine.WithAdvanceHook(func(a engine.Advance) {
			moves++
			logger.Info("move", "n", moves, "col", a.To.Col, "row", a.To.Row, "direction", a.Direction, "flipped", a.Flipped)
			if steps > 0 && moves >= steps {
				once.Do(func() { close(done) })
			}
		}),
		engine.WithFatalHook(func(err error) {
			select {
			case fatal <- err:
			default:
			}
		}),
	)
	if err != nil {
		return 0, err
	}

	restored, err := eng.StartFrom(st.Snapshot, st.StartCol, st.StartRow)
	if err != nil {
		return 0, err
	}
	logger.Info("headless run", "restored", restored, "steps", steps, "delay", time.Duration(st.MoveDelayMs)*time.Millisecond)

	select {
	case <-ctx.Done():
		logger.Info("interrupted")
	case <-done:
	case err = <-fatal:
	}
	// Stop waits for a tick in progress, so moves is settled afterwards.
	eng.Stop()

	if serr := st.SaveSnapshot(eng.Snapshot()); serr != nil {
		logger.Error("snapshot not saved", "err", serr)
		if err == nil {
			err = serr
		}
	}
	logger.Info("headless run finished", "moves", moves, "err", err)
	return moves, err
}
