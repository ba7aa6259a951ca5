package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vinser/bounce/internal/engine"
	"github.com/vinser/bounce/internal/grid"
	"github.com/vinser/bounce/internal/state"
)

func headlessState(t *testing.T) *state.State {
	t.Helper()
	st := state.New(filepath.Join(t.TempDir(), "state.dat"))
	st.MoveDelayMs = 10
	return st
}

func TestHeadlessSteps(t *testing.T) {
	st := headlessState(t)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	moves, err := RunHeadless(context.Background(), st, 5, logger)
	if err != nil {
		t.Fatal(err)
	}
	if moves < 5 || moves > 6 {
		t.Fatalf("moves = %d, want 5", moves)
	}
	if got := strings.Count(logs.String(), "msg=move "); got != moves {
		t.Errorf("logged %d moves, made %d", got, moves)
	}

	loaded, err := state.Load(st.Path())
	if err != nil {
		t.Fatal(err)
	}
	if got := loaded.Snapshot[grid.KeyPositionRow]; got != int64(7-moves) {
		t.Errorf("saved row = %d, want %d", got, 7-moves)
	}
}

func TestHeadlessResumesSnapshot(t *testing.T) {
	st := headlessState(t)
	st.Snapshot = grid.Snapshot{grid.KeyDirection: 1, grid.KeyMoveDelay: 10, grid.KeyPositionCol: 3, grid.KeyPositionRow: 13}

	moves, err := RunHeadless(context.Background(), st, 2, discard)
	if err != nil {
		t.Fatal(err)
	}
	if moves != 2 {
		t.Skipf("timer overshot to %d moves", moves)
	}
	if st.Snapshot[grid.KeyPositionRow] != 13 || st.Snapshot[grid.KeyDirection] != 0 {
		t.Errorf("snapshot after bounce = %v", st.Snapshot)
	}
}

func TestHeadlessInterrupted(t *testing.T) {
	st := headlessState(t)
	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	moves, err := RunHeadless(ctx, st, 0, discard)
	if err != nil {
		t.Fatal(err)
	}
	if moves == 0 {
		t.Error("no moves before interrupt")
	}
	if st.Snapshot == nil {
		t.Error("snapshot not saved on interrupt")
	}
}

func TestHeadlessGridTooSmall(t *testing.T) {
	st := headlessState(t)
	st.Width = 2
	if _, err := RunHeadless(context.Background(), st, 1, discard); !errors.Is(err, engine.ErrGridTooSmall) {
		t.Errorf("error = %v, want ErrGridTooSmall", err)
	}
}
