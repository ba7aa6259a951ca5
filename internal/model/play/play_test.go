package play

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vinser/bounce/internal/board"
	"github.com/vinser/bounce/internal/grid"
	"github.com/vinser/bounce/internal/sched"
	"github.com/vinser/bounce/internal/state"
)

func newTestState(t *testing.T) *state.State {
	t.Helper()
	st := state.New(filepath.Join(t.TempDir(), "state.dat"))
	st.MoveDelayMs = 10
	return st
}

func newTestModel(t *testing.T, st *state.State) Model {
	t.Helper()
	b := board.New(st.Width, st.Height, board.SpriteSmall, 1)
	m, err := New(st, nil, b, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m
}

// nextFire runs cmd and everything it batches until a FireMsg turns up.
func nextFire(t *testing.T, cmd tea.Cmd) sched.FireMsg {
	t.Helper()
	fires := make(chan sched.FireMsg, 8)
	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			for _, sub := range msg {
				go run(sub)
			}
		case sched.FireMsg:
			fires <- msg
		}
	}
	go run(cmd)
	select {
	case msg := <-fires:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no FireMsg within a second")
	}
	return sched.FireMsg{}
}

func press(k string) tea.KeyMsg {
	if k == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// advance fires scheduled ticks until the engine committed n more moves.
func advance(t *testing.T, m Model, cmd tea.Cmd, n int) (Model, tea.Cmd) {
	t.Helper()
	want, _ := m.Moves()
	want += n
	for i := 0; i < 10*n; i++ {
		if moves, _ := m.Moves(); moves >= want {
			return m, cmd
		}
		m, cmd = m.Update(nextFire(t, cmd))
	}
	t.Fatalf("engine did not advance %d times", n)
	return m, cmd
}

func TestNewStartsAtConfiguredTile(t *testing.T) {
	st := newTestState(t)
	st.StartCol, st.StartRow = 4, 9
	m := newTestModel(t, st)
	if !m.Engine().Running() {
		t.Fatal("engine not running")
	}
	got := m.Engine().State()
	if got.Position != (grid.Position{Col: 4, Row: 9}) || got.Direction != grid.Ascending {
		t.Errorf("state = %+v", got)
	}
}

func TestFiredTicksMoveMarker(t *testing.T) {
	m := newTestModel(t, newTestState(t))
	m, _ = advance(t, m, m.Init(), 3)

	if got := m.Engine().State().Position.Row; got != 4 {
		t.Errorf("row after 3 moves = %d, want 4", got)
	}
	b := m.board
	if kind, _ := b.TileAt(7, 4); kind != grid.Marker {
		t.Errorf("tile (7,4) = %v, want Marker", kind)
	}
	if kind, _ := b.TileAt(0, 0); kind != grid.Wall {
		t.Errorf("corner = %v, want Wall", kind)
	}
}

func TestPauseSavesSnapshot(t *testing.T) {
	st := newTestState(t)
	m := newTestModel(t, st)
	m, cmd := advance(t, m, m.Init(), 2)

	m, _ = m.Update(press("p"))
	if !m.Paused() || m.Engine().Running() {
		t.Fatal("pause did not stop the engine")
	}
	loaded, err := state.Load(st.Path())
	if err != nil {
		t.Fatal(err)
	}
	want := grid.Snapshot{grid.KeyDirection: 0, grid.KeyMoveDelay: 10, grid.KeyPositionCol: 7, grid.KeyPositionRow: 5}
	for k, v := range want {
		if loaded.Snapshot[k] != v {
			t.Errorf("saved %s = %d, want %d", k, loaded.Snapshot[k], v)
		}
	}

	// The tick armed before the pause is stale.
	moves, _ := m.Moves()
	m, _ = m.Update(nextFire(t, cmd))
	if got, _ := m.Moves(); got != moves {
		t.Error("stale tick advanced a paused engine")
	}

	m, cmd = m.Update(press(" "))
	if m.Paused() || !m.Engine().Running() {
		t.Fatal("space did not resume")
	}
	m, _ = advance(t, m, cmd, 1)
	if got := m.Engine().State().Position.Row; got != 4 {
		t.Errorf("row after resume = %d, want 4", got)
	}
}

func TestQuitSavesAndCloses(t *testing.T) {
	st := newTestState(t)
	m := newTestModel(t, st)
	m, _ = advance(t, m, m.Init(), 1)

	m, cmd := m.Update(press("q"))
	if _, ok := cmd().(QuitMsg); !ok {
		t.Fatal("q did not ask to quit")
	}
	if m.Engine().Running() {
		t.Error("engine still running after quit")
	}
	if err := m.queue.Arm(time.Millisecond, func() {}); err != sched.ErrClosed {
		t.Errorf("Arm after quit = %v, want ErrClosed", err)
	}
	loaded, _ := state.Load(st.Path())
	if loaded.Snapshot[grid.KeyPositionRow] != 6 {
		t.Errorf("saved snapshot = %v", loaded.Snapshot)
	}
}

func TestRestoreSnapshot(t *testing.T) {
	st := newTestState(t)
	st.Snapshot = grid.Snapshot{grid.KeyDirection: 1, grid.KeyMoveDelay: 10, grid.KeyPositionCol: 3, grid.KeyPositionRow: 13}
	m := newTestModel(t, st)

	got := m.Engine().State()
	if got.Position != (grid.Position{Col: 3, Row: 13}) || got.Direction != grid.Descending {
		t.Fatalf("restored state = %+v", got)
	}
	m, _ = advance(t, m, m.Init(), 2)
	got = m.Engine().State()
	if got.Position.Row != 13 || got.Direction != grid.Ascending {
		t.Errorf("after 2 moves = %+v, want row 13 ascending", got)
	}
	if _, flips := m.Moves(); flips != 1 {
		t.Errorf("flips = %d, want 1", flips)
	}
}

func TestBadSnapshotDropped(t *testing.T) {
	tests := []struct {
		name string
		snap grid.Snapshot
	}{
		{"outside board", grid.Snapshot{grid.KeyDirection: 0, grid.KeyMoveDelay: 10, grid.KeyPositionCol: 3, grid.KeyPositionRow: 40}},
		{"missing key", grid.Snapshot{grid.KeyDirection: 0, grid.KeyMoveDelay: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newTestState(t)
			st.Snapshot = tt.snap
			m := newTestModel(t, st)
			got := m.Engine().State().Position
			if got != (grid.Position{Col: st.StartCol, Row: st.StartRow}) {
				t.Errorf("position = %+v, want start tile", got)
			}
		})
	}
}

func TestRejectedTickIsFatal(t *testing.T) {
	m := newTestModel(t, newTestState(t))
	fire := nextFire(t, m.Init())
	m.queue.Close()

	m, cmd := m.Update(fire)
	msg, ok := cmd().(FatalMsg)
	if !ok {
		t.Fatalf("cmd() = %T, want FatalMsg", cmd())
	}
	if msg.Err == nil || m.Engine().Running() {
		t.Errorf("fatal = %v, running = %v", msg.Err, m.Engine().Running())
	}
	if !strings.Contains(m.View(), "STOPPED") {
		t.Error("view does not show the stop")
	}
}

func TestKeysAboutAndMute(t *testing.T) {
	st := newTestState(t)
	m := newTestModel(t, st)

	_, cmd := m.Update(press("a"))
	if _, ok := cmd().(AboutMsg); !ok {
		t.Error("a did not open about")
	}
	m, _ = m.Update(press("m"))
	if !st.Mute {
		t.Error("m did not toggle mute")
	}
}

func TestView(t *testing.T) {
	m := newTestModel(t, newTestState(t))
	m, _ = advance(t, m, m.Init(), 1)
	view := m.View()
	for _, want := range []string{"Row  6", "ascending", "Moves 1", "pause", "quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}
