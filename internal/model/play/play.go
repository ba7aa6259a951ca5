package play

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vinser/bounce/internal/board"
	"github.com/vinser/bounce/internal/engine"
	"github.com/vinser/bounce/internal/render"
	"github.com/vinser/bounce/internal/sched"
	"github.com/vinser/bounce/internal/sound"
	"github.com/vinser/bounce/internal/state"
	"github.com/vinser/bounce/internal/style"
)

// blinkInterval redraws the board between moves so the marker blinks.
const blinkInterval = 250 * time.Millisecond

type keyMap struct {
	Pause key.Binding
	Mute  key.Binding
	About key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Mute, k.About, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Pause: key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "pause")),
	Mute:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),
	About: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "about")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// stats is shared with the engine hooks, which outlive any single copy of Model.
type stats struct {
	moves int
	flips int
}

type Model struct {
	state  *state.State
	sound  *sound.Manager
	board  *board.Board
	engine *engine.Engine
	queue  *sched.Queue
	log    *slog.Logger
	stats  *stats

	keys   keyMap
	help   help.Model
	paused bool
	err    error

	termWidth  int
	termHeight int
}

// FatalMsg reports that the engine stopped and cannot go on.
type FatalMsg struct {
	Err error
}

func fatalCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return FatalMsg{Err: err}
	}
}

// AboutMsg asks the app to show the about page.
type AboutMsg struct{}

func aboutCmd() tea.Cmd {
	return func() tea.Msg {
		return AboutMsg{}
	}
}

// QuitMsg asks the app to quit. The snapshot is already saved.
type QuitMsg struct{}

func quitCmd() tea.Cmd {
	return func() tea.Msg {
		return QuitMsg{}
	}
}

// BlinkMsg redraws the board between moves.
type BlinkMsg time.Time

func blink() tea.Cmd {
	return tea.Tick(blinkInterval, func(t time.Time) tea.Msg {
		return BlinkMsg(t)
	})
}

// WindowSizeMsg is a message sent when the terminal is resized.
type WindowSizeMsg struct {
	Width  int
	Height int
}

// New builds the engine on b and either restores the saved snapshot or
// starts from the configured tile.
func New(st *state.State, sm *sound.Manager, b *board.Board, logger *slog.Logger) (Model, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m := Model{
		state: st,
		sound: sm,
		board: b,
		queue: sched.NewQueue(),
		log:   logger,
		stats: &stats{},
		keys:  keys,
		help:  help.New(),
	}

	s := m.stats
	eng, err := engine.New(b, m.queue,
		engine.WithMoveDelay(time.Duration(st.MoveDelayMs)*time.Millisecond),
		engine.WithLogger(logger),
		engine.WithAdvanceHook(func(a engine.Advance) {
			s.moves++
			if a.Flipped {
				s.flips++
				sm.Play(sound.BOUNCE)
			}
		}),
	)
	if err != nil {
		return Model{}, err
	}
	m.engine = eng

	restored, err := eng.StartFrom(st.Snapshot, st.StartCol, st.StartRow)
	if restored {
		logger.Info("snapshot restored", "snapshot", st.Snapshot)
	}
	return m, err
}

// Init hands the first armed tick to bubbletea.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.queue.Drain(), blink())
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case sched.FireMsg:
		msg.Fire()
		if err := m.engine.Err(); err != nil {
			m.err = err
			return m, fatalCmd(err)
		}
	case BlinkMsg:
		cmd = blink()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Pause):
			cmd = m.togglePause()
		case key.Matches(msg, m.keys.Mute):
			m.state.Mute = !m.state.Mute
			m.sound.SetMute(m.state.Mute)
		case key.Matches(msg, m.keys.About):
			cmd = aboutCmd()
		case key.Matches(msg, m.keys.Quit):
			m.saveSnapshot()
			m.queue.Close()
			cmd = quitCmd()
		}
	case WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.help.Width = msg.Width
	}
	return m, tea.Batch(cmd, m.queue.Drain())
}

// togglePause stops the engine and saves the snapshot, or resumes it.
func (m *Model) togglePause() tea.Cmd {
	if !m.paused {
		m.paused = true
		m.saveSnapshot()
		m.sound.Play(sound.PAUSE)
		return nil
	}
	m.paused = false
	m.sound.Play(sound.RESUME)
	if err := m.engine.Resume(); err != nil {
		m.err = err
		return fatalCmd(err)
	}
	return nil
}

// saveSnapshot stops the engine so the captured state is final, then persists it.
func (m *Model) saveSnapshot() {
	m.engine.Stop()
	snap := m.engine.Snapshot()
	if err := m.state.SaveSnapshot(snap); err != nil {
		m.log.Error("snapshot not saved", "err", err)
		return
	}
	m.log.Info("snapshot saved", "snapshot", snap)
}

// Save stops the engine and persists its snapshot.
func (m Model) Save() {
	m.saveSnapshot()
}

// Paused reports whether the engine is held by the player.
func (m Model) Paused() bool {
	return m.paused
}

// Engine exposes the engine for the app and tests.
func (m Model) Engine() *engine.Engine {
	return m.engine
}

// Moves returns how many advances the engine committed and how many of them turned.
func (m Model) Moves() (moves, flips int) {
	return m.stats.moves, m.stats.flips
}

func (m Model) View() string {
	var sb strings.Builder
	w, _ := m.board.Size()
	sw, _ := m.board.SpriteDims()
	width := w * sw

	sb.WriteString(render.Rule(width))
	sb.WriteString("\n")
	sb.WriteString(m.headerText())
	sb.WriteString("\n")
	sb.WriteString(m.board.View(time.Now()))
	sb.WriteString("\n")
	sb.WriteString(style.Footer.Render(m.help.View(m.keys)))

	return render.Center(sb.String(), m.termWidth, m.termHeight)
}

func (m Model) headerText() string {
	st := m.engine.State()
	header := style.PlayHeader.Render(fmt.Sprintf("Row %2d  %-10s  Moves %d  Bounces %d",
		st.Position.Row, st.Direction, m.stats.moves, m.stats.flips))
	switch {
	case m.err != nil:
		var rejected *engine.SchedulerRejectedError
		if errors.As(m.err, &rejected) {
			return header + "  " + style.Fatal.Render("STOPPED: tick not armed")
		}
		return header + "  " + style.Fatal.Render("STOPPED")
	case m.paused:
		return header + "  " + style.Paused.Render("PAUSED")
	case m.sound.Muted():
		return header + "  " + style.Footer.Render("muted")
	}
	return header
}
