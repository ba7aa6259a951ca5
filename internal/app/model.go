package app

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vinser/bounce/internal/board"
	"github.com/vinser/bounce/internal/model/about"
	"github.com/vinser/bounce/internal/model/play"
	"github.com/vinser/bounce/internal/model/quit"
	"github.com/vinser/bounce/internal/sched"
	"github.com/vinser/bounce/internal/sound"
	"github.com/vinser/bounce/internal/state"
)

type status uint

const (
	statusPlaying status = iota
	statusAbout
	statusQuitting
)

// Model switches between the board, the about page and the farewell.
// The engine keeps ticking while the about page is open.
type Model struct {
	status status
	state  *state.State
	log    *slog.Logger
	err    error
	// models
	play  play.Model
	about about.Model
	quit  quit.Model
	// page size follows the board
	pageWidth  int
	pageHeight int
	// terminal size cache
	termWidth  int
	termHeight int
}

func New(st *state.State, sm *sound.Manager, b *board.Board, logger *slog.Logger) (Model, error) {
	p, err := play.New(st, sm, b, logger)
	if err != nil {
		return Model{}, err
	}
	w, h := b.Size()
	sw, sh := b.SpriteDims()
	return Model{
		status:     statusPlaying,
		state:      st,
		log:        logger,
		play:       p,
		pageWidth:  w * sw,
		pageHeight: h*sh + headerRows,
	}, nil
}

// Err returns why the run stopped, if it was not the player's choice.
func (m Model) Err() error {
	return m.err
}

func (m Model) Init() tea.Cmd {
	return m.play.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Always remember the latest terminal size
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.play, cmd = m.play.Update(play.WindowSizeMsg{Width: msg.Width, Height: msg.Height})
		m.about.SetSize(msg.Width, msg.Height)
		m.quit.SetSize(msg.Width, msg.Height)
		return m, tea.Batch(cmd, tea.ClearScreen)
	case play.AboutMsg:
		a, err := about.New(m.pageWidth, m.pageHeight)
		if err != nil {
			m.log.Error("about page unavailable", "err", err)
			return m, nil
		}
		a.SetSize(m.termWidth, m.termHeight)
		m.about = a
		m.status = statusAbout
		return m, nil
	case about.CloseAboutMsg:
		m.status = statusPlaying
		return m, nil
	case play.FatalMsg:
		m.err = msg.Err
		m.log.Error("engine stopped", "err", msg.Err)
		return m, m.setQuit()
	case play.QuitMsg:
		return m, m.setQuit()
	case quit.TimedoutMsg:
		return m, tea.Quit
	case sched.FireMsg, play.BlinkMsg:
		// The board runs behind every page.
		if m.status != statusQuitting {
			m.play, cmd = m.play.Update(msg)
		}
		return m, cmd
	}

	switch m.status {
	case statusPlaying:
		m.play, cmd = m.play.Update(msg)
	case statusAbout:
		if key, ok := msg.(tea.KeyMsg); ok && (key.String() == "q" || key.String() == "ctrl+c") {
			m.play, cmd = m.play.Update(msg)
			return m, cmd
		}
		m.about, cmd = m.about.Update(msg)
	case statusQuitting:
		m.quit, cmd = m.quit.Update(msg)
	}
	return m, cmd
}

func (m *Model) setQuit() tea.Cmd {
	m.status = statusQuitting
	m.quit = quit.New(m.pageWidth, m.pageHeight, m.err)
	m.quit.SetSize(m.termWidth, m.termHeight)
	return m.quit.Init()
}

func (m Model) View() string {
	switch m.status {
	case statusAbout:
		return m.about.View()
	case statusQuitting:
		return m.quit.View()
	}
	return m.play.View()
}
