package quit

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vinser/bounce/internal/render"
	"github.com/vinser/bounce/internal/style"
)

const quitPeriod = 1500 * time.Millisecond

type Model struct {
	quitUntil  time.Time
	message    string
	width      int
	height     int
	termWidth  int
	termHeight int
}

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

type TimedoutMsg struct{}

func timedoutCmd() tea.Cmd {
	return func() tea.Msg {
		return TimedoutMsg{}
	}
}

// New shows a farewell. A non-nil err replaces it with the reason the run stopped.
func New(width, height int, err error) Model {
	message := "Position saved.\nBye!"
	if err != nil {
		message = style.Fatal.Render(err.Error())
	}
	return Model{
		quitUntil: time.Now().Add(quitPeriod),
		message:   message,
		width:     width,
		height:    height,
	}
}

func (m *Model) SetSize(width, height int) {
	m.termWidth = width
	m.termHeight = height
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(TickMsg); !ok {
		return m, nil
	}
	if time.Now().After(m.quitUntil) {
		return m, timedoutCmd()
	}
	return m, tick()
}

func (m Model) View() string {
	return render.Page(render.Layout{
		Title:      "Bounce",
		Content:    style.Content.Render(m.message),
		Width:      m.width,
		Height:     m.height,
		TermWidth:  m.termWidth,
		TermHeight: m.termHeight,
	})
}
