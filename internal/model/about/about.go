package about

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/vinser/bounce/internal/embeddata"
	"github.com/vinser/bounce/internal/render"
)

const (
	footer        = "↑ ↓ scroll, esc back, q quit"
	glamourGutter = 2
	chromeHeight  = 5 // rule, title, footer and margins around the viewport
)

type Model struct {
	width       int
	height      int
	startHeight int
	termWidth   int
	termHeight  int

	viewport viewport.Model
}

type CloseAboutMsg struct{}

func closeAboutCmd() tea.Cmd {
	return func() tea.Msg {
		return CloseAboutMsg{}
	}
}

// New renders the embedded about page for a width x height page.
func New(width, height int) (Model, error) {
	width = max(width, lipgloss.Width(footer))
	md, err := embeddata.ReadAboutMD()
	if err != nil {
		return Model{}, err
	}

	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle()
	vp.SetContent(glamContent(string(md), width, vp.Style.GetHorizontalFrameSize(), glamourGutter))

	return Model{
		width:       width,
		height:      height,
		startHeight: height,
		viewport:    vp,
	}, nil
}

// SetSize shrinks the viewport to fit a small terminal.
func (m *Model) SetSize(width, height int) {
	m.termWidth = width
	m.termHeight = height
	if m.startHeight > m.termHeight-chromeHeight {
		m.height = m.termHeight
		m.viewport.Height = max(1, m.termHeight-chromeHeight)
	} else {
		m.height = m.startHeight
		m.viewport.Height = m.startHeight
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		return m, closeAboutCmd()
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return render.Page(render.Layout{
		Title:      "About",
		Content:    m.viewport.View(),
		Footer:     footer,
		Width:      m.width,
		Height:     m.height,
		TermWidth:  m.termWidth,
		TermHeight: m.termHeight,
	})
}

func glamContent(content string, width, frame, gutter int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("pink"),
		glamour.WithWordWrap(width-frame-gutter),
	)
	if err != nil {
		return content
	}
	str, err := r.Render(content)
	if err != nil {
		return content
	}
	return str
}
