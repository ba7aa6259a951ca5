package about

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewRendersMarkdown(t *testing.T) {
	m, err := New(60, 20)
	if err != nil {
		t.Fatal(err)
	}
	view := m.View()
	if !strings.Contains(view, "About") || !strings.Contains(view, "Bounce") {
		t.Errorf("view:\n%s", view)
	}
	if strings.Contains(view, "| Key |") {
		t.Error("markdown table not rendered")
	}
}

func TestMinimumWidth(t *testing.T) {
	m, err := New(5, 20)
	if err != nil {
		t.Fatal(err)
	}
	if m.width < len([]rune(footer)) {
		t.Errorf("width = %d, narrower than the footer", m.width)
	}
}

func TestEscCloses(t *testing.T) {
	m, _ := New(60, 20)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc returned no command")
	}
	if _, ok := cmd().(CloseAboutMsg); !ok {
		t.Error("esc did not close the page")
	}
}

func TestSetSizeShrinks(t *testing.T) {
	m, _ := New(60, 30)
	m.SetSize(80, 20)
	if m.viewport.Height != 20-chromeHeight {
		t.Errorf("viewport height = %d", m.viewport.Height)
	}
	m.SetSize(80, 50)
	if m.viewport.Height != 30 {
		t.Errorf("viewport height after grow = %d", m.viewport.Height)
	}
}
