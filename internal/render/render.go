package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vinser/bounce/internal/style"
)

// Layout describes one full screen.
type Layout struct {
	Title   string
	Content string // already styled
	Footer  string

	Width, Height         int // page size
	TermWidth, TermHeight int // zero until the terminal reports its size
}

// Rule is the slash line topping every page.
func Rule(width int) string {
	return style.TopPattern.Render(strings.Repeat("/", max(0, width)))
}

// Page stacks the rule, title, content and footer. Content is centred
// vertically in whatever height the other parts leave, and the page is
// centred in the terminal once its size is known.
func Page(l Layout) string {
	rule := Rule(l.Width)
	title := style.Title.Render(l.Title)
	footer := style.Footer.Render(l.Footer)

	free := max(0, l.Height-lipgloss.Height(rule)-lipgloss.Height(title)-lipgloss.Height(footer))
	view := lipgloss.JoinVertical(
		lipgloss.Left,
		rule,
		title,
		lipgloss.PlaceVertical(free, lipgloss.Center, l.Content),
		footer,
	)
	return Center(view, l.TermWidth, l.TermHeight)
}

// Center places view in the middle of the terminal. An unknown size leaves it as is.
func Center(view string, termWidth, termHeight int) string {
	if termWidth <= 0 || termHeight <= 0 {
		return view
	}
	return lipgloss.Place(termWidth, termHeight, lipgloss.Center, lipgloss.Center, view)
}
