package style

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	PlayHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))  // Green
	Paused     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("204")) // Pinkish-reddish purple
	Fatal      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))   // Bright red

	// Page styles
	TopPattern = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))            // Pinkish-reddish purple
	Title      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("228")) // Bright yellow
	Content    = lipgloss.NewStyle()
	Footer     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type RGB struct {
	R int
	G int
	B int
}

var RGBColor = map[string]RGB{
	"black":  {0, 0, 0},
	"red":    {255, 0, 0},
	"green":  {0, 255, 0},
	"yellow": {255, 255, 0},
	"white":  {255, 255, 255},
	"grey":   {128, 128, 128},
}

// GenerateHexColor generates hexadecimal string for the given RGB values in range 0-255.
// Format: #RRGGBB
func GenerateHexColor(r, g, b int) string {
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

const (
	brightMin = 96
	dimShift  = 64
)

// Shade scales a color channel by ambient light in [0, 1] and returns its
// bright and dim variants. Lit channels never drop below brightMin.
func Shade(channel int, light float64) (bright, dim int) {
	if channel == 0 {
		return 0, 0
	}
	light = max(0, min(1, light))
	bright = brightMin + int(float64(channel-brightMin)*light)
	if channel < brightMin {
		bright = channel
	}
	dim = max(0, bright-dimShift)
	return bright, dim
}

// Styles returns bright and dim foreground styles of color under the given light.
func Styles(color RGB, light float64) (brightStyle, dimStyle lipgloss.Style) {
	brightR, dimR := Shade(color.R, light)
	brightG, dimG := Shade(color.G, light)
	brightB, dimB := Shade(color.B, light)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(GenerateHexColor(dimR, dimG, dimB)))
	brightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(GenerateHexColor(brightR, brightG, brightB)))
	return brightStyle, dimStyle
}
