package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors for status indication, as ANSI codes for terminal
// compatibility.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "7" // White/default
	ColorSecondary lipgloss.Color = "4" // Blue
	ColorMuted     lipgloss.Color = "8" // Gray (bright black)
)

// SpinnerColors is the cycle of accent colors for the spinner animation.
var SpinnerColors = []lipgloss.Color{ColorInfo, ColorSecondary, ColorSuccess}

var colorsEnabled = termenv.EnvColorProfile() != termenv.Ascii

// DisableColors switches all styled output to monochrome.
func DisableColors() {
	colorsEnabled = false
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ColorsEnabled reports whether styled output is active. Colors are off
// automatically on dumb terminals and pipes.
func ColorsEnabled() bool {
	return colorsEnabled
}

// styled returns s rendered in color, or plain when colors are off.
func styled(color lipgloss.Color, s string) string {
	if !colorsEnabled {
		return s
	}
	return lipgloss.NewStyle().Foreground(color).Render(s)
}
