package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo contains information to display in the header.
type HeaderInfo struct {
	Version string // Version string (e.g., "v0.2.0")
	Tagline string // Optional tagline
}

// HeaderWidth is the default width of the header divider
const HeaderWidth = 50

// RenderHeader renders a clean branded header: name, version, divider.
func RenderHeader(info HeaderInfo) string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(string(ColorInfo))).
		Bold(true)

	var output strings.Builder

	output.WriteString(titleStyle.Render("sshdeck"))
	output.WriteString(" ")
	output.WriteString(styled(ColorSecondary, info.Version))
	output.WriteString("\n")

	if info.Tagline != "" {
		output.WriteString(styled(ColorMuted, info.Tagline))
		output.WriteString("\n")
	}

	output.WriteString(styled(ColorMuted, strings.Repeat("━", HeaderWidth)))
	output.WriteString("\n")

	return output.String()
}

// PrintHeader prints the styled header to stdout.
func PrintHeader(info HeaderInfo) {
	fmt.Print(RenderHeader(info))
}
