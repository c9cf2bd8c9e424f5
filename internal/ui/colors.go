package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Semantic colors, as ANSI codes so they follow the terminal's theme.
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

var colorsDisabled bool

// DisableColors renders every style without color or attributes.
func DisableColors() {
	colorsDisabled = true
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ColorsEnabled reports whether DisableColors hasn't been called.
func ColorsEnabled() bool {
	return !colorsDisabled
}

// ApplyColorEnv disables colors when noColor is set or NO_COLOR is present
// in the environment.
func ApplyColorEnv(noColor bool) {
	if _, ok := os.LookupEnv("NO_COLOR"); ok || noColor {
		DisableColors()
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Muted renders s in the secondary gray.
func Muted(s string) string {
	return lipgloss.NewStyle().Foreground(ColorMuted).Render(s)
}

// Success renders s with the success symbol in green.
func Success(s string) string {
	return lipgloss.NewStyle().Foreground(ColorSuccess).Render(SymbolSuccess) + " " + s
}

// Failure renders s with the failure symbol in red.
func Failure(s string) string {
	return lipgloss.NewStyle().Foreground(ColorError).Render(SymbolFail) + " " + s
}
