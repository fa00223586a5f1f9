// Package output provides formatting for rebase progress and results.
package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// ColorEnabled reports whether colored output should be used.
//
// Color is disabled when any of:
//   - noColorFlag is true (--no-color)
//   - NO_COLOR is set (any value, per https://no-color.org)
//   - CLICOLOR=0
//   - TERM=dumb
func ColorEnabled(noColorFlag bool) bool {
	if noColorFlag {
		return false
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	if os.Getenv("CLICOLOR") == "0" {
		return false
	}

	return os.Getenv("TERM") != "dumb"
}

// Theme holds the styles for text output.
type Theme struct {
	Checkout lipgloss.Style
	Command  lipgloss.Style
	Branch   lipgloss.Style
	Success  lipgloss.Style
	Banner   lipgloss.Style
	Error    lipgloss.Style
	Hint     lipgloss.Style
	Muted    lipgloss.Style
}

// NewTheme creates a Theme rendering for w. When color is false, all
// styles are empty and produce no escape codes. Otherwise the color
// profile is detected from w, so writers that are not terminals still get
// plain text.
func NewTheme(w io.Writer, color bool) Theme {
	if !color {
		return Theme{}
	}

	r := lipgloss.NewRenderer(w)

	return Theme{
		Checkout: r.NewStyle().Foreground(lipgloss.Color("12")), // bright blue
		Command:  r.NewStyle().Foreground(lipgloss.Color("12")),
		Branch:   r.NewStyle().Bold(true),
		Success:  r.NewStyle().Foreground(lipgloss.Color("10")), // bright green
		Banner: r.NewStyle().
			Foreground(lipgloss.Color("14")).
			Background(lipgloss.Color("15")),
		Error: r.NewStyle().Foreground(lipgloss.Color("9")),
		Hint:  r.NewStyle().Foreground(lipgloss.Color("11")), // bright yellow
		Muted: r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}
