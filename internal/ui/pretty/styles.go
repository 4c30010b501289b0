// Package pretty renders build output with Lipgloss styles.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ANSI 256 palette indices.
const (
	colorRed    = "9"
	colorGreen  = "10"
	colorYellow = "11"
	colorBlue   = "12"
	colorCyan   = "14"
	colorGrey   = "8"
	colorLight  = "7"
)

// Styles holds one renderer per kind of output element.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Documents, bundles and the sources inside them.
	FilePath lipgloss.Style
	Bundle   lipgloss.Style
	Source   lipgloss.Style
	Size     lipgloss.Style
	Arrow    lipgloss.Style

	DiffHeader  lipgloss.Style
	DiffHunk    lipgloss.Style
	DiffAdd     lipgloss.Style
	DiffRemove  lipgloss.Style
	DiffContext lipgloss.Style

	SummaryTitle lipgloss.Style
	SummaryValue lipgloss.Style
	Success      lipgloss.Style
	Failure      lipgloss.Style

	TableHeader    lipgloss.Style
	TableErrorRow  lipgloss.Style
	TableWarnRow   lipgloss.Style
	TableSeparator lipgloss.Style

	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// NewStyles returns the styles for a color or a plain terminal. Plain styles
// render text unchanged.
func NewStyles(colorEnabled bool) *Styles {
	plain := lipgloss.NewStyle()
	fg := func(color string) lipgloss.Style {
		if !colorEnabled {
			return plain
		}
		return plain.Foreground(lipgloss.Color(color))
	}
	bold := func(style lipgloss.Style) lipgloss.Style {
		if !colorEnabled {
			return plain
		}
		return style.Bold(true)
	}

	return &Styles{
		Error:   bold(fg(colorRed)),
		Warning: bold(fg(colorYellow)),
		Info:    bold(fg(colorBlue)),

		FilePath: bold(plain),
		Bundle:   fg(colorCyan),
		Source:   fg(colorLight),
		Size:     fg(colorGrey),
		Arrow:    fg(colorGrey),

		DiffHeader:  bold(plain),
		DiffHunk:    fg(colorCyan),
		DiffAdd:     fg(colorGreen),
		DiffRemove:  fg(colorRed),
		DiffContext: fg(colorGrey),

		SummaryTitle: bold(plain),
		SummaryValue: plain,
		Success:      bold(fg(colorGreen)),
		Failure:      bold(fg(colorRed)),

		TableHeader:    bold(fg(colorLight)),
		TableErrorRow:  fg(colorRed),
		TableWarnRow:   fg(colorYellow),
		TableSeparator: fg(colorGrey),

		Dim:  fg(colorGrey),
		Bold: bold(plain),
	}
}

// IsColorEnabled resolves a --color mode ("auto", "always", "never") for writer.
// Auto enables color only for terminals, and never when NO_COLOR is set.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
