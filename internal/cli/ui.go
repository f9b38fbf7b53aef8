package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	// Stats badges: where the data and the bytes came from.
	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleFresh    = lipgloss.NewStyle().Foreground(colorGray)
	styleFallback = lipgloss.NewStyle().Foreground(colorYellow)
)

// A mark prefixes a status line.
type mark struct {
	glyph string
	style lipgloss.Style
}

var (
	markSuccess = mark{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	markError   = mark{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	markWarning = mark{"!", lipgloss.NewStyle().Foreground(colorYellow)}
	markInfo    = mark{"›", lipgloss.NewStyle().Foreground(colorGray)}
)

// screen writes the human-facing output of a command. Logs go to stderr
// through the logger; screen output goes to the command's stdout.
type screen struct {
	w io.Writer
}

func newScreen(cmd *cobra.Command) screen {
	return screen{w: cmd.OutOrStdout()}
}

func (s screen) status(m mark, format string, args ...any) {
	fmt.Fprintln(s.w, m.style.Render(m.glyph)+" "+fmt.Sprintf(format, args...))
}

func (s screen) success(format string, args ...any) { s.status(markSuccess, format, args...) }
func (s screen) failure(format string, args ...any) { s.status(markError, format, args...) }
func (s screen) info(format string, args ...any)    { s.status(markInfo, format, args...) }

func (s screen) warning(format string, args ...any) {
	s.status(markWarning, "%s", markWarning.style.Render(fmt.Sprintf(format, args...)))
}

func (s screen) title(text string) {
	fmt.Fprintln(s.w, styleTitle.Render(text))
}

// detail prints an indented, dimmed line.
func (s screen) detail(format string, args ...any) {
	fmt.Fprintln(s.w, "  "+styleDim.Render(fmt.Sprintf(format, args...)))
}

// saved prints "→ Saved: <path>". Batch scripts grep for it.
func (s screen) saved(path string) {
	fmt.Fprintln(s.w, "  "+styleDim.Render("→ Saved:")+" "+styleValue.Render(path))
}

func (s screen) keyValue(key, value string) {
	fmt.Fprintln(s.w, styleKey.Render(key)+" "+styleValue.Render(value))
}

func (s screen) nextStep(description, cmd string) {
	fmt.Fprintln(s.w, styleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// stats prints one figure as "120 points · 14.2 KiB · loaded · fresh".
func (s screen) stats(points, size int, data string, cached bool) {
	var parts []string
	if points > 0 {
		parts = append(parts, fmt.Sprintf("%d points", points))
	}
	parts = append(parts, formatBytes(int64(size)))
	switch {
	case data == "loaded":
		parts = append(parts, data)
	case data != "":
		parts = append(parts, styleFallback.Render(data))
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, styleFresh.Render("fresh"))
	}
	fmt.Fprintln(s.w, "  "+strings.Join(parts, styleDim.Render(" · ")))
}

// formatBytes uses binary units: 1536 is "1.5 KiB".
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
