package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// LogLine is one rendered row of the event log
type LogLine struct {
	Symbol rune
	Color  lipgloss.Color
	Text   string
}

// RenderLogLine renders "<symbol> text", truncated to width (0 = no limit)
func RenderLogLine(l LogLine, width int) string {
	text := l.Text
	if width > 2 && lipgloss.Width(text) > width-2 {
		text = truncate(text, width-2)
	}
	style := lipgloss.NewStyle().Foreground(l.Color)
	return style.Render(string(l.Symbol)) + " " + style.Render(text)
}

// RenderLog renders the last height lines, oldest first, padding with
// empty rows so the log keeps its size
func RenderLog(lines []LogLine, width, height int) string {
	if height <= 0 {
		return ""
	}
	start := 0
	if len(lines) > height {
		start = len(lines) - height
	}

	rows := make([]string, 0, height)
	for _, l := range lines[start:] {
		rows = append(rows, RenderLogLine(l, width))
	}
	for len(rows) < height {
		rows = append(rows, "")
	}
	return strings.Join(rows, "\n")
}

// RenderLegendItem renders a single legend item: "♪ Name - description"
func RenderLegendItem(symbol rune, color lipgloss.Color, name, desc string) string {
	sym := lipgloss.NewStyle().Foreground(color).Render(string(symbol))
	return fmt.Sprintf("  %s %s - %s", sym, name, desc)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
