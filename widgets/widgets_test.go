package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestRenderLogKeepsHeight(t *testing.T) {
	lines := []LogLine{
		{Symbol: '♪', Color: lipgloss.Color("#ffffff"), Text: "one"},
		{Symbol: '♪', Color: lipgloss.Color("#ffffff"), Text: "two"},
		{Symbol: '♪', Color: lipgloss.Color("#ffffff"), Text: "three"},
	}

	out := RenderLog(lines, 40, 2)
	rows := strings.Split(out, "\n")
	assert.Len(t, rows, 2)
	assert.Contains(t, rows[0], "two")
	assert.Contains(t, rows[1], "three")

	rows = strings.Split(RenderLog(lines[:1], 40, 4), "\n")
	assert.Len(t, rows, 4)
	assert.Empty(t, rows[3])

	assert.Empty(t, RenderLog(lines, 40, 0))
}

func TestRenderLogLineTruncates(t *testing.T) {
	l := LogLine{Symbol: '·', Text: strings.Repeat("x", 50)}
	out := RenderLogLine(l, 12)
	assert.Contains(t, out, "xxxxxxxxx…")
	assert.NotContains(t, out, strings.Repeat("x", 11))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.Equal(t, "a", truncate("abcdef", 1))
}

func TestRenderKeyBar(t *testing.T) {
	bar := RenderKeyBar([]KeyBinding{{"q", "quit"}, {"c", "clear"}})
	assert.Equal(t, "q quit · c clear", bar)
}
