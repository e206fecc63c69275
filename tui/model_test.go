package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-alsaseq/seq"
	"go-alsaseq/theme"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	got, ok := next.(Model)
	require.True(t, ok)
	return got, cmd
}

func noteOn(t *testing.T, note int) seq.Event {
	t.Helper()
	ev, err := seq.NewNoteOn(seq.WithChannel(0), seq.WithNote(note), seq.WithVelocity(64))
	require.NoError(t, err)
	return ev
}

func TestLogIsBounded(t *testing.T) {
	events := make(chan seq.Event)
	m := NewModel(theme.New(nil), events, nil, 3)

	var cmd tea.Cmd
	for n := 60; n < 65; n++ {
		m, cmd = update(t, m, EventMsg{Event: noteOn(t, n)})
		require.NotNil(t, cmd, "keeps listening")
	}

	lines := m.Lines()
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0].Text, "#62")
	assert.Contains(t, lines[2].Text, "#64")
	assert.Equal(t, '♪', lines[2].Symbol)
	assert.Contains(t, m.View(), "events:5")
}

func TestPauseAndClear(t *testing.T) {
	m := NewModel(theme.New(nil), nil, nil, 0)

	m, _ = update(t, m, EventMsg{Event: noteOn(t, 60)})
	m, _ = update(t, m, key("p"))
	assert.True(t, m.Paused())
	m, _ = update(t, m, EventMsg{Event: noteOn(t, 61)})
	assert.Len(t, m.Lines(), 1)
	assert.Contains(t, m.View(), "1 skipped")

	m, _ = update(t, m, key("p"))
	m, _ = update(t, m, key("c"))
	assert.Empty(t, m.Lines())
	assert.False(t, m.Paused())
}

func TestQuit(t *testing.T) {
	m := NewModel(theme.New(nil), nil, nil, 0)
	m, cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestListenForEvents(t *testing.T) {
	events := make(chan seq.Event, 1)
	ev := noteOn(t, 70)
	events <- ev
	assert.Equal(t, EventMsg{Event: ev}, ListenForEvents(events)())

	close(events)
	assert.Equal(t, closedMsg{}, ListenForEvents(events)())
}

func TestErrorShown(t *testing.T) {
	errs := make(chan error, 1)
	errs <- errors.New("poll: bad descriptor")
	m := NewModel(theme.New(nil), nil, errs, 0)

	msg := ListenForErrors(errs)()
	m, _ = update(t, m, msg)
	assert.Contains(t, m.View(), "poll: bad descriptor")
}

func TestHelpToggle(t *testing.T) {
	m := NewModel(theme.New(nil), nil, nil, 0)
	m, _ = update(t, m, EventMsg{Event: noteOn(t, 60)})

	m, _ = update(t, m, key("?"))
	view := m.View()
	assert.Contains(t, view, "toggle this help")
	assert.Contains(t, view, "port announcements")
	assert.NotContains(t, view, "#60")

	m, _ = update(t, m, key("?"))
	assert.Contains(t, m.View(), "#60")
}
