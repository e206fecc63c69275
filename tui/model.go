package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-alsaseq/seq"
	"go-alsaseq/theme"
	"go-alsaseq/widgets"
)

// DefaultMaxEvents bounds the log when the caller gives no limit
const DefaultMaxEvents = 200

type Model struct {
	Theme   *theme.Theme
	Title   string   // shown in the header, e.g. "go-alsaseq 128:0"
	Sources []string // connected source addresses

	events  <-chan seq.Event
	errs    <-chan error
	log     []widgets.LogLine
	max     int
	total   int
	skipped int // received while paused
	paused  bool
	help    bool
	err     error
	width   int
	height  int

	quitting bool
}

// EventMsg carries one received event into the model
type EventMsg struct{ Event seq.Event }

// ErrMsg reports that the receive loop stopped
type ErrMsg struct{ Err error }

type closedMsg struct{}

func NewModel(th *theme.Theme, events <-chan seq.Event, errs <-chan error, maxEvents int) Model {
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	return Model{
		Theme:  th,
		events: events,
		errs:   errs,
		max:    maxEvents,
	}
}

func ListenForEvents(events <-chan seq.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return closedMsg{}
		}
		return EventMsg{Event: ev}
	}
}

func ListenForErrors(errs <-chan error) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-errs
		if !ok {
			return nil
		}
		return ErrMsg{Err: err}
	}
}

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.events != nil {
		cmds = append(cmds, ListenForEvents(m.events))
	}
	if m.errs != nil {
		cmds = append(cmds, ListenForErrors(m.errs))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "c":
			m.log = nil
			m.skipped = 0

		case "p":
			m.paused = !m.paused

		case "?":
			m.help = !m.help
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case EventMsg:
		m.add(msg.Event)
		return m, ListenForEvents(m.events)

	case ErrMsg:
		m.err = msg.Err

	case closedMsg:
	}

	return m, nil
}

func (m *Model) add(ev seq.Event) {
	m.total++
	if m.paused {
		m.skipped++
		return
	}
	k := theme.KindOf(ev.Type())
	m.log = append(m.log, widgets.LogLine{
		Symbol: m.Theme.KindSymbol(k),
		Color:  m.Theme.KindColor(k),
		Text:   ev.String(),
	})
	if len(m.log) > m.max {
		// copy so the backing array does not grow without bound
		m.log = append([]widgets.LogLine(nil), m.log[len(m.log)-m.max:]...)
	}
}

// Lines returns the logged lines, oldest first
func (m Model) Lines() []widgets.LogLine { return m.log }

func (m Model) Paused() bool { return m.paused }

var keySections = []widgets.KeySection{
	{Title: "Log", Keys: []widgets.KeyBinding{
		{Key: "p", Desc: "pause / resume"},
		{Key: "c", Desc: "clear"},
	}},
	{Title: "General", Keys: []widgets.KeyBinding{
		{Key: "?", Desc: "toggle this help"},
		{Key: "q, ctrl+c", Desc: "quit"},
	}},
}

func (m Model) helpView() string {
	th := m.Theme
	legend := []string{
		"Events",
		widgets.RenderLegendItem(th.KindSymbol(theme.KindNote), th.KindColor(theme.KindNote), "Note", "note on/off, key pressure"),
		widgets.RenderLegendItem(th.KindSymbol(theme.KindControl), th.KindColor(theme.KindControl), "Control", "controller, pitch bend, channel pressure"),
		widgets.RenderLegendItem(th.KindSymbol(theme.KindProgram), th.KindColor(theme.KindProgram), "Program", "program change"),
		widgets.RenderLegendItem(th.KindSymbol(theme.KindSystem), th.KindColor(theme.KindSystem), "System", "transport, clock, port announcements"),
		widgets.RenderLegendItem(th.KindSymbol(theme.KindOther), th.KindColor(theme.KindOther), "Other", "everything else"),
	}
	return strings.Join(legend, "\n") + "\n\n" + widgets.RenderKeyHelp(keySections)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	textStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	state := ""
	if m.paused {
		state = fmt.Sprintf("  %c paused (%d skipped)", m.Theme.Symbols.Paused, m.skipped)
	}
	header := headerStyle.Render(fmt.Sprintf("%s  events:%d%s", m.Title, m.total, state))

	sources := "no sources"
	if len(m.Sources) > 0 {
		sources = "from " + strings.Join(m.Sources, ", ")
	}

	help := dimStyle.Render(widgets.RenderKeyBar([]widgets.KeyBinding{
		{Key: "p", Desc: "pause"},
		{Key: "c", Desc: "clear"},
		{Key: "?", Desc: "help"},
		{Key: "q", Desc: "quit"},
	}))

	// header, sources, blank, log, blank, help (+ error)
	logHeight := m.height - 6
	if m.err != nil {
		logHeight--
	}
	if m.height == 0 {
		logHeight = 20
	}

	var out strings.Builder
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(textStyle.Render(sources))
	out.WriteString("\n\n")
	if m.help {
		out.WriteString(m.helpView())
	} else {
		out.WriteString(widgets.RenderLog(m.log, m.width, logHeight))
	}
	out.WriteString("\n\n")
	out.WriteString(help)

	if m.err != nil {
		out.WriteString("\n")
		out.WriteString(warnStyle.Render(fmt.Sprintf("%c %v", m.Theme.Symbols.Overflow, m.err)))
	}

	return out.String()
}
