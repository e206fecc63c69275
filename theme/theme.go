package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"go-alsaseq/seq"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Note     rune // ♪ note on/off/duration
	Control  rune // ◆ controller, pitch bend, pressure
	Program  rune // ▣ program change
	System   rune // ● queue control, clock, announcements
	Other    rune // · anything else
	Overflow rune // ! events lost
	Paused   rune // ‖ log paused
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = Default()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Note:     '♪',
			Control:  '◆',
			Program:  '▣',
			System:   '●',
			Other:    '·',
			Overflow: '!',
			Paused:   '‖',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // deep purple
	RoleMuted   = 0.2 // purple-magenta
	RoleFG      = 0.4 // pink-purple (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleActive  = 0.7 // soft red
	RoleWarning = 0.8 // orange
	RoleSuccess = 1.0 // bright yellow
)

// Kind groups event types for display
type Kind int

const (
	KindOther Kind = iota
	KindNote
	KindControl
	KindProgram
	KindSystem
)

// KindOf classifies an event type
func KindOf(t seq.EventType) Kind {
	switch t {
	case seq.EventNote, seq.EventNoteOn, seq.EventNoteOff, seq.EventKeyPress:
		return KindNote
	case seq.EventPgmChange:
		return KindProgram
	}
	switch seq.ShapeOf(t) {
	case seq.ShapeControl:
		return KindControl
	case seq.ShapeAddr:
		return KindSystem
	}
	if t >= seq.EventStart && t <= seq.EventSensing {
		return KindSystem
	}
	return KindOther
}

// kind colours sit between the text roles so they stay readable
var kindRoles = map[Kind]float64{
	KindOther:   RoleMuted,
	KindNote:    RoleSuccess,
	KindControl: RoleAccent,
	KindProgram: RoleWarning,
	KindSystem:  RoleActive,
}

// Style helpers

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

// KindColor returns the colour for an event kind
func (t *Theme) KindColor(k Kind) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(kindRoles[k]))
}

// KindSymbol returns the glyph for an event kind
func (t *Theme) KindSymbol(k Kind) rune {
	switch k {
	case KindNote:
		return t.Symbols.Note
	case KindControl:
		return t.Symbols.Control
	case KindProgram:
		return t.Symbols.Program
	case KindSystem:
		return t.Symbols.System
	}
	return t.Symbols.Other
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
