package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-alsaseq/seq"
)

const gpl = `GIMP Palette
Name: mono
Columns: 2
# comment
0 0 0	black
255 255 255	white
`

func TestLoadGPL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.gpl")
	require.NoError(t, os.WriteFile(path, []byte(gpl), 0644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mono", p.Name)
	assert.Equal(t, []RGB{{0, 0, 0}, {255, 255, 255}}, p.Colors)

	assert.Equal(t, RGB{0, 0, 0}, p.Lookup(-1))
	assert.Equal(t, RGB{255, 255, 255}, p.Lookup(2))
	assert.Equal(t, RGB{127, 127, 127}, p.Lookup(0.5))
}

func TestLoadEmptyPalette(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.gpl")
	require.NoError(t, os.WriteFile(path, []byte("GIMP Palette\n"), 0644))
	_, err := LoadGPL(path)
	assert.ErrorContains(t, err, "no colors")

	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "plasma", p.Name)
}

func TestKindOf(t *testing.T) {
	tests := map[seq.EventType]Kind{
		seq.EventNoteOn:     KindNote,
		seq.EventKeyPress:   KindNote,
		seq.EventController: KindControl,
		seq.EventPitchbend:  KindControl,
		seq.EventPgmChange:  KindProgram,
		seq.EventStart:      KindSystem,
		seq.EventClock:      KindSystem,
		seq.EventPortStart:  KindSystem,
		seq.EventSysex:      KindOther,
		seq.EventUsr0:       KindOther,
	}
	for typ, want := range tests {
		assert.Equal(t, want, KindOf(typ), typ.String())
	}

	th := New(nil)
	assert.Equal(t, '♪', th.KindSymbol(KindNote))
	assert.NotEqual(t, th.KindColor(KindNote), th.KindColor(KindControl))
}
