package midi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-alsaseq/midi"
	"go-alsaseq/seq"
)

func mustEvent[T seq.Event](t *testing.T) func(T, error) T {
	return func(ev T, err error) T {
		t.Helper()
		require.NoError(t, err)
		return ev
	}
}

func TestMessages(t *testing.T) {
	tests := []struct {
		name string
		ev   seq.Event
		want []gomidi.Message
	}{
		{
			name: "note on",
			ev:   mustEvent[*seq.NoteOnEvent](t)(seq.NewNoteOn(seq.WithChannel(2), seq.WithNote(60), seq.WithVelocity(100))),
			want: []gomidi.Message{gomidi.NoteOn(2, 60, 100)},
		},
		{
			name: "note off keeps velocity",
			ev:   mustEvent[*seq.NoteOffEvent](t)(seq.NewNoteOff(seq.WithChannel(0), seq.WithNote(61), seq.WithVelocity(40))),
			want: []gomidi.Message{gomidi.NoteOffVelocity(0, 61, 40)},
		},
		{
			name: "note with duration plays its note on",
			ev:   mustEvent[*seq.NoteEvent](t)(seq.NewNote(seq.WithNote(62), seq.WithVelocity(90), seq.WithDuration(96))),
			want: []gomidi.Message{gomidi.NoteOn(0, 62, 90)},
		},
		{
			name: "control change",
			ev:   mustEvent[*seq.ControlChangeEvent](t)(seq.NewControlChange(seq.WithChannel(1), seq.WithParam(7), seq.WithValue(127))),
			want: []gomidi.Message{gomidi.ControlChange(1, 7, 127)},
		},
		{
			name: "14-bit control change below 32 is a pair",
			ev:   mustEvent[*seq.ControlChange14Event](t)(seq.NewControlChange14(seq.WithParam(1), seq.WithValue(16383))),
			want: []gomidi.Message{gomidi.ControlChange(0, 1, 127), gomidi.ControlChange(0, 33, 127)},
		},
		{
			name: "14-bit control change split",
			ev:   mustEvent[*seq.ControlChange14Event](t)(seq.NewControlChange14(seq.WithParam(7), seq.WithValue(0x2005))),
			want: []gomidi.Message{gomidi.ControlChange(0, 7, 0x40), gomidi.ControlChange(0, 39, 0x05)},
		},
		{
			name: "14-bit control change above 31 sends the low bits",
			ev:   mustEvent[*seq.ControlChange14Event](t)(seq.NewControlChange14(seq.WithParam(64), seq.WithValue(200))),
			want: []gomidi.Message{gomidi.ControlChange(0, 64, 200&0x7f)},
		},
		{
			name: "program change",
			ev:   mustEvent[*seq.ProgramChangeEvent](t)(seq.NewProgramChange(seq.WithChannel(9), seq.WithValue(5))),
			want: []gomidi.Message{gomidi.ProgramChange(9, 5)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := midi.Messages(tt.ev)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMessagesNotConvertible(t *testing.T) {
	clock, err := seq.NewEvent(seq.EventClock)
	require.NoError(t, err)
	_, err = midi.Messages(clock)
	assert.ErrorIs(t, err, midi.ErrNotConvertible)

	high, err := seq.NewNoteOn(seq.WithChannel(16), seq.WithNote(60), seq.WithVelocity(1))
	require.NoError(t, err)
	_, err = midi.Messages(high)
	assert.ErrorIs(t, err, midi.ErrNotConvertible)
}

func TestFromMessage(t *testing.T) {
	ev, err := midi.FromMessage(gomidi.NoteOn(3, 64, 80))
	require.NoError(t, err)
	on, ok := ev.(*seq.NoteOnEvent)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, [3]uint8{3, 64, 80}, [3]uint8{on.Channel(), on.Note(), on.Velocity()})

	ev, err = midi.FromMessage(gomidi.NoteOn(3, 64, 0))
	require.NoError(t, err)
	assert.Equal(t, seq.EventNoteOff, ev.Type())

	ev, err = midi.FromMessage(gomidi.NoteOff(3, 64))
	require.NoError(t, err)
	assert.IsType(t, &seq.NoteOffEvent{}, ev)

	ev, err = midi.FromMessage(gomidi.ControlChange(0, 74, 12))
	require.NoError(t, err)
	cc, ok := ev.(*seq.ControlChangeEvent)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, uint32(74), cc.Param())
	assert.Equal(t, int32(12), cc.Value())

	ev, err = midi.FromMessage(gomidi.ProgramChange(4, 33))
	require.NoError(t, err)
	pc, ok := ev.(*seq.ProgramChangeEvent)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, int32(33), pc.Value())

	ev, err = midi.FromMessage(gomidi.Pitchbend(0, -100))
	require.NoError(t, err)
	assert.Equal(t, seq.EventPitchbend, ev.Type())
	rec := seq.RecordOf(ev)
	assert.Equal(t, int32(-100), rec.ControlData().Value)
}

func TestRoundTrip(t *testing.T) {
	for _, msg := range []gomidi.Message{
		gomidi.NoteOn(0, 1, 2),
		gomidi.ControlChange(15, 127, 0),
		gomidi.ProgramChange(8, 127),
		gomidi.AfterTouch(2, 50),
		gomidi.PolyAfterTouch(2, 60, 70),
		gomidi.Pitchbend(1, 8191),
	} {
		ev, err := midi.FromMessage(msg)
		require.NoError(t, err, msg.String())
		back, err := midi.Messages(ev)
		require.NoError(t, err, msg.String())
		assert.Equal(t, []gomidi.Message{msg}, back)
	}
}
