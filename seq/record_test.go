package seq_test

import (
	"encoding"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-alsaseq/seq"
)

func TestRecordBinaryLayout(t *testing.T) {
	ev, err := seq.NewNote(
		seq.WithChannel(3), seq.WithNote(66), seq.WithVelocity(100),
		seq.WithOffVelocity(64), seq.WithDuration(0x01020304),
		seq.WithTag(7), seq.WithQueue(1), seq.WithTick(0x0a0b0c0d),
		seq.WithSourceClient(128), seq.WithSourcePort(2),
	)
	require.NoError(t, err)

	b, err := seq.RecordOf(ev).MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, seq.RecordSize)

	want := []byte{
		5, 0, 7, 1, // type, flags, tag, queue
		0x0d, 0x0c, 0x0b, 0x0a, 0, 0, 0, 0, // tick
		128, 2, 254, 253, // source, dest
		3, 66, 100, 64, 0x04, 0x03, 0x02, 0x01, 0, 0, 0, 0, // note payload
	}
	assert.Equal(t, want, b)

	back, err := seq.DecodeRecord(b)
	require.NoError(t, err)
	assert.Equal(t, seq.RecordOf(ev), back)
}

func TestDecodeRecordWrongSize(t *testing.T) {
	_, err := seq.DecodeRecord(make([]byte, 27))
	assert.ErrorIs(t, err, seq.ErrUsage)
}

func TestNamedVariantsCannotBeRetagged(t *testing.T) {
	cc, err := seq.NewControlChange(seq.WithChannel(2), seq.WithParam(7), seq.WithValue(64))
	require.NoError(t, err)
	b, err := cc.MarshalBinary()
	require.NoError(t, err)

	for _, ev := range []seq.Event{
		&seq.NoteEvent{}, &seq.NoteOnEvent{}, &seq.NoteOffEvent{},
		&seq.ControlChangeEvent{}, &seq.ControlChange14Event{}, &seq.ProgramChangeEvent{},
	} {
		_, ok := ev.(encoding.BinaryUnmarshaler)
		assert.False(t, ok, "%T decodes in place", ev)
	}

	gen, err := seq.NewEvent(seq.EventNoteOn)
	require.NoError(t, err)
	require.NoError(t, gen.UnmarshalBinary(b))
	assert.Equal(t, seq.EventController, gen.Type())
	assert.Equal(t, seq.ControlData{Channel: 2, Param: 7, Value: 64}, gen.ControlData())
	assert.Error(t, gen.UnmarshalBinary(b[:10]))
	assert.Equal(t, seq.EventController, gen.Type())
}

func TestControlPayloadLayout(t *testing.T) {
	ev, err := seq.NewControlChange14(seq.WithChannel(1), seq.WithParam(7), seq.WithValue(16000))
	require.NoError(t, err)

	p := ev.Payload()
	assert.Equal(t, [seq.PayloadSize]byte{1, 0, 0, 0, 7, 0, 0, 0, 0x80, 0x3e, 0, 0}, p)
}

func TestSetTimeSwitchesUnit(t *testing.T) {
	var r seq.Record
	r.Flags = seq.TimeModeRel | seq.PriorityHigh

	r.SetRealTime(3, 500)
	assert.True(t, r.Flags.IsRealTime())
	sec, nsec := r.RealTime()
	assert.Equal(t, uint32(3), sec)
	assert.Equal(t, uint32(500), nsec)

	r.SetTick(42)
	assert.False(t, r.Flags.IsRealTime())
	assert.Equal(t, uint32(42), r.Tick())
	_, nsec = r.RealTime()
	assert.Zero(t, nsec)

	assert.True(t, r.Flags.IsRelative())
	assert.True(t, r.Flags.IsHighPriority())
}

func TestFlagsHelpers(t *testing.T) {
	f := seq.LengthVariable | seq.TimeStampReal
	f = f.WithMode(seq.TimeModeRel).WithPriority(seq.PriorityHigh).WithStamp(seq.TimeStampTick)

	assert.False(t, f.IsRealTime())
	assert.True(t, f.IsRelative())
	assert.True(t, f.IsHighPriority())
	assert.Equal(t, seq.LengthVariable, f&seq.LengthMask)
}

func TestEventString(t *testing.T) {
	on, err := seq.NewNoteOn(seq.WithChannel(0), seq.WithNote(60), seq.WithVelocity(100))
	require.NoError(t, err)
	assert.Equal(t, "<NoteOnEvent #60 velocity=100 @#0 from 0:0 to 254:253>", on.String())

	cc, err := seq.NewControlChange(seq.WithParam(60), seq.WithValue(66),
		seq.WithFlags(int(seq.TimeModeRel)), seq.WithTick(10))
	require.NoError(t, err)
	assert.Equal(t, "<ControlChangeEvent #60 value=66 @#+10 from 0:0 to 254:253>", cc.String())

	pc, err := seq.NewProgramChange(seq.WithValue(5), seq.WithSeconds(1), seq.WithNanoseconds(500000000))
	require.NoError(t, err)
	assert.Equal(t, "<ProgramChangeEvent #5 @1.500 from 0:0 to 254:253>", pc.String())

	gen, err := seq.NewEvent(seq.EventClock)
	require.NoError(t, err)
	assert.Equal(t, "<GenericEvent CLOCK @#0 from 0:0 to 254:253>", gen.String())
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "NOTEON", seq.EventNoteOn.String())
	assert.Equal(t, "USR3", seq.EventType(93).String())
	assert.Equal(t, "EVENT(200)", seq.EventType(200).String())
}
