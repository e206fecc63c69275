package seq_test

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-alsaseq/seq"
)

func TestNoteOnDefaults(t *testing.T) {
	ev, err := seq.NewNoteOn(seq.WithChannel(1), seq.WithNote(60), seq.WithVelocity(100))
	require.NoError(t, err)

	assert.Equal(t, seq.EventNoteOn, ev.Type())
	assert.Equal(t, seq.QueueDirect, ev.Queue)
	assert.Equal(t, seq.Addr{Client: seq.AddressSubscribers, Port: seq.AddressUnknown}, ev.Dest)
	assert.Equal(t, seq.Addr{}, ev.Source)
	assert.Equal(t, uint8(1), ev.Channel())
	assert.Equal(t, uint8(60), ev.Note())
	assert.Equal(t, uint8(100), ev.Velocity())
	assert.False(t, ev.Flags.IsRealTime())
	assert.False(t, ev.Flags.IsRelative())
}

func TestNoteOnRequiresFields(t *testing.T) {
	_, err := seq.NewNoteOn(seq.WithNote(60), seq.WithVelocity(100))
	require.ErrorIs(t, err, seq.ErrUsage)
	assert.Contains(t, err.Error(), "'channel'")

	_, err = seq.NewNoteOn()
	require.ErrorIs(t, err, seq.ErrUsage)
}

func TestNoteOffVelocityOptional(t *testing.T) {
	ev, err := seq.NewNoteOff(seq.WithChannel(0), seq.WithNote(62))
	require.NoError(t, err)
	assert.Equal(t, uint8(0), ev.Velocity())
	assert.Equal(t, seq.EventNoteOff, ev.Type())
}

func TestVariantRejectsForeignFields(t *testing.T) {
	_, err := seq.NewNoteOn(seq.WithChannel(0), seq.WithNote(1), seq.WithVelocity(1), seq.WithDuration(10))
	require.ErrorIs(t, err, seq.ErrUsage)

	_, err = seq.NewProgramChange(seq.WithParam(3))
	require.ErrorIs(t, err, seq.ErrUsage)

	_, err = seq.NewEvent(seq.EventClock, seq.WithChannel(1))
	require.ErrorIs(t, err, seq.ErrUsage)
}

func TestNoteAcceptsDuration(t *testing.T) {
	ev, err := seq.NewNote(seq.WithNote(66), seq.WithVelocity(100), seq.WithDuration(100), seq.WithOffVelocity(7))
	require.NoError(t, err)
	assert.Equal(t, seq.EventNote, ev.Type())
	assert.Equal(t, uint32(100), ev.Duration())
	assert.Equal(t, uint8(7), ev.OffVelocity())
	assert.Equal(t, uint8(0), ev.Channel())
}

func TestControlChangeBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		build func() error
		ok    bool
	}{
		{"cc value 0", ccValue(0), true},
		{"cc value 127", ccValue(127), true},
		{"cc value 128", ccValue(128), false},
		{"cc value -1", ccValue(-1), false},
		{"cc14 value 127", cc14Value(127), true},
		{"cc14 value 128", cc14Value(128), true},
		{"cc14 value 16383", cc14Value(16383), true},
		{"cc14 value 16384", cc14Value(16384), false},
		{"pc value 127", pcValue(127), true},
		{"pc value 128", pcValue(128), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, seq.ErrOutOfRange)
			}
		})
	}
}

func ccValue(v int) func() error {
	return func() error {
		_, err := seq.NewControlChange(seq.WithValue(v))
		return err
	}
}

func cc14Value(v int) func() error {
	return func() error {
		_, err := seq.NewControlChange14(seq.WithValue(v))
		return err
	}
}

func pcValue(v int) func() error {
	return func() error {
		_, err := seq.NewProgramChange(seq.WithValue(v))
		return err
	}
}

func TestRangeErrorFields(t *testing.T) {
	_, err := seq.NewControlChange(seq.WithChannel(3), seq.WithParam(200))
	var rerr *seq.RangeError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "param", rerr.Field)
	assert.Equal(t, int64(200), rerr.Value)
	assert.Equal(t, int64(127), rerr.Max)
	assert.ErrorIs(t, err, seq.ErrUsage)
}

func TestByteWidthRejected(t *testing.T) {
	for _, opt := range []seq.Option{
		seq.WithTag(256),
		seq.WithQueue(-1),
		seq.WithFlags(300),
		seq.WithSourceClient(256),
		seq.WithDestPort(1000),
		seq.WithTick(-1),
		seq.WithSeconds(1 << 33),
	} {
		_, err := seq.NewEvent(seq.EventEcho, opt)
		assert.ErrorIs(t, err, seq.ErrOutOfRange)
	}

	_, err := seq.NewNote(seq.WithVelocity(256))
	assert.ErrorIs(t, err, seq.ErrOutOfRange)
}

func TestControlChangeProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	in := func(v, max int) bool { return v >= 0 && v <= max }

	properties.Property("control-change keeps inputs or rejects out of range", prop.ForAll(
		func(ch, param, value int) bool {
			ev, err := seq.NewControlChange(seq.WithChannel(ch), seq.WithParam(param), seq.WithValue(value))
			valid := in(ch, 127) && in(param, 127) && in(value, 127)
			if !valid {
				return ev == nil && errors.Is(err, seq.ErrOutOfRange)
			}
			return err == nil &&
				int(ev.Channel()) == ch && int(ev.Param()) == param && int(ev.Value()) == value
		},
		gen.IntRange(-5, 260),
		gen.IntRange(-5, 140),
		gen.IntRange(-5, 140),
	))

	properties.Property("14-bit control-change accepts 0-16383", prop.ForAll(
		func(param, value int) bool {
			ev, err := seq.NewControlChange14(seq.WithParam(param), seq.WithValue(value))
			if !in(param, 127) || !in(value, 16383) {
				return ev == nil && errors.Is(err, seq.ErrOutOfRange)
			}
			return err == nil && int(ev.Param()) == param && int(ev.Value()) == value
		},
		gen.IntRange(-5, 140),
		gen.IntRange(-5, 16400),
	))

	properties.Property("program-change keeps inputs or rejects out of range", prop.ForAll(
		func(ch, value int) bool {
			ev, err := seq.NewProgramChange(seq.WithChannel(ch), seq.WithValue(value))
			if !in(ch, 127) || !in(value, 127) {
				return ev == nil && errors.Is(err, seq.ErrOutOfRange)
			}
			return err == nil && int(ev.Channel()) == ch && int(ev.Value()) == value
		},
		gen.IntRange(-5, 140),
		gen.IntRange(-5, 140),
	))

	properties.TestingRun(t)
}

func TestTimeOptionsNormalizeFlags(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("last time option decides the unit flag", prop.ForAll(
		func(flags int, tick, sec uint32) bool {
			tickFirst, err := seq.NewEvent(seq.EventEcho,
				seq.WithFlags(flags), seq.WithTick(int(tick)), seq.WithSeconds(int(sec)))
			if err != nil || !tickFirst.Flags.IsRealTime() {
				return false
			}
			s, _ := tickFirst.RealTime()
			if s != sec {
				return false
			}

			realFirst, err := seq.NewEvent(seq.EventEcho,
				seq.WithFlags(flags), seq.WithNanoseconds(5), seq.WithTick(int(tick)))
			if err != nil || realFirst.Flags.IsRealTime() {
				return false
			}
			_, nsec := realFirst.RealTime()
			return realFirst.Tick() == tick && nsec == 0 &&
				realFirst.Flags&^seq.TimeStampMask == seq.Flags(flags)&^seq.TimeStampMask
		},
		gen.IntRange(0, 255),
		gen.UInt32(),
		gen.UInt32(),
	))

	properties.Property("flags set after a time option keep the time unit", prop.ForAll(
		func(flags int, tick, sec uint32) bool {
			ticked, err := seq.NewNoteOn(seq.WithChannel(1), seq.WithNote(60), seq.WithVelocity(100),
				seq.WithTick(int(tick)), seq.WithFlags(flags))
			if err != nil || ticked.Flags.IsRealTime() || ticked.Tick() != tick {
				return false
			}
			if ticked.Flags&^seq.TimeStampMask != seq.Flags(flags)&^seq.TimeStampMask {
				return false
			}

			timed, err := seq.NewEvent(seq.EventEcho, seq.WithSeconds(int(sec)), seq.WithFlags(flags))
			if err != nil || !timed.Flags.IsRealTime() {
				return false
			}
			s, _ := timed.RealTime()
			return s == sec
		},
		gen.IntRange(0, 255),
		gen.UInt32(),
		gen.UInt32(),
	))

	properties.TestingRun(t)
}

func TestTrailingRealTimeFlagKeepsTick(t *testing.T) {
	ev, err := seq.NewNoteOn(seq.WithChannel(1), seq.WithNote(60), seq.WithVelocity(100),
		seq.WithTick(480), seq.WithFlags(int(seq.TimeStampReal|seq.TimeModeRel)))
	require.NoError(t, err)
	assert.False(t, ev.Flags.IsRealTime())
	assert.True(t, ev.Flags.IsRelative())
	assert.Equal(t, uint32(480), ev.Tick())

	// flags alone still choose the unit
	ev2, err := seq.NewEvent(seq.EventEcho, seq.WithFlags(int(seq.TimeStampReal)))
	require.NoError(t, err)
	assert.True(t, ev2.Flags.IsRealTime())
}

func TestSettersValidate(t *testing.T) {
	cc, err := seq.NewControlChange(seq.WithChannel(2), seq.WithParam(7), seq.WithValue(64))
	require.NoError(t, err)

	require.ErrorIs(t, cc.SetValue(128), seq.ErrOutOfRange)
	assert.Equal(t, int32(64), cc.Value())

	require.NoError(t, cc.SetValue(127))
	assert.Equal(t, int32(127), cc.Value())
	assert.Equal(t, uint32(7), cc.Param())
	assert.Equal(t, uint8(2), cc.Channel())

	cc14, err := seq.NewControlChange14()
	require.NoError(t, err)
	require.NoError(t, cc14.SetValue(16383))
	require.ErrorIs(t, cc14.SetValue(16384), seq.ErrOutOfRange)

	note, err := seq.NewNote()
	require.NoError(t, err)
	require.ErrorIs(t, note.SetVelocity(256), seq.ErrOutOfRange)
	require.NoError(t, note.SetDuration(1<<32-1))
	assert.Equal(t, uint32(1<<32-1), note.Duration())
}

func TestGenericEventRetag(t *testing.T) {
	ev, err := seq.NewEvent(seq.EventNone, seq.WithTag(9))
	require.NoError(t, err)

	ev.SetType(seq.EventPortStart)
	ev.SetAddrData(seq.Addr{Client: 20, Port: 1})
	assert.Equal(t, seq.EventPortStart, ev.Type())
	assert.Equal(t, seq.Addr{Client: 20, Port: 1}, ev.AddrData())
	assert.Equal(t, uint8(9), ev.Tag)
}
