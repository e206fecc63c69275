// Package midi bridges sequencer events to MIDI hardware through gomidi.
package midi

import (
	"errors"
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-alsaseq/seq"
)

// ErrNotConvertible means an event has no MIDI wire form, or a message has
// no sequencer event form.
var ErrNotConvertible = errors.New("midi: not convertible")

// Messages returns the wire messages for ev. A note with duration is sent
// as its note-on; the queue that would have produced the note-off is not
// available here.
func Messages(ev seq.Event) ([]gomidi.Message, error) {
	rec := seq.RecordOf(ev)
	switch rec.Type() {
	case seq.EventNote, seq.EventNoteOn, seq.EventNoteOff, seq.EventKeyPress:
		n := rec.NoteData()
		if err := checkChannel(rec.Type(), n.Channel); err != nil {
			return nil, err
		}
		if n.Note > 127 || n.Velocity > 127 {
			return nil, fmt.Errorf("%w: %s note %d velocity %d", ErrNotConvertible, rec.Type(), n.Note, n.Velocity)
		}
		switch rec.Type() {
		case seq.EventNoteOff:
			return []gomidi.Message{gomidi.NoteOffVelocity(n.Channel, n.Note, n.Velocity)}, nil
		case seq.EventKeyPress:
			return []gomidi.Message{gomidi.PolyAfterTouch(n.Channel, n.Note, n.Velocity)}, nil
		}
		return []gomidi.Message{gomidi.NoteOn(n.Channel, n.Note, n.Velocity)}, nil

	case seq.EventController, seq.EventControl14, seq.EventPgmChange, seq.EventChanPress, seq.EventPitchbend:
		c := rec.ControlData()
		if err := checkChannel(rec.Type(), c.Channel); err != nil {
			return nil, err
		}
		return controlMessages(rec.Type(), c)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotConvertible, rec.Type())
}

func checkChannel(t seq.EventType, ch uint8) error {
	if ch > 15 {
		return fmt.Errorf("%w: %s on channel %d", ErrNotConvertible, t, ch)
	}
	return nil
}

func controlMessages(t seq.EventType, c seq.ControlData) ([]gomidi.Message, error) {
	bad := func() error {
		return fmt.Errorf("%w: %s param %d value %d", ErrNotConvertible, t, c.Param, c.Value)
	}
	switch t {
	case seq.EventController:
		if c.Param > 127 || c.Value < 0 || c.Value > 127 {
			return nil, bad()
		}
		return []gomidi.Message{gomidi.ControlChange(c.Channel, uint8(c.Param), uint8(c.Value))}, nil

	case seq.EventControl14:
		if c.Param > 127 || c.Value < 0 || c.Value > 16383 {
			return nil, bad()
		}
		// controllers 0-31 carry their LSB on 32-63
		if c.Param < 32 {
			return []gomidi.Message{
				gomidi.ControlChange(c.Channel, uint8(c.Param), uint8(c.Value>>7)),
				gomidi.ControlChange(c.Channel, uint8(c.Param)+32, uint8(c.Value&0x7f)),
			}, nil
		}
		return []gomidi.Message{gomidi.ControlChange(c.Channel, uint8(c.Param), uint8(c.Value&0x7f))}, nil

	case seq.EventPgmChange:
		if c.Value < 0 || c.Value > 127 {
			return nil, bad()
		}
		return []gomidi.Message{gomidi.ProgramChange(c.Channel, uint8(c.Value))}, nil

	case seq.EventChanPress:
		if c.Value < 0 || c.Value > 127 {
			return nil, bad()
		}
		return []gomidi.Message{gomidi.AfterTouch(c.Channel, uint8(c.Value))}, nil

	case seq.EventPitchbend:
		if c.Value < -8192 || c.Value > 8191 {
			return nil, bad()
		}
		return []gomidi.Message{gomidi.Pitchbend(c.Channel, int16(c.Value))}, nil
	}
	return nil, bad()
}

// FromMessage builds the event for one wire message. Note-on with zero
// velocity becomes a note-off. Pressure and pitch bend come back as
// generic events carrying the matching payload.
func FromMessage(msg gomidi.Message) (seq.Event, error) {
	if len(msg) == 3 && msg[0]&0xf0 == 0x90 && msg[2] == 0 {
		return event(seq.NewNoteOff(seq.WithChannel(int(msg[0]&0x0f)), seq.WithNote(int(msg[1]))))
	}

	var ch, key, vel, val uint8
	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		return event(seq.NewNoteOn(seq.WithChannel(int(ch)), seq.WithNote(int(key)), seq.WithVelocity(int(vel))))

	case msg.GetNoteOff(&ch, &key, &vel):
		return event(seq.NewNoteOff(seq.WithChannel(int(ch)), seq.WithNote(int(key)), seq.WithVelocity(int(vel))))

	case msg.GetControlChange(&ch, &key, &val):
		return event(seq.NewControlChange(seq.WithChannel(int(ch)), seq.WithParam(int(key)), seq.WithValue(int(val))))

	case msg.GetProgramChange(&ch, &val):
		return event(seq.NewProgramChange(seq.WithChannel(int(ch)), seq.WithValue(int(val))))

	case msg.GetPolyAfterTouch(&ch, &key, &val):
		return genericNote(seq.EventKeyPress, ch, key, val)

	case msg.GetAfterTouch(&ch, &val):
		return genericControl(seq.EventChanPress, ch, int32(val))
	}

	var rel int16
	var abs uint16
	if msg.GetPitchBend(&ch, &rel, &abs) {
		return genericControl(seq.EventPitchbend, ch, int32(rel))
	}
	return nil, fmt.Errorf("%w: %s", ErrNotConvertible, msg)
}

// event drops the concrete type, keeping a nil Event on error.
func event[T seq.Event](ev T, err error) (seq.Event, error) {
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func genericNote(t seq.EventType, ch, key, vel uint8) (seq.Event, error) {
	ev, err := seq.NewEvent(t)
	if err != nil {
		return nil, err
	}
	ev.SetNoteData(seq.NoteData{Channel: ch, Note: key, Velocity: vel})
	return ev, nil
}

func genericControl(t seq.EventType, ch uint8, v int32) (seq.Event, error) {
	ev, err := seq.NewEvent(t)
	if err != nil {
		return nil, err
	}
	ev.SetControlData(seq.ControlData{Channel: ch, Value: v})
	return ev, nil
}
