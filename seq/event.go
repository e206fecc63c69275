// Package seq is a client for a MIDI sequencer service: typed event
// records, client/port/queue handles and the send and receive paths.
package seq

import (
	"fmt"
	"math"
	"reflect"
)

// Event is a sequencer event: one of the variants in this package, or a
// type that embeds one.
type Event interface {
	Type() EventType
	String() string
	record() *Record
}

// RecordOf returns a copy of the record underlying ev, or the zero Record
// for a nil event.
func RecordOf(ev Event) Record {
	if rec := recordOf(ev); rec != nil {
		return *rec
	}
	return Record{}
}

// recordOf returns ev's record, or nil when ev is nil or a nil pointer of
// some event type.
func recordOf(ev Event) *Record {
	if ev == nil {
		return nil
	}
	if v := reflect.ValueOf(ev); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil
	}
	return ev.record()
}

// format renders an event the same way for every variant:
// <Name details @time from src to dst>
func format(name string, r *Record, details string) string {
	prefix, val := "@#", fmt.Sprint(r.Tick())
	nonZero := r.Tick() > 0
	if r.Flags.IsRealTime() {
		sec, nsec := r.RealTime()
		prefix, val = "@", fmt.Sprintf("%.3f", float64(sec)+float64(nsec)/1e9)
		nonZero = sec > 0 || nsec > 0
	}
	if r.Flags.IsRelative() && nonZero {
		prefix += "+"
	}
	return fmt.Sprintf("<%s %s %s%s from %s to %s>", name, details, prefix, val, r.Source, r.Dest)
}

func byteField(name string, v int) error   { return checkRange(name, int64(v), 0, math.MaxUint8) }
func uint32Field(name string, v int) error { return checkRange(name, int64(v), 0, math.MaxUint32) }
func midiField(name string, v int) error   { return checkRange(name, int64(v), 0, 127) }

// GenericEvent carries any event type with an uninterpreted payload. It is
// the only variant whose type can be changed.
type GenericEvent struct {
	Record
}

// SetType re-tags the event. The payload bytes are kept as they are.
func (e *GenericEvent) SetType(t EventType) { e.typ = t }

// SetPayload replaces the raw payload.
func (e *GenericEvent) SetPayload(p [PayloadSize]byte) { e.data = p }

// SetAddrData stores an address payload, as used by announcements.
func (e *GenericEvent) SetAddrData(a Addr) {
	e.data = [PayloadSize]byte{a.Client, a.Port}
}

// SetNoteData stores a note payload without range checks.
func (e *GenericEvent) SetNoteData(n NoteData) { e.setNoteData(n) }

// SetControlData stores a controller payload without range checks.
func (e *GenericEvent) SetControlData(c ControlData) { e.setControlData(c) }

// UnmarshalBinary replaces the whole record, type tag included, with one
// decoded by DecodeRecord.
func (e *GenericEvent) UnmarshalBinary(b []byte) error {
	r, err := DecodeRecord(b)
	if err != nil {
		return err
	}
	e.Record = r
	return nil
}

func (e *GenericEvent) String() string {
	return format("GenericEvent", &e.Record, e.typ.String())
}

// NoteEvent is a note with a duration. The queue turns it into a note-on
// and a matching note-off, so it cannot be delivered directly.
type NoteEvent struct {
	Record
}

// Channel and the getters below read payload fields.
func (e *NoteEvent) Channel() uint8     { return e.NoteData().Channel }
func (e *NoteEvent) Note() uint8        { return e.NoteData().Note }
func (e *NoteEvent) Velocity() uint8    { return e.NoteData().Velocity }
func (e *NoteEvent) OffVelocity() uint8 { return e.NoteData().OffVelocity }
func (e *NoteEvent) Duration() uint32   { return e.NoteData().Duration }

// SetChannel sets the channel, 0-255.
func (e *NoteEvent) SetChannel(v int) error {
	return setNote(&e.Record, "channel", v, byteField, func(n *NoteData) { n.Channel = uint8(v) })
}

// SetNote sets the note number, 0-255.
func (e *NoteEvent) SetNote(v int) error {
	return setNote(&e.Record, "note", v, byteField, func(n *NoteData) { n.Note = uint8(v) })
}

// SetVelocity sets the velocity, 0-255.
func (e *NoteEvent) SetVelocity(v int) error {
	return setNote(&e.Record, "velocity", v, byteField, func(n *NoteData) { n.Velocity = uint8(v) })
}

// SetOffVelocity sets the release velocity, 0-255.
func (e *NoteEvent) SetOffVelocity(v int) error {
	return setNote(&e.Record, "off_velocity", v, byteField, func(n *NoteData) { n.OffVelocity = uint8(v) })
}

// SetDuration sets the duration, 0-4294967295.
func (e *NoteEvent) SetDuration(v int) error {
	return setNote(&e.Record, "duration", v, uint32Field, func(n *NoteData) { n.Duration = uint32(v) })
}

func (e *NoteEvent) String() string {
	n := e.NoteData()
	return format("NoteEvent", &e.Record,
		fmt.Sprintf("#%d velocity=%d duration=%d", n.Note, n.Velocity, n.Duration))
}

// NoteOnEvent starts a note.
type NoteOnEvent struct {
	Record
}

// Channel and the getters below read payload fields.
func (e *NoteOnEvent) Channel() uint8  { return e.NoteData().Channel }
func (e *NoteOnEvent) Note() uint8     { return e.NoteData().Note }
func (e *NoteOnEvent) Velocity() uint8 { return e.NoteData().Velocity }

// SetChannel sets the channel, 0-255.
func (e *NoteOnEvent) SetChannel(v int) error {
	return setNote(&e.Record, "channel", v, byteField, func(n *NoteData) { n.Channel = uint8(v) })
}

// SetNote sets the note number, 0-255.
func (e *NoteOnEvent) SetNote(v int) error {
	return setNote(&e.Record, "note", v, byteField, func(n *NoteData) { n.Note = uint8(v) })
}

// SetVelocity sets the velocity, 0-255.
func (e *NoteOnEvent) SetVelocity(v int) error {
	return setNote(&e.Record, "velocity", v, byteField, func(n *NoteData) { n.Velocity = uint8(v) })
}

func (e *NoteOnEvent) String() string {
	n := e.NoteData()
	return format("NoteOnEvent", &e.Record, fmt.Sprintf("#%d velocity=%d", n.Note, n.Velocity))
}

// NoteOffEvent ends a note.
type NoteOffEvent struct {
	Record
}

// Channel and the getters below read payload fields.
func (e *NoteOffEvent) Channel() uint8  { return e.NoteData().Channel }
func (e *NoteOffEvent) Note() uint8     { return e.NoteData().Note }
func (e *NoteOffEvent) Velocity() uint8 { return e.NoteData().Velocity }

// SetChannel sets the channel, 0-255.
func (e *NoteOffEvent) SetChannel(v int) error {
	return setNote(&e.Record, "channel", v, byteField, func(n *NoteData) { n.Channel = uint8(v) })
}

// SetNote sets the note number, 0-255.
func (e *NoteOffEvent) SetNote(v int) error {
	return setNote(&e.Record, "note", v, byteField, func(n *NoteData) { n.Note = uint8(v) })
}

// SetVelocity sets the velocity, 0-255.
func (e *NoteOffEvent) SetVelocity(v int) error {
	return setNote(&e.Record, "velocity", v, byteField, func(n *NoteData) { n.Velocity = uint8(v) })
}

func (e *NoteOffEvent) String() string {
	n := e.NoteData()
	return format("NoteOffEvent", &e.Record, fmt.Sprintf("#%d velocity=%d", n.Note, n.Velocity))
}

// ControlChangeEvent sets a 7-bit controller.
type ControlChangeEvent struct {
	Record
}

// Channel and the getters below read payload fields.
func (e *ControlChangeEvent) Channel() uint8 { return e.ControlData().Channel }
func (e *ControlChangeEvent) Param() uint32  { return e.ControlData().Param }
func (e *ControlChangeEvent) Value() int32   { return e.ControlData().Value }

// SetChannel sets the channel, 0-127.
func (e *ControlChangeEvent) SetChannel(v int) error {
	return setControl(&e.Record, "channel", v, midiField, func(c *ControlData) { c.Channel = uint8(v) })
}

// SetParam sets the controller number, 0-127.
func (e *ControlChangeEvent) SetParam(v int) error {
	return setControl(&e.Record, "param", v, midiField, func(c *ControlData) { c.Param = uint32(v) })
}

// SetValue sets the value, 0-127.
func (e *ControlChangeEvent) SetValue(v int) error {
	return setControl(&e.Record, "value", v, midiField, func(c *ControlData) { c.Value = int32(v) })
}

func (e *ControlChangeEvent) String() string {
	c := e.ControlData()
	return format("ControlChangeEvent", &e.Record, fmt.Sprintf("#%d value=%d", c.Param, c.Value))
}

// ControlChange14Event sets a 14-bit controller.
type ControlChange14Event struct {
	Record
}

// Channel and the getters below read payload fields.
func (e *ControlChange14Event) Channel() uint8 { return e.ControlData().Channel }
func (e *ControlChange14Event) Param() uint32  { return e.ControlData().Param }
func (e *ControlChange14Event) Value() int32   { return e.ControlData().Value }

// SetChannel sets the channel, 0-127.
func (e *ControlChange14Event) SetChannel(v int) error {
	return setControl(&e.Record, "channel", v, midiField, func(c *ControlData) { c.Channel = uint8(v) })
}

// SetParam sets the controller number, 0-127.
func (e *ControlChange14Event) SetParam(v int) error {
	return setControl(&e.Record, "param", v, midiField, func(c *ControlData) { c.Param = uint32(v) })
}

// SetValue sets the value, 0-16383.
func (e *ControlChange14Event) SetValue(v int) error {
	return setControl(&e.Record, "value", v, value14Field, func(c *ControlData) { c.Value = int32(v) })
}

func (e *ControlChange14Event) String() string {
	c := e.ControlData()
	return format("ControlChange14Event", &e.Record, fmt.Sprintf("#%d value=%d", c.Param, c.Value))
}

// ProgramChangeEvent selects a program.
type ProgramChangeEvent struct {
	Record
}

// Channel and the getters below read payload fields.
func (e *ProgramChangeEvent) Channel() uint8 { return e.ControlData().Channel }
func (e *ProgramChangeEvent) Value() int32   { return e.ControlData().Value }

// SetChannel sets the channel, 0-127.
func (e *ProgramChangeEvent) SetChannel(v int) error {
	return setControl(&e.Record, "channel", v, midiField, func(c *ControlData) { c.Channel = uint8(v) })
}

// SetValue sets the value, 0-127.
func (e *ProgramChangeEvent) SetValue(v int) error {
	return setControl(&e.Record, "value", v, midiField, func(c *ControlData) { c.Value = int32(v) })
}

func (e *ProgramChangeEvent) String() string {
	return format("ProgramChangeEvent", &e.Record, fmt.Sprintf("#%d", e.ControlData().Value))
}

func value14Field(name string, v int) error { return checkRange(name, int64(v), 0, 16383) }

// setNote and setControl leave the record untouched when v is out of
// range.
func setNote(r *Record, field string, v int, check func(string, int) error, apply func(*NoteData)) error {
	if err := check(field, v); err != nil {
		return err
	}
	n := r.NoteData()
	apply(&n)
	r.setNoteData(n)
	return nil
}

func setControl(r *Record, field string, v int, check func(string, int) error, apply func(*ControlData)) error {
	if err := check(field, v); err != nil {
		return err
	}
	c := r.ControlData()
	apply(&c)
	r.setControlData(c)
	return nil
}
