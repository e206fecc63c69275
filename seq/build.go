package seq

import (
	"math"
	"strings"
)

type field uint16

const (
	fieldChannel field = 1 << iota
	fieldNote
	fieldVelocity
	fieldOffVelocity
	fieldDuration
	fieldParam
	fieldValue
)

var fieldNames = []string{"channel", "note", "velocity", "off_velocity", "duration", "param", "value"}

func (f field) String() string {
	var names []string
	for i, name := range fieldNames {
		if f&(1<<i) != 0 {
			names = append(names, "'"+name+"'")
		}
	}
	return strings.Join(names, ", ")
}

// draft is an event under construction. Nothing escapes until every
// option and check has passed.
type draft struct {
	rec Record
	set field

	// stamp is the unit of the last time option, if any. It wins over
	// WithFlags whatever the option order.
	stamp    Flags
	stampSet bool

	channel, note, velocity, offVelocity int
	duration, param, value               int
}

// Option sets one field of an event being built.
type Option func(*draft) error

func commonByte(name string, v int, apply func(*Record)) Option {
	return func(d *draft) error {
		if err := byteField(name, v); err != nil {
			return err
		}
		apply(&d.rec)
		return nil
	}
}

func payloadOption(f field, name string, v int, check func(string, int) error, dst func(*draft) *int) Option {
	return func(d *draft) error {
		if err := check(name, v); err != nil {
			return err
		}
		*dst(d) = v
		d.set |= f
		return nil
	}
}

// WithFlags replaces the whole flags byte.
func WithFlags(v int) Option {
	return commonByte("flags", v, func(r *Record) { r.Flags = Flags(v) })
}

// WithTag sets the tag byte, 0-255.
func WithTag(v int) Option {
	return commonByte("tag", v, func(r *Record) { r.Tag = uint8(v) })
}

// WithQueue schedules the event on queue v instead of direct delivery.
func WithQueue(v int) Option {
	return commonByte("queue", v, func(r *Record) { r.Queue = uint8(v) })
}

// WithTick sets a tick timestamp.
func WithTick(v int) Option {
	return func(d *draft) error {
		if err := uint32Field("tick", v); err != nil {
			return err
		}
		d.rec.SetTick(uint32(v))
		d.stamp, d.stampSet = TimeStampTick, true
		return nil
	}
}

// WithSeconds sets the seconds of a real-time timestamp.
func WithSeconds(v int) Option {
	return func(d *draft) error {
		if err := uint32Field("tv_sec", v); err != nil {
			return err
		}
		d.rec.time[0] = uint32(v)
		d.stamp, d.stampSet = TimeStampReal, true
		return nil
	}
}

// WithNanoseconds sets the nanoseconds of a real-time timestamp.
func WithNanoseconds(v int) Option {
	return func(d *draft) error {
		if err := uint32Field("tv_nsec", v); err != nil {
			return err
		}
		d.rec.time[1] = uint32(v)
		d.stamp, d.stampSet = TimeStampReal, true
		return nil
	}
}

// WithSourceClient sets the source client, 0-255.
func WithSourceClient(v int) Option {
	return commonByte("source_client", v, func(r *Record) { r.Source.Client = uint8(v) })
}

// WithSourcePort sets the source port, 0-255.
func WithSourcePort(v int) Option {
	return commonByte("source_port", v, func(r *Record) { r.Source.Port = uint8(v) })
}

// WithDestClient sets the destination client, 0-255.
func WithDestClient(v int) Option {
	return commonByte("dest_client", v, func(r *Record) { r.Dest.Client = uint8(v) })
}

// WithDestPort sets the destination port, 0-255.
func WithDestPort(v int) Option {
	return commonByte("dest_port", v, func(r *Record) { r.Dest.Port = uint8(v) })
}

// WithChannel sets the MIDI channel.
func WithChannel(v int) Option {
	return payloadOption(fieldChannel, "channel", v, byteField, func(d *draft) *int { return &d.channel })
}

// WithNote sets the note number, 0-255.
func WithNote(v int) Option {
	return payloadOption(fieldNote, "note", v, byteField, func(d *draft) *int { return &d.note })
}

// WithVelocity sets the note-on velocity, 0-255.
func WithVelocity(v int) Option {
	return payloadOption(fieldVelocity, "velocity", v, byteField, func(d *draft) *int { return &d.velocity })
}

// WithOffVelocity sets the release velocity of a note.
func WithOffVelocity(v int) Option {
	return payloadOption(fieldOffVelocity, "off_velocity", v, byteField, func(d *draft) *int { return &d.offVelocity })
}

// WithDuration sets a note's length in queue time units.
func WithDuration(v int) Option {
	return payloadOption(fieldDuration, "duration", v, uint32Field, func(d *draft) *int { return &d.duration })
}

// WithParam sets the controller number.
func WithParam(v int) Option {
	return payloadOption(fieldParam, "param", v, uint32Field, func(d *draft) *int { return &d.param })
}

// WithValue sets the controller or program value. Each variant checks its own range.
func WithValue(v int) Option {
	return payloadOption(fieldValue, "value", v, int32Field, func(d *draft) *int { return &d.value })
}

func int32Field(name string, v int) error {
	return checkRange(name, int64(v), math.MinInt32, math.MaxInt32)
}

// variant describes one constructor: its type tag, which payload fields
// it takes and how they land in the record.
type variant struct {
	name     string
	typ      EventType
	accepts  field
	requires field
	payload  func(*draft) error
}

const noteFields = fieldChannel | fieldNote | fieldVelocity

var (
	noteVariant = variant{
		name:    "note",
		typ:     EventNote,
		accepts: noteFields | fieldOffVelocity | fieldDuration,
		payload: writeNote,
	}
	noteOnVariant = variant{
		name:     "note-on",
		typ:      EventNoteOn,
		accepts:  noteFields,
		requires: noteFields,
		payload:  writeNote,
	}
	noteOffVariant = variant{
		name:     "note-off",
		typ:      EventNoteOff,
		accepts:  noteFields,
		requires: fieldChannel | fieldNote,
		payload:  writeNote,
	}
	controlChangeVariant = variant{
		name:    "control-change",
		typ:     EventController,
		accepts: fieldChannel | fieldParam | fieldValue,
		payload: writeControl(midiField),
	}
	controlChange14Variant = variant{
		name:    "14-bit control-change",
		typ:     EventControl14,
		accepts: fieldChannel | fieldParam | fieldValue,
		payload: writeControl(value14Field),
	}
	programChangeVariant = variant{
		name:    "program-change",
		typ:     EventPgmChange,
		accepts: fieldChannel | fieldValue,
		payload: writeControl(midiField),
	}
)

func writeNote(d *draft) error {
	d.rec.setNoteData(NoteData{
		Channel:     uint8(d.channel),
		Note:        uint8(d.note),
		Velocity:    uint8(d.velocity),
		OffVelocity: uint8(d.offVelocity),
		Duration:    uint32(d.duration),
	})
	return nil
}

func writeControl(checkValue func(string, int) error) func(*draft) error {
	return func(d *draft) error {
		if err := midiField("channel", d.channel); err != nil {
			return err
		}
		if err := midiField("param", d.param); err != nil {
			return err
		}
		if err := checkValue("value", d.value); err != nil {
			return err
		}
		d.rec.setControlData(ControlData{
			Channel: uint8(d.channel),
			Param:   uint32(d.param),
			Value:   int32(d.value),
		})
		return nil
	}
}

func (v variant) build(opts []Option) (Record, error) {
	d := draft{rec: newRecord(v.typ)}
	for _, opt := range opts {
		if err := opt(&d); err != nil {
			return Record{}, err
		}
	}
	if d.stampSet {
		d.rec.Flags = d.rec.Flags.WithStamp(d.stamp)
	}
	if extra := d.set &^ v.accepts; extra != 0 {
		return Record{}, usagef("%s event does not take %s", v.name, extra)
	}
	if missing := v.requires &^ d.set; missing != 0 {
		return Record{}, usagef("%s event requires %s", v.name, missing)
	}
	if v.payload != nil {
		if err := v.payload(&d); err != nil {
			return Record{}, err
		}
	}
	return d.rec, nil
}

// NewEvent builds a generic event of type t. Payload options are not
// accepted; use SetPayload on the result.
func NewEvent(t EventType, opts ...Option) (*GenericEvent, error) {
	rec, err := variant{name: "generic", typ: t}.build(opts)
	if err != nil {
		return nil, err
	}
	return &GenericEvent{Record: rec}, nil
}

// NewNote builds a note with duration, to be scheduled on a queue.
func NewNote(opts ...Option) (*NoteEvent, error) {
	rec, err := noteVariant.build(opts)
	if err != nil {
		return nil, err
	}
	return &NoteEvent{Record: rec}, nil
}

// NewNoteOn builds a note-on. Channel, note and velocity are required.
func NewNoteOn(opts ...Option) (*NoteOnEvent, error) {
	rec, err := noteOnVariant.build(opts)
	if err != nil {
		return nil, err
	}
	return &NoteOnEvent{Record: rec}, nil
}

// NewNoteOff builds a note-off. Channel and note are required.
func NewNoteOff(opts ...Option) (*NoteOffEvent, error) {
	rec, err := noteOffVariant.build(opts)
	if err != nil {
		return nil, err
	}
	return &NoteOffEvent{Record: rec}, nil
}

// NewControlChange builds a 7-bit controller change. Channel, param and
// value must each be 0-127.
func NewControlChange(opts ...Option) (*ControlChangeEvent, error) {
	rec, err := controlChangeVariant.build(opts)
	if err != nil {
		return nil, err
	}
	return &ControlChangeEvent{Record: rec}, nil
}

// NewControlChange14 builds a 14-bit controller change. Value may be
// 0-16383.
func NewControlChange14(opts ...Option) (*ControlChange14Event, error) {
	rec, err := controlChange14Variant.build(opts)
	if err != nil {
		return nil, err
	}
	return &ControlChange14Event{Record: rec}, nil
}

// NewProgramChange builds a program change. Channel and value must be
// 0-127.
func NewProgramChange(opts ...Option) (*ProgramChangeEvent, error) {
	rec, err := programChangeVariant.build(opts)
	if err != nil {
		return nil, err
	}
	return &ProgramChangeEvent{Record: rec}, nil
}
