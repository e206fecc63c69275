package seq

import (
	"encoding/binary"
	"fmt"
)

// Record layout sizes
const (
	RecordSize  = 28
	PayloadSize = 12
)

// Flag bits. Each group is independent of the others.
const (
	TimeStampTick Flags = 0 << 0
	TimeStampReal Flags = 1 << 0
	TimeStampMask Flags = 1 << 0

	TimeModeAbs  Flags = 0 << 1
	TimeModeRel  Flags = 1 << 1
	TimeModeMask Flags = 1 << 1

	LengthFixed    Flags = 0 << 2
	LengthVariable Flags = 1 << 2
	LengthVarUsr   Flags = 2 << 2
	LengthMask     Flags = 3 << 2

	PriorityNormal Flags = 0 << 4
	PriorityHigh   Flags = 1 << 4
	PriorityMask   Flags = 1 << 4
)

// Flags packs timestamp unit, timestamp mode and priority.
type Flags uint8

func (f Flags) IsRealTime() bool     { return f&TimeStampMask == TimeStampReal }
func (f Flags) IsRelative() bool     { return f&TimeModeMask == TimeModeRel }
func (f Flags) IsHighPriority() bool { return f&PriorityMask == PriorityHigh }

// WithStamp returns f with the timestamp unit replaced.
func (f Flags) WithStamp(stamp Flags) Flags {
	return f&^TimeStampMask | stamp&TimeStampMask
}

// WithMode returns f with the timestamp mode replaced.
func (f Flags) WithMode(mode Flags) Flags {
	return f&^TimeModeMask | mode&TimeModeMask
}

// WithPriority returns f with the priority replaced.
func (f Flags) WithPriority(prio Flags) Flags {
	return f&^PriorityMask | prio&PriorityMask
}

// Addr is a (client, port) pair on the sequencer bus.
type Addr struct {
	Client uint8
	Port   uint8
}

func (a Addr) String() string {
	return fmt.Sprintf("%d:%d", a.Client, a.Port)
}

// NoteData is the payload of note events.
type NoteData struct {
	Channel     uint8
	Note        uint8
	Velocity    uint8
	OffVelocity uint8
	Duration    uint32
}

// ControlData is the payload of controller-style events.
type ControlData struct {
	Channel uint8
	Param   uint32
	Value   int32
}

// Record is the fixed-layout sequencer event record: a common header and
// a 12 byte payload read according to the type tag.
//
// The time field is a union of a tick count and a (sec, nsec) pair. The
// timestamp-unit flag says which member is meaningful.
type Record struct {
	typ    EventType
	Flags  Flags
	Tag    uint8
	Queue  uint8
	time   [2]uint32
	Source Addr
	Dest   Addr
	data   [PayloadSize]byte
}

func newRecord(t EventType) Record {
	return Record{
		typ:   t,
		Queue: QueueDirect,
		Dest:  Addr{Client: AddressSubscribers, Port: AddressUnknown},
	}
}

func (r *Record) record() *Record { return r }

// Type returns the event type tag.
func (r *Record) Type() EventType { return r.typ }

// Tick returns the tick member of the time union.
func (r *Record) Tick() uint32 { return r.time[0] }

// RealTime returns the real-time member of the time union.
func (r *Record) RealTime() (sec, nsec uint32) { return r.time[0], r.time[1] }

// SetTick stores a tick timestamp and marks the time as tick based.
func (r *Record) SetTick(tick uint32) {
	r.time = [2]uint32{tick, 0}
	r.Flags = r.Flags.WithStamp(TimeStampTick)
}

// SetRealTime stores a real-time timestamp and marks the time as real.
func (r *Record) SetRealTime(sec, nsec uint32) {
	r.time = [2]uint32{sec, nsec}
	r.Flags = r.Flags.WithStamp(TimeStampReal)
}

// NoteData reads the payload as a note.
func (r *Record) NoteData() NoteData {
	return NoteData{
		Channel:     r.data[0],
		Note:        r.data[1],
		Velocity:    r.data[2],
		OffVelocity: r.data[3],
		Duration:    binary.LittleEndian.Uint32(r.data[4:8]),
	}
}

func (r *Record) setNoteData(n NoteData) {
	r.data = [PayloadSize]byte{}
	r.data[0] = n.Channel
	r.data[1] = n.Note
	r.data[2] = n.Velocity
	r.data[3] = n.OffVelocity
	binary.LittleEndian.PutUint32(r.data[4:8], n.Duration)
}

// ControlData reads the payload as a controller value.
func (r *Record) ControlData() ControlData {
	return ControlData{
		Channel: r.data[0],
		Param:   binary.LittleEndian.Uint32(r.data[4:8]),
		Value:   int32(binary.LittleEndian.Uint32(r.data[8:12])),
	}
}

func (r *Record) setControlData(c ControlData) {
	r.data = [PayloadSize]byte{}
	r.data[0] = c.Channel
	binary.LittleEndian.PutUint32(r.data[4:8], c.Param)
	binary.LittleEndian.PutUint32(r.data[8:12], uint32(c.Value))
}

// AddrData reads the payload as an address, as carried by client and port
// announcements.
func (r *Record) AddrData() Addr {
	return Addr{Client: r.data[0], Port: r.data[1]}
}

// Payload returns the raw payload bytes.
func (r *Record) Payload() [PayloadSize]byte { return r.data }

// MarshalBinary encodes the record in the service's 28 byte layout.
func (r Record) MarshalBinary() ([]byte, error) {
	b := make([]byte, RecordSize)
	b[0] = uint8(r.typ)
	b[1] = uint8(r.Flags)
	b[2] = r.Tag
	b[3] = r.Queue
	binary.LittleEndian.PutUint32(b[4:8], r.time[0])
	binary.LittleEndian.PutUint32(b[8:12], r.time[1])
	b[12] = r.Source.Client
	b[13] = r.Source.Port
	b[14] = r.Dest.Client
	b[15] = r.Dest.Port
	copy(b[16:], r.data[:])
	return b, nil
}

// DecodeRecord decodes a record from the service's 28 byte layout.
func DecodeRecord(b []byte) (Record, error) {
	var r Record
	if len(b) != RecordSize {
		return r, fmt.Errorf("%w: record is %d bytes, want %d", ErrUsage, len(b), RecordSize)
	}
	r.typ = EventType(b[0])
	r.Flags = Flags(b[1])
	r.Tag = b[2]
	r.Queue = b[3]
	r.time[0] = binary.LittleEndian.Uint32(b[4:8])
	r.time[1] = binary.LittleEndian.Uint32(b[8:12])
	r.Source = Addr{Client: b[12], Port: b[13]}
	r.Dest = Addr{Client: b[14], Port: b[15]}
	copy(r.data[:], b[16:])
	return r, nil
}
