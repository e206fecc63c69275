package seq

import "fmt"

// EventType is the event type tag. It selects how the payload is read.
type EventType uint8

// Event types
const (
	EventSystem           EventType = 0
	EventResult           EventType = 1
	EventNote             EventType = 5
	EventNoteOn           EventType = 6
	EventNoteOff          EventType = 7
	EventKeyPress         EventType = 8
	EventController       EventType = 10
	EventPgmChange        EventType = 11
	EventChanPress        EventType = 12
	EventPitchbend        EventType = 13
	EventControl14        EventType = 14
	EventNonRegParam      EventType = 15
	EventRegParam         EventType = 16
	EventSongPos          EventType = 20
	EventSongSel          EventType = 21
	EventQFrame           EventType = 22
	EventTimeSign         EventType = 23
	EventKeySign          EventType = 24
	EventStart            EventType = 30
	EventContinue         EventType = 31
	EventStop             EventType = 32
	EventSetPosTick       EventType = 33
	EventSetPosTime       EventType = 34
	EventTempo            EventType = 35
	EventClock            EventType = 36
	EventTick             EventType = 37
	EventQueueSkew        EventType = 38
	EventSyncPos          EventType = 39
	EventTuneRequest      EventType = 40
	EventReset            EventType = 41
	EventSensing          EventType = 42
	EventEcho             EventType = 50
	EventOSS              EventType = 51
	EventClientStart      EventType = 60
	EventClientExit       EventType = 61
	EventClientChange     EventType = 62
	EventPortStart        EventType = 63
	EventPortExit         EventType = 64
	EventPortChange       EventType = 65
	EventPortSubscribed   EventType = 66
	EventPortUnsubscribed EventType = 67
	EventUsr0             EventType = 90
	EventUsr9             EventType = 99
	EventSysex            EventType = 130
	EventBounce           EventType = 131
	EventUsrVar0          EventType = 135
	EventUsrVar4          EventType = 139
	EventNone             EventType = 255
)

var eventTypeNames = map[EventType]string{
	EventSystem:           "SYSTEM",
	EventResult:           "RESULT",
	EventNote:             "NOTE",
	EventNoteOn:           "NOTEON",
	EventNoteOff:          "NOTEOFF",
	EventKeyPress:         "KEYPRESS",
	EventController:       "CONTROLLER",
	EventPgmChange:        "PGMCHANGE",
	EventChanPress:        "CHANPRESS",
	EventPitchbend:        "PITCHBEND",
	EventControl14:        "CONTROL14",
	EventNonRegParam:      "NONREGPARAM",
	EventRegParam:         "REGPARAM",
	EventSongPos:          "SONGPOS",
	EventSongSel:          "SONGSEL",
	EventQFrame:           "QFRAME",
	EventTimeSign:         "TIMESIGN",
	EventKeySign:          "KEYSIGN",
	EventStart:            "START",
	EventContinue:         "CONTINUE",
	EventStop:             "STOP",
	EventSetPosTick:       "SETPOS_TICK",
	EventSetPosTime:       "SETPOS_TIME",
	EventTempo:            "TEMPO",
	EventClock:            "CLOCK",
	EventTick:             "TICK",
	EventQueueSkew:        "QUEUE_SKEW",
	EventSyncPos:          "SYNC_POS",
	EventTuneRequest:      "TUNE_REQUEST",
	EventReset:            "RESET",
	EventSensing:          "SENSING",
	EventEcho:             "ECHO",
	EventOSS:              "OSS",
	EventClientStart:      "CLIENT_START",
	EventClientExit:       "CLIENT_EXIT",
	EventClientChange:     "CLIENT_CHANGE",
	EventPortStart:        "PORT_START",
	EventPortExit:         "PORT_EXIT",
	EventPortChange:       "PORT_CHANGE",
	EventPortSubscribed:   "PORT_SUBSCRIBED",
	EventPortUnsubscribed: "PORT_UNSUBSCRIBED",
	EventSysex:            "SYSEX",
	EventBounce:           "BOUNCE",
	EventNone:             "NONE",
}

func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	switch {
	case t >= EventUsr0 && t <= EventUsr9:
		return fmt.Sprintf("USR%d", t-EventUsr0)
	case t >= EventUsrVar0 && t <= EventUsrVar4:
		return fmt.Sprintf("USR_VAR%d", t-EventUsrVar0)
	}
	return fmt.Sprintf("EVENT(%d)", uint8(t))
}

// Shape identifies how a payload is laid out.
type Shape int

const (
	// ShapeAny fits every event type. Only generic classes use it.
	ShapeAny Shape = iota
	ShapeNote
	ShapeControl
	ShapeAddr
	// ShapeRaw is the shape of types this package knows nothing about.
	ShapeRaw
)

func (s Shape) String() string {
	switch s {
	case ShapeAny:
		return "any"
	case ShapeNote:
		return "note"
	case ShapeControl:
		return "control"
	case ShapeAddr:
		return "addr"
	}
	return "raw"
}

// ShapeOf returns the payload shape the service uses for t.
func ShapeOf(t EventType) Shape {
	switch t {
	case EventNote, EventNoteOn, EventNoteOff, EventKeyPress:
		return ShapeNote
	case EventController, EventPgmChange, EventChanPress, EventPitchbend,
		EventControl14, EventNonRegParam, EventRegParam,
		EventSongPos, EventSongSel, EventQFrame, EventTimeSign, EventKeySign:
		return ShapeControl
	case EventClientStart, EventClientExit, EventClientChange,
		EventPortStart, EventPortExit, EventPortChange:
		return ShapeAddr
	}
	return ShapeRaw
}

// Address sentinels
const (
	ClientSystem       uint8 = 0
	PortSystemTimer    uint8 = 0
	PortSystemAnnounce uint8 = 1
	AddressUnknown     uint8 = 253
	AddressSubscribers uint8 = 254
	AddressBroadcast   uint8 = 255
)

// QueueDirect in the queue field routes an event around every queue.
const QueueDirect uint8 = 253

// Streams selects which directions a client opens.
type Streams int

const (
	OpenOutput Streams = 1
	OpenInput  Streams = 2
	OpenDuplex Streams = OpenOutput | OpenInput
)

// OpenMode fixes blocking behaviour for the life of a client.
type OpenMode int

const (
	Blocking OpenMode = 0
	Nonblock OpenMode = 1
)

// PortCap is a set of port capability bits.
type PortCap uint32

const (
	PortCapRead      PortCap = 1 << 0
	PortCapWrite     PortCap = 1 << 1
	PortCapSyncRead  PortCap = 1 << 2
	PortCapSyncWrite PortCap = 1 << 3
	PortCapDuplex    PortCap = 1 << 4
	PortCapSubsRead  PortCap = 1 << 5
	PortCapSubsWrite PortCap = 1 << 6
	PortCapNoExport  PortCap = 1 << 7
)

// PortType is a set of port type bits.
type PortType uint32

const (
	PortTypeSpecific     PortType = 1 << 0
	PortTypeMIDIGeneric  PortType = 1 << 1
	PortTypeMIDIGM       PortType = 1 << 2
	PortTypeMIDIGS       PortType = 1 << 3
	PortTypeMIDIXG       PortType = 1 << 4
	PortTypeMIDIMT32     PortType = 1 << 5
	PortTypeMIDIGM2      PortType = 1 << 6
	PortTypeSynth        PortType = 1 << 10
	PortTypeDirectSample PortType = 1 << 11
	PortTypeSample       PortType = 1 << 12
	PortTypeHardware     PortType = 1 << 16
	PortTypeSoftware     PortType = 1 << 17
	PortTypeSynthesizer  PortType = 1 << 18
	PortTypePort         PortType = 1 << 19
	PortTypeApplication  PortType = 1 << 20
)
