package seq

import "go-alsaseq/debug"

// Class decodes raw input records of one kind into an Event.
//
// New must copy the record verbatim into the event it returns; the
// receive path does no validation of its own.
type Class struct {
	Name  string
	Shape Shape
	New   func(Record) Event
}

// Built-in classes
var (
	GenericClass = Class{Name: "GenericEvent", Shape: ShapeAny, New: func(r Record) Event {
		return &GenericEvent{Record: r}
	}}
	NoteClass = Class{Name: "NoteEvent", Shape: ShapeNote, New: func(r Record) Event {
		return &NoteEvent{Record: r}
	}}
	NoteOnClass = Class{Name: "NoteOnEvent", Shape: ShapeNote, New: func(r Record) Event {
		return &NoteOnEvent{Record: r}
	}}
	NoteOffClass = Class{Name: "NoteOffEvent", Shape: ShapeNote, New: func(r Record) Event {
		return &NoteOffEvent{Record: r}
	}}
	ControlChangeClass = Class{Name: "ControlChangeEvent", Shape: ShapeControl, New: func(r Record) Event {
		return &ControlChangeEvent{Record: r}
	}}
	ControlChange14Class = Class{Name: "ControlChange14Event", Shape: ShapeControl, New: func(r Record) Event {
		return &ControlChange14Event{Record: r}
	}}
	ProgramChangeClass = Class{Name: "ProgramChangeEvent", Shape: ShapeControl, New: func(r Record) Event {
		return &ProgramChangeEvent{Record: r}
	}}
)

// fits reports whether c can decode records of type t. Types with an
// unknown payload accept any class; the caller owns that choice.
func (c Class) fits(t EventType) bool {
	if c.Shape == ShapeAny {
		return true
	}
	native := ShapeOf(t)
	return native == ShapeRaw || native == c.Shape
}

// Classes maps event types to decode classes, with an optional default
// for types that have no entry.
//
// Classes is read by Client.Receive and must not be changed while a
// receive is in progress.
type Classes struct {
	byType map[EventType]Class
	def    *Class
}

// NewClasses returns an empty table.
func NewClasses() *Classes {
	return &Classes{byType: make(map[EventType]Class)}
}

// StandardClasses returns a table with every built-in variant registered
// and GenericClass as the default.
func StandardClasses() *Classes {
	cs := NewClasses()
	cs.def = &GenericClass
	cs.byType[EventNote] = NoteClass
	cs.byType[EventNoteOn] = NoteOnClass
	cs.byType[EventNoteOff] = NoteOffClass
	cs.byType[EventController] = ControlChangeClass
	cs.byType[EventControl14] = ControlChange14Class
	cs.byType[EventPgmChange] = ProgramChangeClass
	return cs
}

func validate(t EventType, c Class) error {
	if c.New == nil {
		return usagef("event class %q has no constructor", c.Name)
	}
	if !c.fits(t) {
		return errIncompatible(c, t)
	}
	probe := newRecord(t)
	probe.Tag = 0x5a
	probe.SetRealTime(1, 2)
	probe.data = [PayloadSize]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	rec := recordOf(c.New(probe))
	if rec == nil || *rec != probe {
		return errIncompatible(c, t)
	}
	return nil
}

func errIncompatible(c Class, t EventType) error {
	return &classError{class: c.Name, shape: c.Shape, typ: t}
}

type classError struct {
	class string
	shape Shape
	typ   EventType
}

func (e *classError) Error() string {
	return "seq: event class " + e.class + " (" + e.shape.String() + ") cannot decode " + e.typ.String()
}

func (e *classError) Unwrap() error { return ErrIncompatibleClass }

// Register sets the class used for records of type t.
func (cs *Classes) Register(t EventType, c Class) error {
	if err := validate(t, c); err != nil {
		return err
	}
	cs.byType[t] = c
	return nil
}

// SetDefault sets the class used for types without an entry. It must be
// able to decode any type.
func (cs *Classes) SetDefault(c Class) error {
	if c.New == nil {
		return usagef("event class %q has no constructor", c.Name)
	}
	if c.Shape != ShapeAny {
		return &classError{class: c.Name, shape: c.Shape, typ: EventNone}
	}
	if err := validate(EventNone, c); err != nil {
		return err
	}
	cs.def = &c
	return nil
}

// Unregister removes the entry for t.
func (cs *Classes) Unregister(t EventType) { delete(cs.byType, t) }

// ClearDefault removes the default class.
func (cs *Classes) ClearDefault() { cs.def = nil }

// Lookup returns the class for t: its own entry, else the default, else
// GenericClass.
func (cs *Classes) Lookup(t EventType) Class {
	if c, ok := cs.byType[t]; ok {
		return c
	}
	if cs.def != nil {
		return *cs.def
	}
	return GenericClass
}

// Len returns the number of per-type entries.
func (cs *Classes) Len() int { return len(cs.byType) }

// Receive reads one input event and decodes it with the dispatch table.
// Whether it blocks depends on the mode the client was opened with.
func (c *Client) Receive() (Event, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	rec, err := c.conn.EventInput()
	if err != nil {
		return nil, serviceError("event input", err)
	}

	class := c.Classes().Lookup(rec.typ)
	if class.New == nil || !class.fits(rec.typ) {
		return nil, errIncompatible(class, rec.typ)
	}
	ev := class.New(rec)
	if recordOf(ev) == nil {
		return nil, errIncompatible(class, rec.typ)
	}
	debug.LogEvery(100, "seq", "client %d: received %s", c.id, rec.typ)
	return ev, nil
}

// Pending returns the number of input events waiting. With fetch set the
// service is asked to move its pending events into the client buffer
// first.
func (c *Client) Pending(fetch bool) (int, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	n, err := c.conn.EventInputPending(fetch)
	if err != nil {
		return 0, serviceError("event input pending", err)
	}
	return n, nil
}
