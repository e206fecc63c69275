package seq

// Poll event bits understood by Conn.PollDescriptors. They match the
// values of poll(2).
const (
	PollIn  = 0x1
	PollOut = 0x4
)

// Driver opens connections to a sequencer service.
type Driver interface {
	Open(sequencer string, streams Streams, mode OpenMode) (Conn, error)
}

// Conn is one open connection to the sequencer service. It is the whole
// surface this package needs from the service.
//
// Records passed in are only read for the duration of the call. Errors are
// the service's own; Client wraps them in ServiceError.
type Conn interface {
	Close() error
	SetClientName(name string) error
	ClientID() int

	CreateSimplePort(name string, caps PortCap, typ PortType) (int, error)
	DeleteSimplePort(port int) error

	AllocQueue() (int, error)
	AllocNamedQueue(name string) (int, error)
	FreeQueue(queue int) error
	SetQueueTempo(queue int, tempo uint32, ppq int) error
	ControlQueue(queue int, kind EventType, value int, ev *Record) error

	// EventOutput submits one event and returns the size in bytes of the
	// output the service holds for this client afterwards.
	EventOutput(ev *Record) (int, error)
	DrainOutput() error
	DropOutput() error

	ConnectTo(port, client, destPort int) error
	DisconnectTo(port, client, destPort int) error
	ConnectFrom(port, client, srcPort int) error
	DisconnectFrom(port, client, srcPort int) error

	ParseAddress(s string) (Addr, error)

	PollDescriptorsCount(events int) int
	PollDescriptors(events int) ([]int, error)

	// EventInput returns the next pending input record. Blocking follows
	// the mode the connection was opened with.
	EventInput() (Record, error)
	EventInputPending(fetch bool) (int, error)
}
