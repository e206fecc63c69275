package seq

import (
	"math"

	"go-alsaseq/debug"
)

// Queue defaults
const (
	DefaultTempo uint32 = 500000 // microseconds per quarter note (120 bpm)
	DefaultPPQ          = 96
)

// Tempo is a queue timing base. Zero fields mean the defaults.
type Tempo struct {
	MicrosPerQuarter uint32
	PPQ              int
}

// TempoFromBPM converts beats per minute to a Tempo with the default PPQ.
// Tempos too slow to express are clamped to the slowest one; zero,
// negative and NaN give the zero Tempo.
func TempoFromBPM(bpm float64) Tempo {
	if !(bpm > 0) {
		return Tempo{}
	}
	us := math.Round(60e6 / bpm)
	if us > math.MaxUint32 {
		us = math.MaxUint32
	}
	return Tempo{MicrosPerQuarter: uint32(max(us, 1))}
}

type clientConfig struct {
	streams   Streams
	mode      OpenMode
	sequencer string
	standard  bool
}

// ClientOption configures Open.
type ClientOption func(*clientConfig)

// WithStreams selects input, output or both. Default is duplex.
func WithStreams(s Streams) ClientOption {
	return func(c *clientConfig) { c.streams = s }
}

// WithMode selects blocking or non-blocking I/O. Default is non-blocking.
func WithMode(m OpenMode) ClientOption {
	return func(c *clientConfig) { c.mode = m }
}

// WithSequencer names the sequencer to open. Default is "default".
func WithSequencer(name string) ClientOption {
	return func(c *clientConfig) { c.sequencer = name }
}

// WithStandardClasses fills the dispatch table with StandardClasses.
func WithStandardClasses() ClientOption {
	return func(c *clientConfig) { c.standard = true }
}

// Client is a handle on one connection to the sequencer service.
//
// A Client is not safe for concurrent use. The zero value is a closed
// client; Open makes it usable and Close releases it.
type Client struct {
	conn    Conn
	id      int
	name    string
	classes *Classes
}

// Open returns a client connected through d under the given name.
func Open(d Driver, name string, opts ...ClientOption) (*Client, error) {
	c := &Client{}
	if err := c.Open(d, name, opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// Open connects a closed client. On an open client it does nothing.
func (c *Client) Open(d Driver, name string, opts ...ClientOption) error {
	if c.conn != nil {
		return nil
	}

	cfg := clientConfig{
		streams:   OpenDuplex,
		mode:      Nonblock,
		sequencer: "default",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	conn, err := d.Open(cfg.sequencer, cfg.streams, cfg.mode)
	if err != nil {
		return serviceError("open", err)
	}
	if err := conn.SetClientName(name); err != nil {
		conn.Close()
		return serviceError("set client name", err)
	}

	c.conn = conn
	c.id = conn.ClientID()
	c.name = name
	c.classes = NewClasses()
	if cfg.standard {
		c.classes = StandardClasses()
	}

	debug.Log("seq", "open %q on %q: client %d", name, cfg.sequencer, c.id)
	return nil
}

// Close releases the connection. Closing a closed client does nothing.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	conn := c.conn
	c.conn = nil
	debug.Log("seq", "close client %d", c.id)
	return serviceError("close", conn.Close())
}

// Closed reports whether the client has no connection.
func (c *Client) Closed() bool { return c.conn == nil }

// ID returns the client id assigned by the service.
func (c *Client) ID() int { return c.id }

// Name returns the client name given to Open.
func (c *Client) Name() string { return c.name }

// Classes returns the receive dispatch table.
func (c *Client) Classes() *Classes {
	if c.classes == nil {
		c.classes = NewClasses()
	}
	return c.classes
}

func (c *Client) check() error {
	if c.conn == nil {
		return ErrClosed
	}
	return nil
}

// CreatePort creates a port and returns its id. A zero typ means a
// generic MIDI port.
func (c *Client) CreatePort(name string, caps PortCap, typ PortType) (int, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	if typ == 0 {
		typ = PortTypeMIDIGeneric
	}
	port, err := c.conn.CreateSimplePort(name, caps, typ)
	if err != nil {
		return 0, serviceError("create port", err)
	}
	debug.Log("seq", "client %d: port %d %q", c.id, port, name)
	return port, nil
}

// DeletePort removes a port created by CreatePort.
func (c *Client) DeletePort(port int) error {
	if err := c.check(); err != nil {
		return err
	}
	return serviceError("delete port", c.conn.DeleteSimplePort(port))
}

// CreateQueue allocates a queue. An empty name allocates an anonymous one.
func (c *Client) CreateQueue(name string) (int, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	var (
		queue int
		err   error
	)
	if name != "" {
		queue, err = c.conn.AllocNamedQueue(name)
	} else {
		queue, err = c.conn.AllocQueue()
	}
	if err != nil {
		return 0, serviceError("create queue", err)
	}
	return queue, nil
}

// DeleteQueue frees a queue.
func (c *Client) DeleteQueue(queue int) error {
	if err := c.check(); err != nil {
		return err
	}
	return serviceError("delete queue", c.conn.FreeQueue(queue))
}

// SetQueueTempo sets the timing base of a queue.
func (c *Client) SetQueueTempo(queue int, t Tempo) error {
	if err := c.check(); err != nil {
		return err
	}
	if t.MicrosPerQuarter == 0 {
		t.MicrosPerQuarter = DefaultTempo
	}
	if t.PPQ == 0 {
		t.PPQ = DefaultPPQ
	}
	return serviceError("set queue tempo", c.conn.SetQueueTempo(queue, t.MicrosPerQuarter, t.PPQ))
}

// StartQueue starts a queue. ev, if not nil, is sent along with the
// control signal.
func (c *Client) StartQueue(queue int, ev Event) error {
	return c.controlQueue(queue, EventStart, ev)
}

// StopQueue stops a queue.
func (c *Client) StopQueue(queue int, ev Event) error {
	return c.controlQueue(queue, EventStop, ev)
}

// ContinueQueue resumes a stopped queue.
func (c *Client) ContinueQueue(queue int, ev Event) error {
	return c.controlQueue(queue, EventContinue, ev)
}

func (c *Client) controlQueue(queue int, kind EventType, ev Event) error {
	if err := c.check(); err != nil {
		return err
	}
	var rec *Record
	if ev != nil {
		if rec = recordOf(ev); rec == nil {
			return usagef("nil event")
		}
	}
	return serviceError("control queue", c.conn.ControlQueue(queue, kind, 0, rec))
}

// ConnectTo subscribes dest to events sent from a local port.
func (c *Client) ConnectTo(port, client, destPort int) error {
	if err := c.check(); err != nil {
		return err
	}
	return serviceError("connect to", c.conn.ConnectTo(port, client, destPort))
}

// DisconnectTo undoes ConnectTo.
func (c *Client) DisconnectTo(port, client, destPort int) error {
	if err := c.check(); err != nil {
		return err
	}
	return serviceError("disconnect to", c.conn.DisconnectTo(port, client, destPort))
}

// ConnectFrom subscribes a local port to events from a remote port.
func (c *Client) ConnectFrom(port, client, srcPort int) error {
	if err := c.check(); err != nil {
		return err
	}
	return serviceError("connect from", c.conn.ConnectFrom(port, client, srcPort))
}

// DisconnectFrom undoes ConnectFrom.
func (c *Client) DisconnectFrom(port, client, srcPort int) error {
	if err := c.check(); err != nil {
		return err
	}
	return serviceError("disconnect from", c.conn.DisconnectFrom(port, client, srcPort))
}

// ParseAddress resolves "client:port" or a client name to an address.
func (c *Client) ParseAddress(s string) (Addr, error) {
	if err := c.check(); err != nil {
		return Addr{}, err
	}
	addr, err := c.conn.ParseAddress(s)
	if err != nil {
		return Addr{}, serviceError("parse address", err)
	}
	return addr, nil
}

// PollDescriptor returns the single descriptor that signals both input
// and output readiness. The service is expected to multiplex both
// directions on one descriptor; anything else is an error.
func (c *Client) PollDescriptor() (int, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	count := c.conn.PollDescriptorsCount(PollIn | PollOut)
	if count == 0 {
		count = c.conn.PollDescriptorsCount(PollIn)
	}
	if count == 0 {
		count = c.conn.PollDescriptorsCount(PollOut)
	}
	switch {
	case count == 0:
		return 0, ErrNoDescriptor
	case count != 1:
		return 0, ErrMultipleDescriptors
	}
	fds, err := c.conn.PollDescriptors(PollIn)
	if err != nil {
		return 0, serviceError("poll descriptors", err)
	}
	if len(fds) != 1 {
		return 0, ErrNoDescriptor
	}
	return fds[0], nil
}

// DrainOutput flushes buffered output to the service.
func (c *Client) DrainOutput() error {
	if err := c.check(); err != nil {
		return err
	}
	return serviceError("drain output", c.conn.DrainOutput())
}

// DropOutput discards buffered output.
func (c *Client) DropOutput() error {
	if err := c.check(); err != nil {
		return err
	}
	return serviceError("drop output", c.conn.DropOutput())
}
