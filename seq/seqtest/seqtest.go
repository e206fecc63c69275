// Package seqtest provides a scriptable stand-in for the sequencer
// service, for tests of code built on package seq.
package seqtest

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"go-alsaseq/seq"
)

// Call is one recorded method call.
type Call struct {
	Method string
	Args   []any
}

// Driver opens Conn. Every Open returns the same Conn.
type Driver struct {
	Conn    *Conn
	OpenErr error

	Opens     int
	Sequencer string
	Streams   seq.Streams
	Mode      seq.OpenMode
}

// NewDriver returns a driver whose conn reports client id 128.
func NewDriver() *Driver {
	return &Driver{Conn: NewConn(128)}
}

func (d *Driver) Open(sequencer string, streams seq.Streams, mode seq.OpenMode) (seq.Conn, error) {
	d.Opens++
	d.Sequencer, d.Streams, d.Mode = sequencer, streams, mode
	if d.OpenErr != nil {
		return nil, d.OpenErr
	}
	return d.Conn, nil
}

// Conn records calls and answers from its scripted fields. Methods listed
// in Errors fail with the given error.
type Conn struct {
	mu sync.Mutex

	ID          int
	Name        string
	Errors      map[string]error
	Descriptors map[int][]int
	Addresses   map[string]seq.Addr

	// Input is returned by EventInput in order; when empty EventInput
	// fails with EAGAIN.
	Input []seq.Record
	// InputErrs is consumed one entry per EventInput call before Input;
	// a nil entry means read normally.
	InputErrs []error

	Calls    []Call
	Sent     []seq.Record
	SentPtrs []*seq.Record
	Buffered int
	Closes   int

	nextPort  int
	nextQueue int
}

func NewConn(id int) *Conn {
	return &Conn{
		ID:          id,
		Errors:      make(map[string]error),
		Descriptors: map[int][]int{seq.PollIn | seq.PollOut: {7}, seq.PollIn: {7}, seq.PollOut: {7}},
		Addresses:   make(map[string]seq.Addr),
	}
}

func (c *Conn) record(method string, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, Call{Method: method, Args: args})
	return c.Errors[method]
}

// CallCount returns how many calls were made, excluding those named in
// skip.
func (c *Conn) CallCount(skip ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
outer:
	for _, call := range c.Calls {
		for _, s := range skip {
			if call.Method == s {
				continue outer
			}
		}
		n++
	}
	return n
}

// LastCall returns the most recent call.
func (c *Conn) LastCall() Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Calls) == 0 {
		return Call{}
	}
	return c.Calls[len(c.Calls)-1]
}

// Push queues records for EventInput.
func (c *Conn) Push(recs ...seq.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Input = append(c.Input, recs...)
}

func (c *Conn) Close() error {
	c.mu.Lock()
	c.Closes++
	c.mu.Unlock()
	return c.record("Close")
}

func (c *Conn) SetClientName(name string) error {
	c.Name = name
	return c.record("SetClientName", name)
}

func (c *Conn) ClientID() int { return c.ID }

func (c *Conn) CreateSimplePort(name string, caps seq.PortCap, typ seq.PortType) (int, error) {
	if err := c.record("CreateSimplePort", name, caps, typ); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	port := c.nextPort
	c.nextPort++
	return port, nil
}

func (c *Conn) DeleteSimplePort(port int) error {
	return c.record("DeleteSimplePort", port)
}

func (c *Conn) AllocQueue() (int, error) {
	if err := c.record("AllocQueue"); err != nil {
		return 0, err
	}
	return c.allocQueue(), nil
}

func (c *Conn) AllocNamedQueue(name string) (int, error) {
	if err := c.record("AllocNamedQueue", name); err != nil {
		return 0, err
	}
	return c.allocQueue(), nil
}

func (c *Conn) allocQueue() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := c.nextQueue
	c.nextQueue++
	return q
}

func (c *Conn) FreeQueue(queue int) error {
	return c.record("FreeQueue", queue)
}

func (c *Conn) SetQueueTempo(queue int, tempo uint32, ppq int) error {
	return c.record("SetQueueTempo", queue, tempo, ppq)
}

func (c *Conn) ControlQueue(queue int, kind seq.EventType, value int, ev *seq.Record) error {
	var cp *seq.Record
	if ev != nil {
		r := *ev
		cp = &r
	}
	return c.record("ControlQueue", queue, kind, value, cp)
}

func (c *Conn) EventOutput(ev *seq.Record) (int, error) {
	if err := c.record("EventOutput", ev); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sent = append(c.Sent, *ev)
	c.SentPtrs = append(c.SentPtrs, ev)
	c.Buffered += seq.RecordSize
	return c.Buffered, nil
}

func (c *Conn) DrainOutput() error {
	if err := c.record("DrainOutput"); err != nil {
		return err
	}
	c.mu.Lock()
	c.Buffered = 0
	c.mu.Unlock()
	return nil
}

func (c *Conn) DropOutput() error {
	if err := c.record("DropOutput"); err != nil {
		return err
	}
	c.mu.Lock()
	c.Buffered = 0
	c.mu.Unlock()
	return nil
}

func (c *Conn) ConnectTo(port, client, destPort int) error {
	return c.record("ConnectTo", port, client, destPort)
}

func (c *Conn) DisconnectTo(port, client, destPort int) error {
	return c.record("DisconnectTo", port, client, destPort)
}

func (c *Conn) ConnectFrom(port, client, srcPort int) error {
	return c.record("ConnectFrom", port, client, srcPort)
}

func (c *Conn) DisconnectFrom(port, client, srcPort int) error {
	return c.record("DisconnectFrom", port, client, srcPort)
}

func (c *Conn) ParseAddress(s string) (seq.Addr, error) {
	if err := c.record("ParseAddress", s); err != nil {
		return seq.Addr{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	addr, ok := c.Addresses[s]
	if !ok {
		return seq.Addr{}, fmt.Errorf("invalid address %q: %w", s, unix.EINVAL)
	}
	return addr, nil
}

func (c *Conn) PollDescriptorsCount(events int) int {
	c.record("PollDescriptorsCount", events)
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Descriptors[events])
}

func (c *Conn) PollDescriptors(events int) ([]int, error) {
	if err := c.record("PollDescriptors", events); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Descriptors[events], nil
}

func (c *Conn) EventInput() (seq.Record, error) {
	if err := c.record("EventInput"); err != nil {
		return seq.Record{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.InputErrs) > 0 {
		err := c.InputErrs[0]
		c.InputErrs = c.InputErrs[1:]
		if err != nil {
			return seq.Record{}, err
		}
	}
	if len(c.Input) == 0 {
		return seq.Record{}, unix.EAGAIN
	}
	rec := c.Input[0]
	c.Input = c.Input[1:]
	return rec, nil
}

func (c *Conn) EventInputPending(fetch bool) (int, error) {
	if err := c.record("EventInputPending", fetch); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Input), nil
}
