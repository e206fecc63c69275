package midi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"golang.org/x/sys/unix"

	"go-alsaseq/debug"
	"go-alsaseq/seq"
)

const (
	inputLimit  = 512       // records held before input overflows
	outputLimit = 16 * 1024 // bytes buffered before an automatic drain
)

var systemAnnounce = seq.Addr{Client: seq.ClientSystem, Port: seq.PortSystemAnnounce}

type localPort struct {
	name string
	caps seq.PortCap
	typ  seq.PortType

	to   map[seq.Addr]bool   // subscribers of this port
	from map[seq.Addr]func() // sources feeding this port, with their stop funcs
}

// conn is one client of a Driver. Backend listeners call into it from
// their own goroutines, so all state sits behind mu.
type conn struct {
	drv     *Driver
	id      int
	streams seq.Streams
	mode    seq.OpenMode
	ready   readyFD

	mu       sync.Mutex
	wake     *sync.Cond
	name     string
	closed   bool
	ports    map[int]*localPort
	nextPort int
	senders  map[int]func(gomidi.Message) error // by hardware port
	out      []seq.Record
	in       []seq.Record
	overflow bool
}

func newConn(d *Driver, id int, streams seq.Streams, mode seq.OpenMode, fd readyFD) *conn {
	c := &conn{
		drv:     d,
		id:      id,
		streams: streams,
		mode:    mode,
		ready:   fd,
		ports:   make(map[int]*localPort),
		senders: make(map[int]func(gomidi.Message) error),
	}
	c.wake = sync.NewCond(&c.mu)
	return c
}

func (c *conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return unix.EBADF
	}
	c.closed = true
	var stops []func()
	for _, p := range c.ports {
		for _, stop := range p.from {
			if stop != nil {
				stops = append(stops, stop)
			}
		}
	}
	c.ports = nil
	c.in, c.out = nil, nil
	c.wake.Broadcast()
	c.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
	c.drv.remove(c)
	debug.Log("bridge", "client %d closed", c.id)
	return c.ready.close()
}

func (c *conn) SetClientName(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
	return nil
}

func (c *conn) ClientID() int { return c.id }

func (c *conn) clientName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

func (c *conn) CreateSimplePort(name string, caps seq.PortCap, typ seq.PortType) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, unix.EBADF
	}
	if c.nextPort >= maxPorts {
		return 0, unix.ENOMEM
	}
	port := c.nextPort
	c.nextPort++
	c.ports[port] = &localPort{
		name: name,
		caps: caps,
		typ:  typ,
		to:   make(map[seq.Addr]bool),
		from: make(map[seq.Addr]func()),
	}
	return port, nil
}

func (c *conn) DeleteSimplePort(port int) error {
	c.mu.Lock()
	p, ok := c.ports[port]
	if !ok {
		c.mu.Unlock()
		return unix.ENOENT
	}
	delete(c.ports, port)
	c.mu.Unlock()

	for _, stop := range p.from {
		if stop != nil {
			stop()
		}
	}
	gone := seq.Addr{Client: uint8(c.id), Port: uint8(port)}
	for _, o := range c.others() {
		o.forget(func(a seq.Addr) bool { return a == gone })
	}
	return nil
}

// Queues are not implemented by the bridge; everything is delivered
// directly.

func (c *conn) AllocQueue() (int, error)             { return 0, unix.ENOTSUP }
func (c *conn) AllocNamedQueue(string) (int, error)  { return 0, unix.ENOTSUP }
func (c *conn) FreeQueue(int) error                  { return unix.ENOTSUP }
func (c *conn) SetQueueTempo(int, uint32, int) error { return unix.ENOTSUP }

func (c *conn) ControlQueue(int, seq.EventType, int, *seq.Record) error {
	return unix.ENOTSUP
}

// EventOutput buffers one record. A full buffer is drained first.
func (c *conn) EventOutput(ev *seq.Record) (int, error) {
	if c.streams&seq.OpenOutput == 0 {
		return 0, unix.EBADF
	}
	if ev.Queue != seq.QueueDirect {
		return 0, unix.ENOTSUP
	}

	c.mu.Lock()
	full := (len(c.out)+1)*seq.RecordSize > outputLimit
	c.mu.Unlock()
	if full {
		if err := c.DrainOutput(); err != nil {
			return 0, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, unix.EBADF
	}
	c.out = append(c.out, *ev)
	return len(c.out) * seq.RecordSize, nil
}

// DrainOutput delivers every buffered record. On failure the failed
// record and those after it stay buffered.
func (c *conn) DrainOutput() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return unix.EBADF
	}
	pending := c.out
	c.out = nil
	c.mu.Unlock()

	for i, rec := range pending {
		if err := c.deliver(rec); err != nil {
			c.mu.Lock()
			c.out = append(pending[i:len(pending):len(pending)], c.out...)
			c.mu.Unlock()
			return err
		}
	}
	return nil
}

func (c *conn) DropOutput() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out = nil
	return nil
}

// deliver routes one record to its destination, or to every subscriber
// of its source port. A subscriber that fails misses the record; only a
// failed direct destination leaves it for the next drain.
func (c *conn) deliver(rec seq.Record) error {
	rec.Source.Client = uint8(c.id)

	switch rec.Dest.Client {
	case seq.AddressSubscribers:
	case seq.AddressBroadcast:
		return unix.ENOTSUP
	default:
		if err := c.deliverTo(rec.Dest, rec); err != nil {
			return fmt.Errorf("deliver to %s: %w", rec.Dest, err)
		}
		return nil
	}

	var dests []seq.Addr
	c.mu.Lock()
	p, ok := c.ports[int(rec.Source.Port)]
	if ok {
		for a := range p.to {
			dests = append(dests, a)
		}
	}
	c.mu.Unlock()
	if !ok {
		return unix.ENOENT
	}

	for _, a := range dests {
		if err := c.deliverTo(a, rec); err != nil {
			debug.Log("bridge", "client %d: %s to subscriber %s dropped: %v", c.id, rec.Type(), a, err)
		}
	}
	return nil
}

func (c *conn) deliverTo(a seq.Addr, rec seq.Record) error {
	if int(a.Client) == HardwareClient {
		send, err := c.sender(int(a.Port))
		if err != nil {
			return err
		}
		msgs, err := Messages(&seq.GenericEvent{Record: rec})
		if errors.Is(err, ErrNotConvertible) {
			debug.LogEvery(100, "bridge", "client %d: %v", c.id, err)
			return nil
		}
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			if err := send(msg); err != nil {
				return err
			}
		}
		return nil
	}

	target := c.drv.client(int(a.Client))
	if target == nil {
		return unix.ENXIO
	}
	rec.Dest = a
	return target.push(rec)
}

// sender returns the cached output function for a hardware port.
func (c *conn) sender(n int) (func(gomidi.Message) error, error) {
	c.mu.Lock()
	send, ok := c.senders[n]
	c.mu.Unlock()
	if ok {
		return send, nil
	}

	hw, ok := c.drv.hardware(n)
	if !ok || !hw.writable() {
		return nil, unix.ENXIO
	}
	send, err := c.drv.backend().OpenOut(hw.out)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.senders[n] = send
	c.mu.Unlock()
	return send, nil
}

// push queues an input record. It fails with ENOENT when the destination
// port does not exist; a full queue drops the record and marks overflow.
func (c *conn) push(rec seq.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return unix.ENXIO
	}
	if _, ok := c.ports[int(rec.Dest.Port)]; !ok {
		return unix.ENOENT
	}
	if len(c.in) >= inputLimit {
		c.overflow = true
		return nil
	}
	c.in = append(c.in, rec)
	if len(c.in) == 1 {
		c.ready.set()
		c.wake.Signal()
	}
	return nil
}

func (c *conn) EventInput() (seq.Record, error) {
	if c.streams&seq.OpenInput == 0 {
		return seq.Record{}, unix.EBADF
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.in) == 0 && !c.overflow {
		if c.closed {
			return seq.Record{}, unix.EBADF
		}
		if c.mode == seq.Nonblock {
			c.ready.clear()
			return seq.Record{}, unix.EAGAIN
		}
		c.wake.Wait()
	}

	if c.overflow {
		c.overflow = false
		return seq.Record{}, unix.ENOSPC
	}
	rec := c.in[0]
	c.in = c.in[1:]
	if len(c.in) == 0 {
		c.ready.clear()
	}
	return rec, nil
}

func (c *conn) EventInputPending(bool) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.in), nil
}

func (c *conn) PollDescriptorsCount(events int) int {
	if events&(seq.PollIn|seq.PollOut) == 0 {
		return 0
	}
	return 1
}

func (c *conn) PollDescriptors(int) ([]int, error) {
	return []int{int(c.ready)}, nil
}

func (c *conn) ConnectTo(port, client, destPort int) error {
	dest := seq.Addr{Client: uint8(client), Port: uint8(destPort)}
	switch {
	case client == HardwareClient:
		hw, ok := c.drv.hardware(destPort)
		if !ok || !hw.writable() {
			return unix.ENXIO
		}
	default:
		target := c.drv.client(client)
		if target == nil || !target.hasPort(destPort) {
			return unix.ENXIO
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.ports[port]
	if !ok {
		return unix.ENOENT
	}
	if p.to[dest] {
		return unix.EBUSY
	}
	p.to[dest] = true
	debug.Log("bridge", "%d:%d -> %s", c.id, port, dest)
	return nil
}

func (c *conn) DisconnectTo(port, client, destPort int) error {
	dest := seq.Addr{Client: uint8(client), Port: uint8(destPort)}
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.ports[port]
	if !ok || !p.to[dest] {
		return unix.ENOENT
	}
	delete(p.to, dest)
	return nil
}

func (c *conn) ConnectFrom(port, client, srcPort int) error {
	src := seq.Addr{Client: uint8(client), Port: uint8(srcPort)}
	local := seq.Addr{Client: uint8(c.id), Port: uint8(port)}

	c.mu.Lock()
	p, ok := c.ports[port]
	busy := ok && hasKey(p.from, src)
	c.mu.Unlock()
	switch {
	case !ok:
		return unix.ENOENT
	case busy:
		return unix.EBUSY
	}

	var stop func()
	switch {
	case src == systemAnnounce:
	case client == HardwareClient:
		hw, ok := c.drv.hardware(srcPort)
		if !ok || !hw.readable() {
			return unix.ENXIO
		}
		var err error
		stop, err = c.drv.backend().Listen(hw.in, func(msg gomidi.Message) {
			c.receive(msg, src, local)
		})
		if err != nil {
			return err
		}
	default:
		source := c.drv.client(client)
		if source == nil {
			return unix.ENXIO
		}
		if err := source.ConnectTo(srcPort, c.id, port); err != nil {
			return err
		}
		stop = func() { source.DisconnectTo(srcPort, c.id, port) }
	}

	c.mu.Lock()
	p, ok = c.ports[port]
	if ok {
		p.from[src] = stop
	}
	c.mu.Unlock()
	if !ok {
		// port deleted meanwhile
		if stop != nil {
			stop()
		}
		return unix.ENOENT
	}
	debug.Log("bridge", "%s -> %d:%d", src, c.id, port)
	return nil
}

func (c *conn) DisconnectFrom(port, client, srcPort int) error {
	src := seq.Addr{Client: uint8(client), Port: uint8(srcPort)}
	c.mu.Lock()
	p, ok := c.ports[port]
	if !ok || !hasKey(p.from, src) {
		c.mu.Unlock()
		return unix.ENOENT
	}
	stop := p.from[src]
	delete(p.from, src)
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
	return nil
}

func hasKey[K comparable, V any](m map[K]V, k K) bool {
	_, ok := m[k]
	return ok
}

// receive turns a hardware message into an input record.
func (c *conn) receive(msg gomidi.Message, src, dest seq.Addr) {
	ev, err := FromMessage(msg)
	if err != nil {
		debug.LogEvery(100, "bridge", "client %d: drop %v", c.id, err)
		return
	}
	rec := seq.RecordOf(ev)
	rec.Source = src
	rec.Dest = dest
	c.push(rec)
}

// announce delivers a system announcement to every port subscribed to
// the announce port.
func (c *conn) announce(t seq.EventType, hwPortNum int) {
	ev, err := seq.NewEvent(t, seq.WithSourceClient(int(seq.ClientSystem)), seq.WithSourcePort(int(seq.PortSystemAnnounce)))
	if err != nil {
		return
	}
	ev.SetAddrData(seq.Addr{Client: HardwareClient, Port: uint8(hwPortNum)})

	c.mu.Lock()
	var ports []int
	for n, p := range c.ports {
		if hasKey(p.from, systemAnnounce) {
			ports = append(ports, n)
		}
	}
	c.mu.Unlock()

	for _, n := range ports {
		rec := seq.RecordOf(ev)
		rec.Dest = seq.Addr{Client: uint8(c.id), Port: uint8(n)}
		c.push(rec)
	}
}

// hardwareGone drops every subscription involving a vanished hardware
// port.
func (c *conn) hardwareGone(n int) {
	gone := seq.Addr{Client: HardwareClient, Port: uint8(n)}
	c.forget(func(a seq.Addr) bool { return a == gone })
	c.mu.Lock()
	delete(c.senders, n)
	c.mu.Unlock()
}

func (c *conn) forgetClient(id int) {
	c.forget(func(a seq.Addr) bool { return int(a.Client) == id })
}

// forget removes subscriptions whose remote end matches.
func (c *conn) forget(match func(seq.Addr) bool) {
	var stops []func()
	c.mu.Lock()
	for _, p := range c.ports {
		for a := range p.to {
			if match(a) {
				delete(p.to, a)
			}
		}
		for a, stop := range p.from {
			if match(a) {
				delete(p.from, a)
				if stop != nil {
					stops = append(stops, stop)
				}
			}
		}
	}
	c.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
}

func (c *conn) hasPort(port int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.ports[port]
	return ok
}

func (c *conn) others() []*conn {
	c.drv.mu.Lock()
	defer c.drv.mu.Unlock()
	var list []*conn
	for _, o := range c.drv.clientList() {
		if o != c {
			list = append(list, o)
		}
	}
	return list
}

// ParseAddress accepts "client:port", a bare client number, a client
// name, "name:port", or a fragment of a hardware port name.
func (c *conn) ParseAddress(s string) (seq.Addr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return seq.Addr{}, fmt.Errorf("empty address: %w", unix.EINVAL)
	}

	client, port, hasPort := strings.Cut(s, ":")
	if hasPort {
		p, err := strconv.Atoi(port)
		if err != nil || p < 0 || p > 255 {
			// colons are common in hardware port names
			return c.findHardware(s)
		}
		if n, err := strconv.Atoi(client); err == nil {
			if n < 0 || n > 255 {
				return seq.Addr{}, fmt.Errorf("invalid address %q: %w", s, unix.EINVAL)
			}
			return seq.Addr{Client: uint8(n), Port: uint8(p)}, nil
		}
		if id, ok := c.findClient(client); ok {
			return seq.Addr{Client: uint8(id), Port: uint8(p)}, nil
		}
		return c.findHardware(s)
	}

	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 255 {
		return seq.Addr{Client: uint8(n)}, nil
	}
	if id, ok := c.findClient(s); ok {
		return seq.Addr{Client: uint8(id)}, nil
	}
	return c.findHardware(s)
}

func (c *conn) findClient(name string) (int, bool) {
	c.drv.mu.Lock()
	clients := c.drv.clientList()
	c.drv.mu.Unlock()
	for _, o := range clients {
		if strings.EqualFold(o.clientName(), name) {
			return o.id, true
		}
	}
	return 0, false
}

func (c *conn) findHardware(fragment string) (seq.Addr, error) {
	c.drv.mu.Lock()
	n, ok := c.drv.table.find(fragment)
	c.drv.mu.Unlock()
	if !ok {
		return seq.Addr{}, fmt.Errorf("invalid address %q: %w", fragment, unix.EINVAL)
	}
	return seq.Addr{Client: HardwareClient, Port: uint8(n)}, nil
}
