package midi

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"go-alsaseq/debug"
	"go-alsaseq/seq"
)

// FirstClientID is the id given to the first client a driver opens.
const FirstClientID = 128

// Driver is a seq.Driver that runs the sequencer in process and reaches
// hardware through a Backend. Clients opened on the same Driver can be
// connected to each other as well as to hardware ports.
type Driver struct {
	Backend  Backend       // defaults to Hardware
	PollRate time.Duration // hot-plug rescan interval, default 1s

	mu        sync.Mutex
	nextID    int
	clients   map[int]*conn
	table     portTable
	stopWatch context.CancelFunc
}

// NewDriver returns a driver over the registered gomidi driver.
func NewDriver() *Driver {
	return &Driver{Backend: Hardware{}, PollRate: time.Second}
}

func (d *Driver) backend() Backend {
	if d.Backend == nil {
		return Hardware{}
	}
	return d.Backend
}

func (d *Driver) pollRate() time.Duration {
	if d.PollRate <= 0 {
		return time.Second
	}
	return d.PollRate
}

// Open implements seq.Driver. The only sequencer name is "default".
func (d *Driver) Open(sequencer string, streams seq.Streams, mode seq.OpenMode) (seq.Conn, error) {
	if sequencer != "default" && sequencer != "" {
		return nil, fmt.Errorf("sequencer %q: %w", sequencer, unix.ENOENT)
	}
	if streams&seq.OpenDuplex == 0 {
		return nil, fmt.Errorf("no streams selected: %w", unix.EINVAL)
	}

	fd, err := newReadyFD()
	if err != nil {
		return nil, fmt.Errorf("eventfd: %w", err)
	}

	d.mu.Lock()
	first := len(d.clients) == 0
	if d.clients == nil {
		d.clients = make(map[int]*conn)
	}
	if d.nextID < FirstClientID {
		d.nextID = FirstClientID
	}
	if d.nextID > 255 {
		d.mu.Unlock()
		fd.close()
		return nil, fmt.Errorf("client ids exhausted: %w", unix.ENOMEM)
	}
	c := newConn(d, d.nextID, streams, mode, fd)
	d.nextID++
	d.clients[c.id] = c
	d.mu.Unlock()

	if first {
		// the first listing seeds the table without announcing
		d.rescan()
		ctx, cancel := context.WithCancel(context.Background())
		d.mu.Lock()
		d.stopWatch = cancel
		d.mu.Unlock()
		go d.watch(ctx)
	}

	debug.Log("bridge", "client %d opened", c.id)
	return c, nil
}

// Ports lists the hardware ports seen by the last scan.
func (d *Driver) Ports() []Port {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.table.list()
}

// Rescan lists the hardware now instead of waiting for the next tick.
func (d *Driver) Rescan() error {
	return d.rescan()
}

func (d *Driver) client(id int) *conn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clients[id]
}

// clientList returns the open clients in id order. d.mu must be held.
func (d *Driver) clientList() []*conn {
	list := make([]*conn, 0, len(d.clients))
	for _, c := range d.clients {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].id < list[j].id })
	return list
}

func (d *Driver) hardware(n int) (hwPort, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.table.get(n)
}

func (d *Driver) remove(c *conn) {
	d.mu.Lock()
	delete(d.clients, c.id)
	others := d.clientList()
	var stop context.CancelFunc
	if len(d.clients) == 0 {
		stop, d.stopWatch = d.stopWatch, nil
	}
	d.mu.Unlock()

	if stop != nil {
		stop()
	}
	for _, o := range others {
		o.forgetClient(c.id)
	}
}
