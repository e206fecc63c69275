package midi

import (
	"context"
	"strings"
	"time"

	"go-alsaseq/debug"
	"go-alsaseq/seq"
)

// HardwareClient is the client id under which hardware ports appear.
const HardwareClient = 20

// maxPorts is the size of a client's port number space.
const maxPorts = 256

// hwPort is one device port, merged from the input and output listings
// by name. in and out are backend numbers, -1 when absent.
type hwPort struct {
	name    string
	in, out int
	present bool
}

func (p *hwPort) readable() bool { return p.present && p.in >= 0 }
func (p *hwPort) writable() bool { return p.present && p.out >= 0 }

// portTable numbers hardware ports. A port keeps its number for the life
// of the driver, also across unplug and replug.
type portTable struct {
	byName map[string]int
	ports  []*hwPort
}

// update merges a fresh listing and returns the port numbers that
// appeared and disappeared since the last one.
func (t *portTable) update(ins, outs []PortInfo) (started, exited []int) {
	if t.byName == nil {
		t.byName = make(map[string]int)
	}

	seen := make(map[int]*hwPort)
	entry := func(name string) *hwPort {
		n, ok := t.byName[name]
		if !ok {
			if len(t.ports) >= maxPorts {
				debug.Log("bridge", "port table full, ignoring %q", name)
				return nil
			}
			n = len(t.ports)
			t.byName[name] = n
			t.ports = append(t.ports, &hwPort{name: name, in: -1, out: -1})
		}
		p, ok := seen[n]
		if !ok {
			p = &hwPort{name: name, in: -1, out: -1, present: true}
			seen[n] = p
		}
		return p
	}
	for _, in := range ins {
		if p := entry(in.Name); p != nil {
			p.in = in.Number
		}
	}
	for _, out := range outs {
		if p := entry(out.Name); p != nil {
			p.out = out.Number
		}
	}

	for n, old := range t.ports {
		now, ok := seen[n]
		switch {
		case ok && !old.present:
			started = append(started, n)
		case !ok && old.present:
			exited = append(exited, n)
		}
		if ok {
			t.ports[n] = now
		} else {
			old.present = false
		}
	}
	return started, exited
}

func (t *portTable) get(n int) (hwPort, bool) {
	if n < 0 || n >= len(t.ports) || !t.ports[n].present {
		return hwPort{}, false
	}
	return *t.ports[n], true
}

// find returns the first present port whose name contains fragment,
// ignoring case.
func (t *portTable) find(fragment string) (int, bool) {
	fragment = strings.ToLower(fragment)
	for n, p := range t.ports {
		if p.present && strings.Contains(strings.ToLower(p.name), fragment) {
			return n, true
		}
	}
	return 0, false
}

// list returns the present ports in number order.
func (t *portTable) list() []Port {
	var ports []Port
	for n, p := range t.ports {
		if p.present {
			ports = append(ports, Port{
				Addr:     seq.Addr{Client: HardwareClient, Port: uint8(n)},
				Name:     p.name,
				Readable: p.in >= 0,
				Writable: p.out >= 0,
			})
		}
	}
	return ports
}

// Port describes a hardware port as the sequencer addresses it.
type Port struct {
	Addr     seq.Addr
	Name     string
	Readable bool // can be connected from
	Writable bool // can be connected to
}

// watch rescans the hardware until ctx is done.
func (d *Driver) watch(ctx context.Context) {
	ticker := time.NewTicker(d.pollRate())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.rescan()
		}
	}
}

// rescan lists the hardware and announces changes to every client
// subscribed to the system announce port.
func (d *Driver) rescan() error {
	ins, outs, err := d.backend().Ports()
	if err != nil {
		debug.Log("bridge", "scan: %v", err)
		return err
	}

	d.mu.Lock()
	started, exited := d.table.update(ins, outs)
	clients := d.clientList()
	d.mu.Unlock()

	for _, n := range exited {
		debug.Log("bridge", "port %d:%d gone", HardwareClient, n)
		for _, c := range clients {
			c.hardwareGone(n)
		}
	}
	for _, c := range clients {
		for _, n := range started {
			c.announce(seq.EventPortStart, n)
		}
		for _, n := range exited {
			c.announce(seq.EventPortExit, n)
		}
	}
	return nil
}
