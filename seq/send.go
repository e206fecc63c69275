package seq

import "go-alsaseq/debug"

type optional[T any] struct {
	v   T
	set bool
}

func (o *optional[T]) put(v T) { o.v, o.set = v, true }

type sendConfig struct {
	port     optional[int]
	queue    optional[int]
	dest     optional[[2]int]
	direct   optional[bool]
	tick     optional[uint32]
	realtime optional[[2]uint32]
	relative bool
}

func (s *sendConfig) overrides() bool {
	return s.port.set || s.queue.set || s.dest.set || s.direct.set || s.tick.set || s.realtime.set
}

// SendOption overrides one field of an event for a single Send.
type SendOption func(*sendConfig)

// FromPort sets the source port.
func FromPort(port int) SendOption {
	return func(s *sendConfig) { s.port.put(port) }
}

// ToQueue schedules the event on a queue.
func ToQueue(queue int) SendOption {
	return func(s *sendConfig) { s.queue.put(queue) }
}

// To sets the destination address.
func To(client, port int) SendOption {
	return func(s *sendConfig) { s.dest.put([2]int{client, port}) }
}

// Direct, when on, bypasses every queue.
func Direct(on bool) SendOption {
	return func(s *sendConfig) { s.direct.put(on) }
}

// AtTick schedules the event at a tick time.
func AtTick(tick uint32) SendOption {
	return func(s *sendConfig) { s.tick.put(tick) }
}

// AtRealTime schedules the event at a real time.
func AtRealTime(sec, nsec uint32) SendOption {
	return func(s *sendConfig) { s.realtime.put([2]uint32{sec, nsec}) }
}

// Relative selects whether a schedule is relative to the queue's current
// time (the default) or absolute.
func Relative(on bool) SendOption {
	return func(s *sendConfig) { s.relative = on }
}

// Send outputs one event and returns the number of bytes the service
// reports as buffered. Options apply to a copy; ev itself is never
// modified.
func (c *Client) Send(ev Event, opts ...SendOption) (int, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	rec := recordOf(ev)
	if rec == nil {
		return 0, usagef("nil event")
	}

	cfg := sendConfig{relative: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.tick.set && cfg.realtime.set {
		return 0, usagef("'tick' and 'realtime' schedule cannot be used at the same time")
	}
	if cfg.queue.set && cfg.direct.set && cfg.direct.v {
		return 0, usagef("'queue' and 'direct' cannot be used at the same time")
	}

	if cfg.overrides() {
		cp := *rec
		rec = &cp
	}

	if cfg.port.set {
		if err := byteField("port", cfg.port.v); err != nil {
			return 0, err
		}
		rec.Source.Port = uint8(cfg.port.v)
	}
	if cfg.dest.set {
		if err := byteField("dest client", cfg.dest.v[0]); err != nil {
			return 0, err
		}
		if err := byteField("dest port", cfg.dest.v[1]); err != nil {
			return 0, err
		}
		rec.Dest = Addr{Client: uint8(cfg.dest.v[0]), Port: uint8(cfg.dest.v[1])}
	}
	if cfg.queue.set {
		if err := byteField("queue", cfg.queue.v); err != nil {
			return 0, err
		}
		rec.Queue = uint8(cfg.queue.v)
	}
	if cfg.direct.set && cfg.direct.v {
		rec.Queue = QueueDirect
	}

	mode := TimeModeAbs
	if cfg.relative {
		mode = TimeModeRel
	}
	if cfg.tick.set {
		rec.SetTick(cfg.tick.v)
		rec.Flags = rec.Flags.WithMode(mode)
	}
	if cfg.realtime.set {
		rec.SetRealTime(cfg.realtime.v[0], cfg.realtime.v[1])
		rec.Flags = rec.Flags.WithMode(mode)
	}

	if ev.Type() == EventNote && rec.Queue == QueueDirect {
		return 0, usagef("note events must be enqueued")
	}

	n, err := c.conn.EventOutput(rec)
	if err != nil {
		return 0, serviceError("event output", err)
	}
	debug.LogEvery(100, "seq", "client %d: sent %s", c.id, ev.Type())
	return n, nil
}
