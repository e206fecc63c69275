// Package listen drives a sequencer client's input from a poll loop.
package listen

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"go-alsaseq/debug"
	"go-alsaseq/seq"
)

// pollTimeout bounds each wait so cancellation is noticed (milliseconds).
const pollTimeout = 100

// Receiver is the part of *seq.Client the loop needs.
type Receiver interface {
	Receive() (seq.Event, error)
	PollDescriptor() (int, error)
}

// Handler is called once per received event, on the loop's goroutine.
type Handler func(seq.Event)

// Drain receives events until the client has none left and returns the
// number handled. An input overflow is logged and reading continues;
// events lost to it are gone.
func Drain(c Receiver, fn Handler) (int, error) {
	n := 0
	for {
		ev, err := c.Receive()
		switch {
		case err == nil:
			n++
			fn(ev)
		case errors.Is(err, unix.EAGAIN):
			return n, nil
		case errors.Is(err, unix.ENOSPC):
			debug.Log("listen", "input overflow, events dropped")
		case errors.Is(err, unix.EINTR):
		default:
			return n, err
		}
	}
}

// Run waits for input on the client's descriptor and drains it into fn
// until ctx is done. The client must be non-blocking.
func Run(ctx context.Context, c Receiver, fn Handler) error {
	fd, err := c.PollDescriptor()
	if err != nil {
		return fmt.Errorf("poll descriptor: %w", err)
	}
	debug.Log("listen", "polling fd %d", fd)

	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fds[0].Revents = 0
		n, err := unix.Poll(fds, pollTimeout)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return fmt.Errorf("poll: %w", err)
		}
		if n == 0 {
			continue
		}

		if fds[0].Revents&(unix.POLLERR|unix.POLLNVAL) != 0 {
			return fmt.Errorf("poll fd %d: revents %#x", fd, fds[0].Revents)
		}
		if fds[0].Revents&unix.POLLIN == 0 {
			continue
		}
		if _, err := Drain(c, fn); err != nil {
			return err
		}
	}
}
