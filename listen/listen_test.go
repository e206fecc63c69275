package listen_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"go-alsaseq/listen"
	"go-alsaseq/seq"
	"go-alsaseq/seq/seqtest"
)

func open(t *testing.T) (*seq.Client, *seqtest.Conn) {
	t.Helper()
	drv := seqtest.NewDriver()
	c, err := seq.Open(drv, "listen test", seq.WithStandardClasses())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, drv.Conn
}

func clock(t *testing.T) seq.Record {
	t.Helper()
	ev, err := seq.NewEvent(seq.EventClock)
	require.NoError(t, err)
	return seq.RecordOf(ev)
}

func TestDrainStopsWhenEmpty(t *testing.T) {
	c, conn := open(t)
	conn.Push(clock(t), clock(t), clock(t))

	var got []seq.Event
	n, err := listen.Drain(c, func(ev seq.Event) { got = append(got, ev) })
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, got, 3)
	assert.Equal(t, seq.EventClock, got[0].Type())
}

func TestDrainSurvivesOverflowAndInterrupt(t *testing.T) {
	c, conn := open(t)
	conn.InputErrs = []error{unix.ENOSPC, nil, unix.EINTR, nil}
	conn.Push(clock(t), clock(t))

	n, err := listen.Drain(c, func(seq.Event) {})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDrainReturnsOtherErrors(t *testing.T) {
	c, conn := open(t)
	conn.Push(clock(t))
	conn.InputErrs = []error{nil, unix.EIO}

	n, err := listen.Drain(c, func(seq.Event) {})
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, unix.EIO)
}

func TestRunDeliversUntilCancelled(t *testing.T) {
	c, conn := open(t)

	var p [2]int
	require.NoError(t, unix.Pipe2(p[:], unix.O_NONBLOCK|unix.O_CLOEXEC))
	t.Cleanup(func() {
		unix.Close(p[0])
		unix.Close(p[1])
	})
	conn.Descriptors = map[int][]int{seq.PollIn | seq.PollOut: {p[0]}, seq.PollIn: {p[0]}}
	conn.Push(clock(t), clock(t))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count := 0
	done := make(chan error, 1)
	go func() {
		done <- listen.Run(ctx, c, func(seq.Event) {
			count++
			if count == 2 {
				cancel()
			}
		})
	}()

	_, err := unix.Write(p[1], []byte{1})
	require.NoError(t, err)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.Equal(t, 2, count)
}

func TestRunWithoutDescriptor(t *testing.T) {
	c, conn := open(t)
	conn.Descriptors = map[int][]int{}

	err := listen.Run(context.Background(), c, func(seq.Event) {})
	assert.ErrorIs(t, err, seq.ErrNoDescriptor)
}
