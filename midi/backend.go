package midi

import (
	"errors"
	"fmt"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// ScanTimeout bounds one port listing. Some MIDI services hang instead
// of answering.
const ScanTimeout = 3 * time.Second

// ErrScanHung is returned when the port listing did not answer in time.
var ErrScanHung = errors.New("midi: port scan timed out")

// PortInfo names one hardware port as the MIDI backend numbers it.
type PortInfo struct {
	Number int
	Name   string
}

// Backend is the hardware side of the bridge.
type Backend interface {
	// Ports lists the current input and output ports.
	Ports() (ins, outs []PortInfo, err error)
	// OpenOut returns a sender for output port number.
	OpenOut(number int) (send func(gomidi.Message) error, err error)
	// Listen delivers messages from input port number until stop is
	// called. fn runs on a backend goroutine.
	Listen(number int, fn func(gomidi.Message)) (stop func(), err error)
}

// Hardware is the Backend over gomidi's registered driver.
type Hardware struct{}

func (Hardware) Ports() (ins, outs []PortInfo, err error) {
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		ch <- portsResult{inPorts: gomidi.GetInPorts(), outPorts: gomidi.GetOutPorts()}
	}()

	select {
	case result := <-ch:
		for _, p := range result.inPorts {
			ins = append(ins, PortInfo{Number: p.Number(), Name: p.String()})
		}
		for _, p := range result.outPorts {
			outs = append(outs, PortInfo{Number: p.Number(), Name: p.String()})
		}
		return ins, outs, nil
	case <-time.After(ScanTimeout):
		// the listing goroutine is left behind; nothing can cancel it
		return nil, nil, ErrScanHung
	}
}

func (Hardware) OpenOut(number int) (func(gomidi.Message) error, error) {
	out, err := gomidi.OutPort(number)
	if err != nil {
		return nil, fmt.Errorf("output port %d: %w", number, err)
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return send, nil
}

func (Hardware) Listen(number int, fn func(gomidi.Message)) (func(), error) {
	in, err := gomidi.InPort(number)
	if err != nil {
		return nil, fmt.Errorf("input port %d: %w", number, err)
	}
	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		fn(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return stop, nil
}
