package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go-alsaseq/listen"
	"go-alsaseq/midi"
	"go-alsaseq/seq"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "ports":
		err = listPorts()
	case "send":
		if len(os.Args) < 3 {
			usage()
			return
		}
		err = sendEvents(os.Args[2])
	case "dump":
		addr := ""
		if len(os.Args) > 2 {
			addr = os.Args[2]
		}
		err = dumpEvents(addr)
	case "watch":
		err = watchPorts()
	default:
		usage()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Sequencer Test Tool")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  ports       - List hardware ports")
	fmt.Println("  send ADDR   - Play a note and a control change to ADDR")
	fmt.Println("  dump [ADDR] - Print events received (from ADDR)")
	fmt.Println("  watch       - Print port announcements")
}

func listPorts() error {
	fmt.Println("=== Hardware Ports ===")
	fmt.Printf("(waiting up to %s...)\n", midi.ScanTimeout)

	d := midi.NewDriver()
	client, err := seq.Open(d, "seqtool")
	if err != nil {
		return err
	}
	defer client.Close()

	ports := d.Ports()
	if len(ports) == 0 {
		fmt.Println("  none")
	}
	for _, p := range ports {
		dir := ""
		if p.Readable {
			dir += "in "
		}
		if p.Writable {
			dir += "out"
		}
		fmt.Printf("  %-7s %-6s %s\n", p.Addr, dir, p.Name)
	}
	return nil
}

func sendEvents(target string) error {
	client, err := seq.Open(midi.NewDriver(), "seqtool", seq.WithStreams(seq.OpenOutput))
	if err != nil {
		return err
	}
	defer client.Close()

	port, err := client.CreatePort("port 1", seq.PortCapRead|seq.PortCapSubsRead, seq.PortTypeMIDIGeneric)
	if err != nil {
		return err
	}
	dest, err := client.ParseAddress(target)
	if err != nil {
		return err
	}
	if err := client.ConnectTo(port, int(dest.Client), int(dest.Port)); err != nil {
		return fmt.Errorf("connect to %s: %w", dest, err)
	}
	fmt.Printf("Client: %d Port: %d -> %s\n", client.ID(), port, dest)

	on, err := seq.NewNoteOn(seq.WithChannel(0), seq.WithNote(62), seq.WithVelocity(63))
	if err != nil {
		return err
	}
	off, err := seq.NewNoteOff(seq.WithChannel(0), seq.WithNote(62), seq.WithVelocity(1))
	if err != nil {
		return err
	}
	cc, err := seq.NewControlChange(seq.WithChannel(3), seq.WithParam(60), seq.WithValue(66))
	if err != nil {
		return err
	}

	for i, ev := range []seq.Event{on, off, cc} {
		if i > 0 {
			time.Sleep(time.Second)
		}
		fmt.Println(ev)
		n, err := client.Send(ev, seq.FromPort(port))
		if err != nil {
			return err
		}
		fmt.Printf("  buffered %d bytes\n", n)
		if err := client.DrainOutput(); err != nil {
			return err
		}
	}
	return nil
}

// dumpEvents prints every event arriving at a fresh port until interrupted.
func dumpEvents(source string) error {
	client, err := seq.Open(midi.NewDriver(), "dump_events", seq.WithStandardClasses())
	if err != nil {
		return err
	}
	defer client.Close()

	port, err := client.CreatePort("port 1", seq.PortCapWrite|seq.PortCapSubsWrite, seq.PortTypeMIDIGeneric)
	if err != nil {
		return err
	}
	fmt.Printf("Client: %d Port: %d\n", client.ID(), port)

	if source != "" {
		addr, err := client.ParseAddress(source)
		if err == nil {
			err = client.ConnectFrom(port, int(addr.Client), int(addr.Port))
		}
		if err != nil {
			fmt.Printf("could not connect from %s: %v\n", source, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("Now waiting for events:")
	return listen.Run(ctx, client, func(ev seq.Event) {
		fmt.Println(ev)
	})
}

func watchPorts() error {
	client, err := seq.Open(midi.NewDriver(), "seqtool", seq.WithStandardClasses())
	if err != nil {
		return err
	}
	defer client.Close()

	port, err := client.CreatePort("announce", seq.PortCapWrite, seq.PortTypeApplication)
	if err != nil {
		return err
	}
	if err := client.ConnectFrom(port, int(seq.ClientSystem), int(seq.PortSystemAnnounce)); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("Watching for port changes. Ctrl+C to exit.")
	return listen.Run(ctx, client, func(ev seq.Event) {
		rec := seq.RecordOf(ev)
		switch ev.Type() {
		case seq.EventPortStart:
			fmt.Printf("[%s] port %s appeared\n", time.Now().Format("15:04:05"), rec.AddrData())
		case seq.EventPortExit:
			fmt.Printf("[%s] port %s gone\n", time.Now().Format("15:04:05"), rec.AddrData())
		}
	})
}
