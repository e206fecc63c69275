package main

import (
	"context"
	"fmt"
	"os"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"go-alsaseq/config"
	"go-alsaseq/debug"
	"go-alsaseq/listen"
	"go-alsaseq/midi"
	"go-alsaseq/seq"
	"go-alsaseq/theme"
	"go-alsaseq/tui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// run monitors the configured sources plus any addresses given as
// arguments. With --save the argument addresses that connected are added
// to the config as auto-connect sources.
func run(args []string) error {
	save := false
	var addrs []string
	for _, a := range args {
		if a == "--save" {
			save = true
			continue
		}
		addrs = append(addrs, a)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Debug.Enabled {
		if err := debug.Enable(cfg.Debug.Path); err != nil {
			return err
		}
		defer debug.Disable()
	}

	// Load theme
	palette, err := theme.Load(cfg.UI.Palette)
	if err != nil {
		return err
	}
	th := theme.New(palette)

	client, err := seq.Open(midi.NewDriver(), cfg.Client.Name,
		seq.WithSequencer(cfg.Client.Sequencer),
		seq.WithStandardClasses())
	if err != nil {
		return err
	}
	defer client.Close()

	port, err := client.CreatePort(cfg.Client.PortName,
		seq.PortCapWrite|seq.PortCapSubsWrite,
		seq.PortTypeMIDIGeneric|seq.PortTypeApplication)
	if err != nil {
		return err
	}

	var sources []string
	if cfg.Announce {
		if err := client.ConnectFrom(port, int(seq.ClientSystem), int(seq.PortSystemAnnounce)); err != nil {
			return err
		}
	}
	wanted := addrs
	for _, src := range cfg.AutoConnectSources() {
		if !slices.Contains(wanted, src.Address) {
			wanted = append(wanted, src.Address)
		}
	}
	for _, s := range wanted {
		addr, err := client.ParseAddress(s)
		if err == nil {
			err = client.ConnectFrom(port, int(addr.Client), int(addr.Port))
		}
		if err != nil {
			fmt.Printf("skip %s: %v\n", s, err)
			continue
		}
		sources = append(sources, addr.String())
		if save && slices.Contains(addrs, s) {
			if src := cfg.FindSource(s); src != nil {
				src.AutoConnect = true
			} else {
				cfg.AddSource(config.SourceConfig{Address: s, AutoConnect: true})
			}
		}
	}
	if save {
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan seq.Event, 256)
	errs := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		err := listen.Run(ctx, client, func(ev seq.Event) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		})
		if err != nil {
			errs <- err
		}
	}()

	m := tui.NewModel(th, events, errs, cfg.UI.MaxEvents)
	m.Title = fmt.Sprintf("%s %d:%d", cfg.Client.Name, client.ID(), port)
	m.Sources = sources

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()

	// the receive loop owns the client until it returns
	cancel()
	<-done
	return err
}
