package midi

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register MIDI driver

	"github.com/dwmuller/looper/internal/loop"
)

// Config selects where looper triggers come from and where everything else
// goes.
type Config struct {
	// Bus is the 1 based input port ordinal to accept triggers from,
	// 0 listens on every port.
	Bus int
	// Channel is the 1 based trigger channel, 0 accepts any.
	Channel int
	// Thru names an output port that receives all unconsumed messages.
	// Empty disables forwarding. Matched case insensitively by substring.
	Thru string
}

// Listener owns the open MIDI ports and turns trigger messages into engine
// events. Events are delivered on a buffered channel and dropped when the
// receiver is not keeping up, so the driver callback never blocks.
type Listener struct {
	mu      sync.Mutex
	adapter Adapter
	stops   []func()
	send    func(gomidi.Message) error
	events  chan loop.Event
}

// OpenListener opens the input ports selected by cfg and, when forwarding
// is enabled, the thru output port.
func OpenListener(cfg Config) (*Listener, error) {
	ins := gomidi.GetInPorts()
	if len(ins) == 0 {
		return nil, errors.New("midi: no input ports")
	}
	if cfg.Bus < 0 || cfg.Bus > len(ins) {
		return nil, fmt.Errorf("midi: input port %d not present, %d available", cfg.Bus, len(ins))
	}

	l := &Listener{
		adapter: Adapter{Bus: cfg.Bus, Channel: cfg.Channel},
		events:  make(chan loop.Event, 32),
	}
	if cfg.Thru != "" {
		out, err := gomidi.FindOutPort(cfg.Thru)
		if err != nil {
			return nil, fmt.Errorf("midi: thru port %q: %w", cfg.Thru, err)
		}
		send, err := gomidi.SendTo(out)
		if err != nil {
			return nil, fmt.Errorf("midi: open thru port %q: %w", cfg.Thru, err)
		}
		l.send = send
	}

	// Every port is opened even when a bus filter is set: messages from
	// other buses are not triggers but still flow through to the thru
	// port, and the filter can move to another bus while ports are open.
	for i, in := range ins {
		bus := i + 1
		stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
			l.handle(bus, msg)
		})
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("midi: listen on %q: %w", in.String(), err)
		}
		slog.Debug("midi listening", "port", in.String(), "bus", bus)
		l.stops = append(l.stops, stop)
	}
	return l, nil
}

// Triggers is the stream of consumed trigger events.
func (l *Listener) Triggers() <-chan loop.Event { return l.events }

// SetFilter changes the trigger bus and channel selectors, effective from
// the next message. Zero accepts any. Ports stay open; only the mapping
// decision changes.
func (l *Listener) SetFilter(bus, channel int) {
	l.mu.Lock()
	l.adapter = Adapter{Bus: bus, Channel: channel}
	l.mu.Unlock()
}

func (l *Listener) handle(bus int, msg gomidi.Message) {
	l.mu.Lock()
	a := l.adapter
	l.mu.Unlock()
	if ev, ok := a.Map(bus, msg); ok {
		select {
		case l.events <- ev:
		default:
			slog.Warn("trigger dropped", "event", ev)
		}
		return
	}
	if l.send != nil {
		if err := l.send(msg); err != nil {
			slog.Debug("midi thru failed", "err", err)
		}
	}
}

// Close stops listening. The thru port stays usable by the driver until
// CloseDriver.
func (l *Listener) Close() {
	for _, stop := range l.stops {
		stop()
	}
	l.stops = nil
}

// InputNames lists the available input ports in bus order.
func InputNames() []string {
	var names []string
	for _, in := range gomidi.GetInPorts() {
		names = append(names, in.String())
	}
	return names
}

// OutputNames lists the available output ports.
func OutputNames() []string {
	var names []string
	for _, out := range gomidi.GetOutPorts() {
		names = append(names, out.String())
	}
	return names
}

// CloseDriver releases the MIDI driver. Call once on shutdown.
func CloseDriver() { gomidi.CloseDriver() }
