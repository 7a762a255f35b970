package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/dwmuller/looper/internal/loop"
)

// triggerEvents is the wire order: program change numbers map to engine
// events by index.
var triggerEvents = [...]loop.Event{
	loop.EventRecordToggle,
	loop.EventUndo,
	loop.EventPauseToggle,
	loop.EventRestartToggle,
	loop.EventRedo,
	loop.EventReset,
}

// Adapter decides which incoming messages act as looper triggers. Program
// change messages on the configured bus and channel whose program number
// names a trigger are consumed; every other message belongs to the
// instrument and passes through untouched.
type Adapter struct {
	// Bus is the 1 based input port ordinal to accept triggers from,
	// 0 accepts any port.
	Bus int
	// Channel is the 1 based MIDI channel to accept triggers on,
	// 0 accepts any channel.
	Channel int
}

// Map translates one incoming message from the given bus. ok reports
// whether the message was consumed as a trigger.
func (a Adapter) Map(bus int, msg gomidi.Message) (ev loop.Event, ok bool) {
	if a.Bus != 0 && bus != a.Bus {
		return 0, false
	}
	var ch, prog uint8
	if !msg.GetProgramChange(&ch, &prog) {
		return 0, false
	}
	if a.Channel != 0 && int(ch)+1 != a.Channel {
		return 0, false
	}
	if int(prog) >= len(triggerEvents) {
		return 0, false
	}
	return triggerEvents[prog], true
}
