package loop

// State identifies the engine's transport state.
type State int

const (
	StateEmpty State = iota
	StateRecording
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateRecording:
		return "recording"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	}
	return "unknown"
}

// Event is one discrete trigger command consumed by the engine. The order of
// the constants is the wire order: external adapters map command numbers to
// events by index.
type Event int

const (
	EventRecordToggle Event = iota
	EventUndo
	EventPauseToggle
	EventRestartToggle
	EventRedo
	EventReset
)

func (e Event) String() string {
	switch e {
	case EventRecordToggle:
		return "record-toggle"
	case EventUndo:
		return "undo"
	case EventPauseToggle:
		return "pause-toggle"
	case EventRestartToggle:
		return "restart-toggle"
	case EventRedo:
		return "redo"
	case EventReset:
		return "reset"
	}
	return "unknown"
}

// ChangeKind identifies engine lifecycle notifications.
type ChangeKind int

const (
	// ChangeState reports a transport state transition.
	ChangeState ChangeKind = iota
	// ChangeLoopWrap reports the playback position wrapping to frame zero.
	ChangeLoopWrap
	// ChangeLayers reports a layer being saved, discarded, undone or redone.
	ChangeLayers
)

// Change carries one engine notification. State is the transport state after
// the change took effect.
type Change struct {
	Kind  ChangeKind
	State State
}
