package loop

import "errors"

// ErrNotEmpty is returned when an operation requires an empty engine.
var ErrNotEmpty = errors.New("loop: engine not empty")

// Options configures optional engine behavior.
type Options struct {
	// OnChange is invoked synchronously whenever the transport state
	// changes, the loop wraps, or the layer stack changes. It runs on the
	// audio path, so keep the work brief and hand off to a channel for
	// anything slow.
	OnChange func(Change)
}

// Engine is the looper state machine. It owns an arena of recorded layers
// and a transport position, advances one frame per Tick, and changes state
// only through HandleEvent. All methods must be called from a single
// goroutine; wrap the engine in a lock to drive it from an audio callback
// and a control surface at once.
type Engine struct {
	arena      *Arena
	state      State
	frameIndex int
	loopLength int
	onChange   func(Change)
	mute       []float32
}

// New creates an engine whose arena holds capacity words of layer data,
// headers included.
func New(channels, capacity int) *Engine {
	return NewWithOptions(channels, capacity, Options{})
}

// NewWithOptions is New with explicit options.
func NewWithOptions(channels, capacity int, opts Options) *Engine {
	a := NewArena(channels, capacity)
	return &Engine{
		arena:    a,
		onChange: opts.OnChange,
		mute:     make([]float32, a.Channels()),
	}
}

// State reports the current transport state.
func (e *Engine) State() State { return e.state }

// FrameIndex is the playback position within the loop.
func (e *Engine) FrameIndex() int { return e.frameIndex }

// LoopLength is the master loop length in frames, zero before the first
// layer is saved.
func (e *Engine) LoopLength() int { return e.loopLength }

// Channels is the interleaved channel count per frame.
func (e *Engine) Channels() int { return e.arena.Channels() }

// Arena exposes the layer store for inspection. Callers must observe the
// same single goroutine rule as the engine itself.
func (e *Engine) Arena() *Arena { return e.arena }

// HandleEvent applies one trigger to the state machine. Events take effect
// immediately and never queue inside the engine; callers driving an audio
// stream should deliver them between buffers so a whole buffer sees one
// consistent state. Events with no meaning in the current state are
// ignored.
func (e *Engine) HandleEvent(ev Event) {
	switch e.state {
	case StateEmpty:
		switch ev {
		case EventRecordToggle:
			e.startTake()
		case EventReset:
			e.reset()
		}
	case StateRecording:
		switch ev {
		case EventRecordToggle:
			e.saveTake(StatePlaying)
		case EventUndo, EventRedo:
			e.retake()
		case EventPauseToggle, EventRestartToggle:
			e.saveTake(StatePaused)
		case EventReset:
			e.reset()
		}
	case StatePlaying:
		switch ev {
		case EventRecordToggle:
			e.startTake()
		case EventUndo:
			if e.arena.Undo() {
				e.notify(ChangeLayers)
			}
		case EventRedo:
			if e.arena.Redo() {
				e.notify(ChangeLayers)
			}
		case EventPauseToggle, EventRestartToggle:
			e.setState(StatePaused)
		case EventReset:
			e.reset()
		}
	case StatePaused:
		switch ev {
		case EventRecordToggle:
			e.startTake()
		case EventUndo:
			if e.arena.Undo() {
				e.notify(ChangeLayers)
			}
		case EventRedo:
			if e.arena.Redo() {
				e.notify(ChangeLayers)
			}
		case EventPauseToggle:
			e.setState(StatePlaying)
		case EventRestartToggle:
			e.frameIndex = 0
			e.setState(StatePlaying)
		case EventReset:
			e.reset()
		}
	}
}

// Tick runs one frame of the transport: the loop boundary is resolved
// first, then the input frame is appended when recording, then every
// active layer is mixed into out. in and out each hold one interleaved
// frame; in may be nil when the caller has no input to offer.
func (e *Engine) Tick(in, out []float32) {
	zero(out)
	if e.state == StateEmpty || e.state == StatePaused {
		return
	}
	if e.frameIndex >= e.loopLength {
		e.loopEnd()
		if e.state == StatePaused {
			return
		}
	}
	if e.state == StateRecording {
		if in == nil {
			in = e.mute
		}
		if err := e.arena.AppendFrame(in); err != nil {
			// Out of memory mid take: keep what was captured and stop
			// the transport instead of dropping audio on the floor.
			e.saveTake(StatePaused)
			return
		}
	}
	e.arena.MixFrame(e.frameIndex, out)
	e.frameIndex++
}

// Process runs one Tick per output frame, consuming input frames in step.
// Buffers are interleaved; len(out) should be a multiple of the channel
// count and in, when non nil, at least as long as out.
func (e *Engine) Process(in, out []float32) {
	c := e.arena.Channels()
	for f := 0; f+c <= len(out); f += c {
		var src []float32
		if in != nil {
			src = in[f : f+c]
		}
		e.Tick(src, out[f:f+c])
	}
}

// LoadLayer installs interleaved frames as the base layer of an empty
// engine, leaving it paused at frame zero with the loop length matching
// the layer. Fails when the engine is not empty or the arena cannot hold
// the audio.
func (e *Engine) LoadLayer(frames []float32) error {
	if e.state != StateEmpty {
		return ErrNotEmpty
	}
	c := e.arena.Channels()
	n := len(frames) / c
	if n == 0 {
		return errors.New("loop: no frames to load")
	}
	if err := e.arena.BeginRecording(0, 0); err != nil {
		return err
	}
	for f := 0; f < n; f++ {
		if err := e.arena.AppendFrame(frames[f*c : (f+1)*c]); err != nil {
			e.arena.DiscardRecording()
			return err
		}
	}
	e.arena.FinalizeRecording(n)
	e.loopLength = n
	e.frameIndex = 0
	e.notify(ChangeLayers)
	e.setState(StatePaused)
	return nil
}

// startTake opens a new take at the current position. On a full arena the
// trigger is dropped and the transport stays where it was.
func (e *Engine) startTake() {
	if err := e.arena.BeginRecording(e.frameIndex, e.loopLength); err != nil {
		return
	}
	e.setState(StateRecording)
}

// saveTake finalizes the in-progress take and moves to next. A take that
// never saw a frame is dropped; if that leaves the engine with no layers
// and no loop, recording backs out to empty instead of arming a silent
// loop.
func (e *Engine) saveTake(next State) {
	saved := e.arena.FinalizeRecording(e.loopLength)
	if !saved && e.arena.ActiveLayers() == 0 && e.loopLength == 0 {
		e.setState(StateEmpty)
		return
	}
	if saved {
		e.notify(ChangeLayers)
	}
	e.setState(next)
}

// retake drops the in-progress take and immediately starts a fresh one,
// which is what undo means while recording. When no saved layers remain
// the loop length collapses with the take, so the position rewinds to zero
// and length rebuilds from the new recording.
func (e *Engine) retake() {
	e.loopLength = e.arena.DiscardRecording()
	if e.loopLength == 0 {
		e.frameIndex = 0
	}
	if err := e.arena.BeginRecording(e.frameIndex, e.loopLength); err != nil {
		e.setState(StatePaused)
		return
	}
	e.notify(ChangeLayers)
}

// loopEnd resolves the position crossing the loop boundary, before anything
// else happens in the tick. While the first take is open with no layers
// beneath it the loop has no length yet, so the boundary moves ahead of the
// position one frame per tick. Otherwise the position wraps; an open
// overdub is split at the seam by saving it and starting its continuation
// at frame zero.
func (e *Engine) loopEnd() {
	if e.state == StateRecording {
		if e.arena.ActiveLayers() == 0 {
			e.loopLength++
			return
		}
		if e.arena.FinalizeRecording(e.loopLength) {
			e.notify(ChangeLayers)
		}
		e.frameIndex = 0
		if err := e.arena.BeginRecording(0, e.loopLength); err != nil {
			e.setState(StatePaused)
			return
		}
	} else {
		e.frameIndex = 0
	}
	e.notify(ChangeLoopWrap)
}

func (e *Engine) reset() {
	e.arena.Reset()
	e.frameIndex = 0
	e.loopLength = 0
	e.setState(StateEmpty)
}

func (e *Engine) setState(s State) {
	if e.state == s {
		return
	}
	e.state = s
	e.notify(ChangeState)
}

func (e *Engine) notify(k ChangeKind) {
	if e.onChange != nil {
		e.onChange(Change{Kind: k, State: e.state})
	}
}
