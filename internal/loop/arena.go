package loop

import "errors"

// ErrArenaFull is returned when a recording operation would exceed the
// arena's fixed capacity.
var ErrArenaFull = errors.New("loop: arena full")

// headerWords is the bookkeeping cost per layer, in words: frame count,
// start offset and loop length at save time.
const headerWords = 3

// Arena is a fixed-capacity store for recorded layers. Layers live
// contiguously in a single word array, each as a three word header followed
// by its interleaved samples. Two boundaries partition the store: layers
// below saved are active and audible, layers between saved and end have been
// undone but can be restored. Undo and redo only move the saved boundary, so
// both are constant time and leave sample data untouched.
//
// Header fields are stored as whole numbers in word slots. They stay exact
// for layers up to 1<<24 frames, far past any capacity this engine is run
// with.
//
// An Arena is not safe for concurrent use.
type Arena struct {
	channels int
	words    []float32

	begin int // first word of the active region
	saved int // end of active region, start of undone region
	end   int // end of undone region, start of free space

	rec       int // header offset of the in-progress take, -1 when idle
	recFrames int
}

// NewArena allocates an arena holding at most capacity words, headers
// included. A layer of n frames costs headerWords + n*channels words.
func NewArena(channels, capacity int) *Arena {
	if channels < 1 {
		channels = 1
	}
	if capacity < 0 {
		capacity = 0
	}
	return &Arena{
		channels: channels,
		words:    make([]float32, capacity),
		rec:      -1,
	}
}

// layerView is an offset-based handle to one layer record in the store.
// Views are transient: boundary moves never invalidate them, but Reset and
// BeginRecording may reuse their words.
type layerView struct {
	a   *Arena
	off int
}

func (v layerView) frames() int      { return int(v.a.words[v.off]) }
func (v layerView) startOffset() int { return int(v.a.words[v.off+1]) }
func (v layerView) loopLength() int  { return int(v.a.words[v.off+2]) }

// size is the layer's total footprint in words.
func (v layerView) size() int { return headerWords + v.frames()*v.a.channels }

// next returns the view of the layer immediately after this one.
func (v layerView) next() layerView { return layerView{a: v.a, off: v.off + v.size()} }

// BeginRecording starts a new take at the current free space. atFrame and
// loopLength are recorded in the header so the finished layer plays back
// aligned with the position it was recorded at. If not even a header fits
// the arena is left untouched and ErrArenaFull is returned; otherwise any
// undone layers are discarded for good, since the new take overwrites the
// region they occupy.
func (a *Arena) BeginRecording(atFrame, loopLength int) error {
	if len(a.words)-a.saved < headerWords {
		return ErrArenaFull
	}
	a.end = a.saved
	a.words[a.end] = 0
	a.words[a.end+1] = float32(atFrame)
	a.words[a.end+2] = float32(loopLength)
	a.rec = a.end
	a.recFrames = 0
	return nil
}

// AppendFrame appends one interleaved frame to the in-progress take. It
// fails with ErrArenaFull exactly when fewer than channels words remain, so
// an arena sized for n frames records all n before reporting exhaustion.
// Only valid between BeginRecording and the matching finalize or discard.
func (a *Arena) AppendFrame(frame []float32) error {
	pos := a.rec + headerWords + a.recFrames*a.channels
	if len(a.words)-pos < a.channels {
		return ErrArenaFull
	}
	copy(a.words[pos:pos+a.channels], frame)
	a.recFrames++
	return nil
}

// Recording reports whether a take is in progress.
func (a *Arena) Recording() bool { return a.rec >= 0 }

// RecordedFrames is the length of the in-progress take, zero when idle.
func (a *Arena) RecordedFrames() int {
	if a.rec < 0 {
		return 0
	}
	return a.recFrames
}

// FinalizeRecording promotes the in-progress take to the newest active
// layer, stamping its frame count and the loop length it was saved under.
// A take with no frames is dropped instead and false is returned.
func (a *Arena) FinalizeRecording(loopLength int) bool {
	if a.rec < 0 {
		return false
	}
	if a.recFrames == 0 {
		zero(a.words[a.rec : a.rec+headerWords])
		a.rec = -1
		return false
	}
	a.words[a.rec] = float32(a.recFrames)
	a.words[a.rec+2] = float32(loopLength)
	a.saved = a.rec + headerWords + a.recFrames*a.channels
	a.end = a.saved
	a.rec = -1
	a.recFrames = 0
	return true
}

// DiscardRecording abandons the in-progress take, zeroing the words it
// reserved. It returns the loop length stamped on the newest active layer,
// or zero when none remain, so the caller can rewind its loop length to the
// value in effect before the take started.
func (a *Arena) DiscardRecording() int {
	if a.rec >= 0 {
		zero(a.words[a.rec : a.rec+headerWords+a.recFrames*a.channels])
		a.rec = -1
		a.recFrames = 0
	}
	if last, ok := a.lastActive(); ok {
		return last.loopLength()
	}
	return 0
}

// Undo deactivates the newest active layer. The layer's words are untouched,
// only the saved boundary retreats past it. Returns false when no active
// layers remain.
func (a *Arena) Undo() bool {
	last, ok := a.lastActive()
	if !ok {
		return false
	}
	a.saved = last.off
	return true
}

// Redo reactivates the oldest undone layer by advancing the saved boundary
// past it. Returns false when there is nothing to redo.
func (a *Arena) Redo() bool {
	if a.saved == a.end {
		return false
	}
	a.saved = layerView{a: a, off: a.saved}.size() + a.saved
	return true
}

// Reset discards every layer and any in-progress take, zeroing the words
// they used.
func (a *Arena) Reset() {
	limit := a.end
	if a.rec >= 0 {
		if p := a.rec + headerWords + a.recFrames*a.channels; p > limit {
			limit = p
		}
	}
	zero(a.words[a.begin:limit])
	a.begin, a.saved, a.end = 0, 0, 0
	a.rec = -1
	a.recFrames = 0
}

// ActiveLayers counts the audible layers by walking the active region.
func (a *Arena) ActiveLayers() int { return a.countLayers(a.begin, a.saved) }

// UndoneLayers counts the layers available to Redo.
func (a *Arena) UndoneLayers() int { return a.countLayers(a.saved, a.end) }

func (a *Arena) countLayers(from, to int) int {
	n := 0
	for off := from; off < to; {
		off += layerView{a: a, off: off}.size()
		n++
	}
	return n
}

// lastActive walks to the newest active layer. Layers are laid out oldest
// first, so the walk follows size links until the next one crosses saved.
func (a *Arena) lastActive() (layerView, bool) {
	if a.saved == a.begin {
		return layerView{}, false
	}
	v := layerView{a: a, off: a.begin}
	for {
		n := v.next()
		if n.off >= a.saved {
			return v, true
		}
		v = n
	}
}

// Channels is the interleaved channel count per frame.
func (a *Arena) Channels() int { return a.channels }

// Capacity is the store size in words.
func (a *Arena) Capacity() int { return len(a.words) }

// Used is the store extent in words, including any in-progress take.
func (a *Arena) Used() int {
	if a.rec >= 0 {
		return a.rec + headerWords + a.recFrames*a.channels
	}
	return a.end
}

// LayerInfo describes one layer for callers outside the audio path. Samples
// is an interleaved copy of the layer's frames.
type LayerInfo struct {
	Frames      int
	StartOffset int
	LoopLength  int
	Undone      bool
	Samples     []float32
}

// Layers returns copies of every layer, oldest first, active layers before
// undone ones.
func (a *Arena) Layers() []LayerInfo {
	var out []LayerInfo
	for off := a.begin; off < a.end; {
		v := layerView{a: a, off: off}
		data := a.words[off+headerWords : off+v.size()]
		out = append(out, LayerInfo{
			Frames:      v.frames(),
			StartOffset: v.startOffset(),
			LoopLength:  v.loopLength(),
			Undone:      off >= a.saved,
			Samples:     append([]float32(nil), data...),
		})
		off += v.size()
	}
	return out
}

func zero(dst []float32) {
	for i := range dst {
		dst[i] = 0
	}
}
