package loop

import "testing"

func sliceEqual(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBeginRecordingRejectsWhenHeaderCannotFit(t *testing.T) {
	a := NewArena(1, 2)
	if err := a.BeginRecording(0, 0); err != ErrArenaFull {
		t.Fatalf("expected ErrArenaFull, got %v", err)
	}
	if a.Recording() {
		t.Fatalf("rejected begin must not open a take")
	}
}

func TestBeginRecordingLeavesFullArenaUntouched(t *testing.T) {
	a := NewArena(1, 5)
	if err := a.BeginRecording(0, 0); err != nil {
		t.Fatalf("begin: %v", err)
	}
	a.AppendFrame([]float32{5})
	a.AppendFrame([]float32{7})
	if !a.FinalizeRecording(2) {
		t.Fatalf("finalize failed")
	}

	if err := a.BeginRecording(0, 2); err != ErrArenaFull {
		t.Fatalf("expected ErrArenaFull, got %v", err)
	}
	if n := a.ActiveLayers(); n != 1 {
		t.Fatalf("active layers = %d, want 1", n)
	}
	if got := a.Layers()[0].Samples; !sliceEqual(got, []float32{5, 7}) {
		t.Fatalf("layer samples disturbed: %v", got)
	}
}

func TestArenaHoldsExactlyItsCapacityInFrames(t *testing.T) {
	// header(3) + 4 stereo frames(8) = 11 words
	a := NewArena(2, 11)
	if err := a.BeginRecording(0, 0); err != nil {
		t.Fatalf("begin: %v", err)
	}
	for k := 0; k < 4; k++ {
		if err := a.AppendFrame([]float32{float32(k), float32(k)}); err != nil {
			t.Fatalf("append %d: %v", k, err)
		}
	}
	if err := a.AppendFrame([]float32{9, 9}); err != ErrArenaFull {
		t.Fatalf("fifth frame: expected ErrArenaFull, got %v", err)
	}
	if !a.FinalizeRecording(4) {
		t.Fatalf("finalize failed")
	}
	if f := a.Layers()[0].Frames; f != 4 {
		t.Fatalf("layer frames = %d, want 4", f)
	}
}

func TestFinalizeDropsTakeWithoutFrames(t *testing.T) {
	a := NewArena(1, 16)
	if err := a.BeginRecording(3, 7); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if a.FinalizeRecording(7) {
		t.Fatalf("empty take must not be saved")
	}
	if n := a.ActiveLayers(); n != 0 {
		t.Fatalf("active layers = %d, want 0", n)
	}
	if u := a.Used(); u != 0 {
		t.Fatalf("used = %d, want 0", u)
	}
	if a.words[1] != 0 || a.words[2] != 0 {
		t.Fatalf("dropped header not zeroed: %v", a.words[:headerWords])
	}
}

func TestUndoRedoRestoreLayerBitForBit(t *testing.T) {
	a := NewArena(1, 16)
	a.BeginRecording(0, 0)
	for _, s := range []float32{0.1, 0.2, 0.3} {
		a.AppendFrame([]float32{s})
	}
	a.FinalizeRecording(3)
	before := a.Layers()[0]

	if !a.Undo() {
		t.Fatalf("undo failed")
	}
	if a.ActiveLayers() != 0 || a.UndoneLayers() != 1 {
		t.Fatalf("counts after undo: %d/%d", a.ActiveLayers(), a.UndoneLayers())
	}
	if a.Undo() {
		t.Fatalf("undo with nothing active should report false")
	}
	if !a.Redo() {
		t.Fatalf("redo failed")
	}
	after := a.Layers()[0]
	if after.Frames != before.Frames || after.StartOffset != before.StartOffset ||
		after.LoopLength != before.LoopLength || !sliceEqual(after.Samples, before.Samples) {
		t.Fatalf("layer changed across undo/redo: %+v vs %+v", after, before)
	}
	if a.Redo() {
		t.Fatalf("redo with nothing undone should report false")
	}
}

func TestRecordingOverUndoneDropsRedo(t *testing.T) {
	a := NewArena(1, 32)
	a.BeginRecording(0, 0)
	a.AppendFrame([]float32{1})
	a.FinalizeRecording(1)
	a.BeginRecording(0, 1)
	a.AppendFrame([]float32{2})
	a.FinalizeRecording(1)

	a.Undo()
	if a.UndoneLayers() != 1 {
		t.Fatalf("undone layers = %d, want 1", a.UndoneLayers())
	}
	if err := a.BeginRecording(0, 1); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if a.UndoneLayers() != 0 {
		t.Fatalf("fresh take must discard the undone region")
	}
	a.AppendFrame([]float32{3})
	a.FinalizeRecording(1)
	if a.Redo() {
		t.Fatalf("redo after a fresh take should report false")
	}
	layers := a.Layers()
	if len(layers) != 2 || layers[1].Samples[0] != 3 {
		t.Fatalf("unexpected layers: %+v", layers)
	}
}

func TestDiscardRestoresPriorLoopLength(t *testing.T) {
	a := NewArena(1, 32)
	a.BeginRecording(0, 0)
	a.AppendFrame([]float32{1})
	a.AppendFrame([]float32{2})
	a.AppendFrame([]float32{3})
	a.FinalizeRecording(3)

	a.BeginRecording(1, 3)
	a.AppendFrame([]float32{9})
	if ll := a.DiscardRecording(); ll != 3 {
		t.Fatalf("discard returned %d, want 3", ll)
	}
	if a.Recording() {
		t.Fatalf("discard must close the take")
	}
	for i := a.Used(); i < a.Capacity(); i++ {
		if a.words[i] != 0 {
			t.Fatalf("word %d not zeroed after discard", i)
		}
	}

	b := NewArena(1, 8)
	b.BeginRecording(0, 0)
	b.AppendFrame([]float32{4})
	if ll := b.DiscardRecording(); ll != 0 {
		t.Fatalf("discard with no layers returned %d, want 0", ll)
	}
}

func TestResetZeroesStore(t *testing.T) {
	a := NewArena(2, 64)
	a.BeginRecording(0, 0)
	a.AppendFrame([]float32{1, 2})
	a.FinalizeRecording(1)
	a.BeginRecording(0, 1)
	a.AppendFrame([]float32{3, 4})

	a.Reset()
	if a.ActiveLayers() != 0 || a.UndoneLayers() != 0 || a.Recording() || a.Used() != 0 {
		t.Fatalf("reset left state behind")
	}
	for i, w := range a.words {
		if w != 0 {
			t.Fatalf("word %d = %f after reset", i, w)
		}
	}
}

func TestLayerCountsFollowBoundaries(t *testing.T) {
	a := NewArena(1, 64)
	for n := 1; n <= 3; n++ {
		a.BeginRecording(0, 0)
		for i := 0; i < n; i++ {
			a.AppendFrame([]float32{float32(n)})
		}
		a.FinalizeRecording(n)
	}

	steps := []struct {
		op             func() bool
		active, undone int
	}{
		{a.Undo, 2, 1},
		{a.Undo, 1, 2},
		{a.Redo, 2, 1},
		{a.Redo, 3, 0},
	}
	if a.ActiveLayers() != 3 || a.UndoneLayers() != 0 {
		t.Fatalf("initial counts: %d/%d", a.ActiveLayers(), a.UndoneLayers())
	}
	for i, s := range steps {
		if !s.op() {
			t.Fatalf("step %d failed", i)
		}
		if a.ActiveLayers() != s.active || a.UndoneLayers() != s.undone {
			t.Fatalf("step %d counts: %d/%d, want %d/%d",
				i, a.ActiveLayers(), a.UndoneLayers(), s.active, s.undone)
		}
	}
}
