package loop

import "testing"

func BenchmarkEngineTickPlayback(b *testing.B) {
	e := New(2, 1<<20)
	e.HandleEvent(EventRecordToggle)
	in := []float32{0.5, -0.5}
	out := make([]float32, 2)
	for i := 0; i < 48000; i++ {
		e.Tick(in, out)
	}
	e.HandleEvent(EventRecordToggle)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Tick(nil, out)
	}
}

func BenchmarkMixFrameEightLayers(b *testing.B) {
	a := NewArena(2, 1<<20)
	for l := 0; l < 8; l++ {
		a.BeginRecording(0, 4800)
		for f := 0; f < 4800; f++ {
			a.AppendFrame([]float32{0.1, -0.1})
		}
		a.FinalizeRecording(4800)
	}
	out := make([]float32, 2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.MixFrame(i%4800, out)
	}
}
