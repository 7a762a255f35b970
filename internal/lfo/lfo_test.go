package lfo

import (
	"math"
	"testing"
)

func TestWaveformShapes(t *testing.T) {
	// 1 Hz at 100 samples per second puts phase 0.5 at sample 50.
	const sr = 100.0
	cases := []struct {
		name     string
		waveform int
		depth    float64
		at       int
		want     float64
	}{
		{"triangle trough at phase 0", WaveTriangle, 1, 0, -1},
		{"triangle zero at quarter phase", WaveTriangle, 1, 25, 0},
		{"triangle peak at half phase", WaveTriangle, 1, 50, 1},
		{"square high in first half", WaveSquare, 2, 0, 2},
		{"square low in second half", WaveSquare, 2, 50, -2},
		{"saw starts at peak", WaveSaw, 1, 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := &LFO{}
			l.Set(tc.depth, 1.0, tc.waveform)
			var v float64
			for i := 0; i <= tc.at; i++ {
				v = l.Sample(sr)
			}
			if math.Abs(v-tc.want) > 0.05 {
				t.Errorf("sample %d = %f, want %f", tc.at, v, tc.want)
			}
		})
	}
}

func TestInactiveLFOReturnsZero(t *testing.T) {
	l := &LFO{}
	l.Set(0, 5.0, WaveTriangle)
	if v := l.Sample(44100); v != 0 {
		t.Errorf("zero depth should return 0, got %f", v)
	}
	l.Set(1.0, 0, WaveTriangle)
	if v := l.Sample(44100); v != 0 {
		t.Errorf("zero rate should return 0, got %f", v)
	}
}

func TestActive(t *testing.T) {
	l := &LFO{}
	if l.Active() {
		t.Error("default LFO should not be active")
	}
	l.Set(1.0, 5.0, WaveTriangle)
	if !l.Active() {
		t.Error("configured LFO should be active")
	}
	l.Set(0, 5.0, WaveTriangle)
	if l.Active() {
		t.Error("zero-depth LFO should not be active")
	}
}

func TestRandomStaysWithinDepth(t *testing.T) {
	l := &LFO{}
	l.Set(1.0, 10.0, WaveRandom)
	// Two full cycles at 1 kHz
	for i := 0; i < 200; i++ {
		if v := l.Sample(1000); math.Abs(v) > 1.0 {
			t.Fatalf("random sample %d exceeds depth: %f", i, v)
		}
	}
}

func TestResetRewindsPhase(t *testing.T) {
	l := &LFO{}
	l.Set(1.0, 1.0, WaveTriangle)
	first := l.Sample(100)
	for i := 0; i < 30; i++ {
		l.Sample(100)
	}
	l.Reset()
	if v := l.Sample(100); v != first {
		t.Errorf("sample after reset = %f, want %f", v, first)
	}
}
