package effects

import "github.com/dwmuller/looper/internal/lfo"

// Tremolo modulates the output level with a low frequency oscillator. The
// gain swings between 1 and 1-depth so peaks never rise above the dry
// signal, and every channel pumps together.
type Tremolo struct {
	channels   int
	sampleRate float64
	depth      float32
	osc        lfo.LFO
}

// NewTremolo creates a tremolo effect.
// depth: gain swing 0..1 (1 dips to silence)
// rateHz: modulation rate in Hz
// waveform: one of the lfo waveform constants
func NewTremolo(sampleRate, channels int, depth, rateHz float64, waveform int) *Tremolo {
	if depth < 0 {
		depth = 0
	}
	if depth > 1 {
		depth = 1
	}
	t := &Tremolo{
		channels:   channels,
		sampleRate: float64(sampleRate),
		depth:      float32(depth),
	}
	t.osc.Set(depth, rateHz, waveform)
	return t
}

func (t *Tremolo) Process(buf []float32) {
	if !t.osc.Active() {
		return
	}
	c := t.channels
	for f := 0; f+c <= len(buf); f += c {
		g := 1 - (t.depth+float32(t.osc.Sample(t.sampleRate)))/2
		for ch := 0; ch < c; ch++ {
			buf[f+ch] *= g
		}
	}
}

func (t *Tremolo) Reset() {
	t.osc.Reset()
}
