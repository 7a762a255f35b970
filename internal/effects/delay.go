package effects

// Delay implements a delay with feedback. In stereo the feedback can bleed
// across channels for a ping-pong feel; in mono cross has no effect.
type Delay struct {
	channels int
	bufs     [][]float32
	del      []float32
	pos      int
	feedback float32
	cross    float32
	wet      float32
}

// NewDelay creates a delay effect.
// delayMs: delay time in milliseconds
// feedback: feedback amount 0..1
// cross: cross-channel feedback 0..1
// wet: wet/dry mix 0..1
func NewDelay(sampleRate, channels int, delayMs float64, feedback, cross, wet float32) *Delay {
	samples := int(delayMs * float64(sampleRate) / 1000.0)
	if samples < 1 {
		samples = 1
	}
	bufs := make([][]float32, channels)
	for i := range bufs {
		bufs[i] = make([]float32, samples)
	}
	return &Delay{
		channels: channels,
		bufs:     bufs,
		del:      make([]float32, channels),
		feedback: clamp(feedback, 0, 0.95),
		cross:    clamp(cross, 0, 1),
		wet:      clamp(wet, 0, 1),
	}
}

func (d *Delay) Process(buf []float32) {
	c := d.channels
	for f := 0; f+c <= len(buf); f += c {
		for ch := 0; ch < c; ch++ {
			d.del[ch] = d.bufs[ch][d.pos]
		}
		for ch := 0; ch < c; ch++ {
			fb := d.del[ch] * d.feedback
			if c == 2 {
				fb = d.del[ch]*d.feedback*(1-d.cross) + d.del[1-ch]*d.feedback*d.cross
			}
			d.bufs[ch][d.pos] = buf[f+ch] + fb
			buf[f+ch] = buf[f+ch]*(1-d.wet) + d.del[ch]*d.wet
		}
		d.pos++
		if d.pos >= len(d.bufs[0]) {
			d.pos = 0
		}
	}
}

func (d *Delay) Reset() {
	for ch := range d.bufs {
		for i := range d.bufs[ch] {
			d.bufs[ch][i] = 0
		}
	}
	d.pos = 0
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
