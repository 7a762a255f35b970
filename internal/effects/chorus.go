package effects

import "math"

// Chorus implements a modulated delay for chorus/flanger effects. One LFO
// drives every channel so the image stays centered.
type Chorus struct {
	channels int
	bufs     [][]float32
	pos      int
	size     int
	depth    float32 // modulation depth in samples
	rate     float64 // modulation rate in radians per sample
	phase    float64
	feedback float32
	wet      float32
}

// NewChorus creates a chorus/flanger effect.
// delayMs: base delay time in ms (typically 5-30ms)
// feedback: feedback amount 0..1
// depthMs: modulation depth in ms
// rateHz: modulation rate in Hz (typically 0.1-5Hz)
// wet: wet/dry mix 0..1
func NewChorus(sampleRate, channels int, delayMs, feedback, depthMs, rateHz, wet float32) *Chorus {
	baseSamples := int(float64(delayMs) * float64(sampleRate) / 1000.0)
	depthSamples := float64(depthMs) * float64(sampleRate) / 1000.0
	size := baseSamples + int(depthSamples) + 2
	if size < 4 {
		size = 4
	}
	bufs := make([][]float32, channels)
	for i := range bufs {
		bufs[i] = make([]float32, size)
	}
	return &Chorus{
		channels: channels,
		bufs:     bufs,
		size:     size,
		depth:    float32(depthSamples),
		rate:     2.0 * math.Pi * float64(rateHz) / float64(sampleRate),
		feedback: clamp(feedback, 0, 0.9),
		wet:      clamp(wet, 0, 1),
	}
}

func (c *Chorus) Process(buf []float32) {
	n := c.channels
	for f := 0; f+n <= len(buf); f += n {
		mod := float32(math.Sin(c.phase)) * c.depth
		c.phase += c.rate
		if c.phase > 2*math.Pi {
			c.phase -= 2 * math.Pi
		}
		// Read position with fractional delay, shared by all channels
		delay := float32(c.size/2) + mod
		readPos := float32(c.pos) - delay
		for readPos < 0 {
			readPos += float32(c.size)
		}
		idx := int(readPos)
		frac := readPos - float32(idx)
		idx2 := idx + 1
		if idx2 >= c.size {
			idx2 = 0
		}
		for ch := 0; ch < n; ch++ {
			in := buf[f+ch]
			c.bufs[ch][c.pos] = in
			del := c.bufs[ch][idx]*(1-frac) + c.bufs[ch][idx2]*frac
			c.bufs[ch][c.pos] += del * c.feedback
			buf[f+ch] = in*(1-c.wet) + del*c.wet
		}
		c.pos++
		if c.pos >= c.size {
			c.pos = 0
		}
	}
}

func (c *Chorus) Reset() {
	for ch := range c.bufs {
		for i := range c.bufs[ch] {
			c.bufs[ch][i] = 0
		}
	}
	c.pos = 0
	c.phase = 0
}
