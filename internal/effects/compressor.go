package effects

import "math"

// Compressor implements basic dynamic range compression with an independent
// envelope follower per channel.
type Compressor struct {
	channels  int
	threshold float32
	ratio     float32
	attack    float32 // coefficient
	release   float32 // coefficient
	makeup    float32
	env       []float32
}

// NewCompressor creates a compressor effect.
// thresholdDB: threshold in dB (e.g., -20)
// ratio: compression ratio (e.g., 4 for 4:1)
// attackMs: attack time in ms
// releaseMs: release time in ms
// makeupDB: makeup gain in dB
func NewCompressor(sampleRate, channels int, thresholdDB, ratio, attackMs, releaseMs, makeupDB float32) *Compressor {
	sr := float64(sampleRate)
	return &Compressor{
		channels:  channels,
		threshold: float32(math.Pow(10, float64(thresholdDB)/20)),
		ratio:     ratio,
		attack:    float32(1.0 - math.Exp(-1.0/(float64(attackMs)*sr/1000.0))),
		release:   float32(1.0 - math.Exp(-1.0/(float64(releaseMs)*sr/1000.0))),
		makeup:    float32(math.Pow(10, float64(makeupDB)/20)),
		env:       make([]float32, channels),
	}
}

func (c *Compressor) Process(buf []float32) {
	for i := range buf {
		ch := i % c.channels
		abs := float32(math.Abs(float64(buf[i])))
		// Envelope follower
		if abs > c.env[ch] {
			c.env[ch] += c.attack * (abs - c.env[ch])
		} else {
			c.env[ch] += c.release * (abs - c.env[ch])
		}
		buf[i] *= c.computeGain(c.env[ch]) * c.makeup
	}
}

func (c *Compressor) computeGain(env float32) float32 {
	if env <= c.threshold || c.threshold <= 0 {
		return 1.0
	}
	// How far above threshold in linear scale
	over := env / c.threshold
	// Apply ratio: reduce the excess
	return float32(math.Pow(float64(over), float64(1.0/c.ratio-1)))
}

func (c *Compressor) Reset() {
	for i := range c.env {
		c.env[i] = 0
	}
}
