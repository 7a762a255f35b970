package effects

import "math"

// EQ3Band implements a simple 3-band equalizer.
type EQ3Band struct {
	channels int
	lowGain  float32
	midGain  float32
	highGain float32
	lpAlpha  float32
	hpAlpha  float32
	lp       []float32 // lowpass state per channel
	hp       []float32 // highpass state per channel
}

// NewEQ3Band creates a 3-band EQ.
// lowGain, midGain, highGain: gain for each band (1.0 = unity)
// lowFreq: crossover frequency between low and mid bands
// highFreq: crossover frequency between mid and high bands
func NewEQ3Band(sampleRate, channels int, lowGain, midGain, highGain, lowFreq, highFreq float32) *EQ3Band {
	lpRC := 1.0 / (2.0 * math.Pi * float64(lowFreq))
	hpRC := 1.0 / (2.0 * math.Pi * float64(highFreq))
	dt := 1.0 / float64(sampleRate)
	return &EQ3Band{
		channels: channels,
		lowGain:  lowGain,
		midGain:  midGain,
		highGain: highGain,
		lpAlpha:  float32(dt / (lpRC + dt)),
		hpAlpha:  float32(dt / (hpRC + dt)),
		lp:       make([]float32, channels),
		hp:       make([]float32, channels),
	}
}

func (eq *EQ3Band) Process(buf []float32) {
	for i := range buf {
		ch := i % eq.channels
		v := buf[i]

		// Low band (LP filter)
		eq.lp[ch] += eq.lpAlpha * (v - eq.lp[ch])
		low := eq.lp[ch]

		// High band (HP filter)
		eq.hp[ch] += eq.hpAlpha * (v - eq.hp[ch])
		high := v - eq.hp[ch]

		// Mid band (everything between)
		mid := v - low - high

		buf[i] = low*eq.lowGain + mid*eq.midGain + high*eq.highGain
	}
}

func (eq *EQ3Band) Reset() {
	for i := 0; i < eq.channels; i++ {
		eq.lp[i] = 0
		eq.hp[i] = 0
	}
}
