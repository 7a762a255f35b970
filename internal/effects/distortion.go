package effects

import "math"

// Distortion implements waveshaping distortion with pre/post gain and LPF.
type Distortion struct {
	channels int
	preGain  float32
	postGain float32
	lpfAlpha float32
	lpf      []float32
}

// NewDistortion creates a distortion effect.
// preGain: input gain (higher = more distortion)
// postGain: output gain
// lpfCutoff: lowpass filter cutoff in Hz (0 = no filter)
func NewDistortion(sampleRate, channels int, preGain, postGain, lpfCutoff float32) *Distortion {
	d := &Distortion{
		channels: channels,
		preGain:  preGain,
		postGain: postGain,
		lpf:      make([]float32, channels),
	}
	if lpfCutoff > 0 && lpfCutoff < float32(sampleRate)/2 {
		rc := 1.0 / (2.0 * math.Pi * float64(lpfCutoff))
		dt := 1.0 / float64(sampleRate)
		d.lpfAlpha = float32(dt / (rc + dt))
	}
	return d
}

func (d *Distortion) Process(buf []float32) {
	for i := range buf {
		v := buf[i] * d.preGain
		// Soft clipping via tanh waveshaping
		v = float32(math.Tanh(float64(v)))
		v *= d.postGain
		if d.lpfAlpha > 0 {
			ch := i % d.channels
			d.lpf[ch] += d.lpfAlpha * (v - d.lpf[ch])
			v = d.lpf[ch]
		}
		buf[i] = v
	}
}

func (d *Distortion) Reset() {
	for i := range d.lpf {
		d.lpf[i] = 0
	}
}
