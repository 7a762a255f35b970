package loop

// MixFrame writes the sum of every active layer at frameIndex into dst,
// which must hold one interleaved frame. dst is cleared first, so with no
// active layers the frame is silent. The in-progress take, if any, is never
// part of the mix.
//
// A layer contributes when the position inside its own loop cycle falls
// within its recorded span: local = frameIndex mod loopLength - startOffset,
// audible for 0 <= local < frames. Layers saved under a shorter loop keep
// cycling at that shorter length, which is what lets a re-recorded long
// overdub split into aligned pieces without resampling.
func (a *Arena) MixFrame(frameIndex int, dst []float32) {
	zero(dst)
	for off := a.begin; off < a.saved; {
		v := layerView{a: a, off: off}
		off += v.size()

		ll := v.loopLength()
		if ll <= 0 {
			continue
		}
		local := frameIndex%ll - v.startOffset()
		if local < 0 || local >= v.frames() {
			continue
		}
		base := v.off + headerWords + local*a.channels
		for c := range dst {
			dst[c] += a.words[base+c]
		}
	}
}
