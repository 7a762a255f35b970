package looper

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV writes interleaved float32 samples to path as PCM WAV. Samples
// outside [-1, 1] are clipped. bitDepth must be 16, 24 or 32.
func WriteWAV(path string, samples []float32, sampleRate, channels, bitDepth int) error {
	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("looper: unsupported bit depth %d", bitDepth)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("looper: create %s: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, 1)
	scale := float64(int(1)<<(bitDepth-1)) - 1
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: bitDepth,
	}
	for i, s := range samples {
		if s > 1 {
			s = 1
		}
		if s < -1 {
			s = -1
		}
		buf.Data[i] = int(float64(s) * scale)
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("looper: encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("looper: finish %s: %w", path, err)
	}
	return nil
}

// ReadWAV decodes a PCM WAV file into interleaved float32 samples scaled
// to [-1, 1].
func ReadWAV(path string) (samples []float32, sampleRate, channels int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("looper: open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, 0, fmt.Errorf("looper: %s is not a valid WAV file", path)
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, 0, 0, fmt.Errorf("looper: decode %s: %w", path, err)
	}
	format := dec.Format()
	bitDepth := int(dec.SampleBitDepth())
	if bitDepth == 0 {
		return nil, 0, 0, fmt.Errorf("looper: unknown bit depth in %s", path)
	}
	bytesPerSample := (bitDepth-1)/8 + 1
	n := int(dec.PCMLen()) / bytesPerSample

	buf := &goaudio.IntBuffer{
		Format:         format,
		Data:           make([]int, n),
		SourceBitDepth: bitDepth,
	}
	if _, err := dec.PCMBuffer(buf); err != nil {
		return nil, 0, 0, fmt.Errorf("looper: read %s: %w", path, err)
	}
	scale := float32(int(1) << (bitDepth - 1))
	samples = make([]float32, n)
	for i, v := range buf.Data {
		samples[i] = float32(v) / scale
	}
	return samples, format.SampleRate, format.NumChannels, nil
}
