package audio

import (
	"context"
	"fmt"
	"log/slog"

	pa "github.com/gordonklaus/portaudio"
)

// Processor consumes one interleaved input buffer and fills the matching
// output buffer. Both slices are the same length and are reused between
// calls.
type Processor interface {
	ProcessBuffer(in, out []float32)
}

// DuplexConfig sizes the live capture and playback stream.
type DuplexConfig struct {
	SampleRate int
	Channels   int
	FrameSize  int // frames per hardware buffer
}

// Duplex is a blocking full duplex stream on the default devices. Each pump
// iteration reads one input buffer, hands it to the processor and writes
// the result back out, so the processor sees input and output in lockstep.
type Duplex struct {
	stream *pa.Stream
	in     []float32
	out    []float32
	proc   Processor
}

// OpenDuplex initializes the audio host and opens the default duplex
// stream. Close releases both.
func OpenDuplex(cfg DuplexConfig, proc Processor) (*Duplex, error) {
	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("audio: initialize: %w", err)
	}
	d := &Duplex{
		in:   make([]float32, cfg.FrameSize*cfg.Channels),
		out:  make([]float32, cfg.FrameSize*cfg.Channels),
		proc: proc,
	}
	stream, err := pa.OpenDefaultStream(cfg.Channels, cfg.Channels,
		float64(cfg.SampleRate), cfg.FrameSize, d.in, d.out)
	if err != nil {
		pa.Terminate()
		return nil, fmt.Errorf("audio: open duplex stream: %w", err)
	}
	d.stream = stream
	slog.Debug("duplex stream open",
		"rate", stream.Info().SampleRate,
		"channels", cfg.Channels,
		"frames", cfg.FrameSize)
	return d, nil
}

// Run pumps buffers until ctx is done. Input overflow and output underflow
// are routine when the host stalls, so they are logged and the stream keeps
// going; any other stream error aborts.
func (d *Duplex) Run(ctx context.Context) error {
	if err := d.stream.Start(); err != nil {
		return fmt.Errorf("audio: start stream: %w", err)
	}
	defer d.stream.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := d.stream.Read(); err != nil {
			if err != pa.InputOverflowed {
				return fmt.Errorf("audio: read: %w", err)
			}
			slog.Debug("input overflowed")
		}
		d.proc.ProcessBuffer(d.in, d.out)
		if err := d.stream.Write(); err != nil {
			if err != pa.OutputUnderflowed {
				return fmt.Errorf("audio: write: %w", err)
			}
			slog.Debug("output underflowed")
		}
	}
}

// Close shuts the stream and releases the audio host.
func (d *Duplex) Close() error {
	err := d.stream.Close()
	pa.Terminate()
	return err
}
