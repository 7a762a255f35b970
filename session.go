package looper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	intaudio "github.com/dwmuller/looper/internal/audio"
	intconfig "github.com/dwmuller/looper/internal/config"
	intfx "github.com/dwmuller/looper/internal/effects"
	intlfo "github.com/dwmuller/looper/internal/lfo"
	intloop "github.com/dwmuller/looper/internal/loop"
	intmidi "github.com/dwmuller/looper/internal/midi"
)

// SessionEvent carries transport and layer notifications from Watch().
type SessionEvent struct {
	Kind  int // EventStateChanged, EventLoopWrapped, or EventLayersChanged
	State intloop.State
}

const (
	EventStateChanged int = iota
	EventLoopWrapped
	EventLayersChanged
)

type SessionOption func(*sessionConfig)

type sessionConfig struct {
	monitor   bool
	sampleTap func([]float32)
}

func defaultSessionConfig() sessionConfig {
	return sessionConfig{monitor: true}
}

// WithMonitor controls whether live input is passed through to the output
// alongside the loop mix. Enabled by default.
func WithMonitor(enabled bool) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.monitor = enabled
	}
}

// WithSampleTap installs a callback invoked with each outgoing buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.sampleTap = tap
	}
}

// Session glues the loop engine to its surroundings: triggers arriving from
// MIDI or a UI are queued and applied at buffer boundaries, audio moves
// through ProcessBuffer, and observers follow along via Watch and Status.
type Session struct {
	mu        sync.Mutex
	profile   intconfig.Profile
	engine    *intloop.Engine
	triggers  chan intloop.Event
	monitor   bool
	volume    float64
	sampleTap func([]float32)
	chain     *intfx.Chain
	mix       []float32
	listener  *intmidi.Listener
	eventCh   chan SessionEvent
	eventChMu sync.Mutex
}

func NewSession(profile intconfig.Profile, opts ...SessionOption) (*Session, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	cfg := defaultSessionConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Session{
		profile:   profile,
		triggers:  make(chan intloop.Event, 32),
		monitor:   cfg.monitor,
		volume:    profile.MonitorVolume,
		sampleTap: cfg.sampleTap,
		chain:     buildChain(profile),
	}
	s.engine = intloop.NewWithOptions(profile.Channels, profile.ArenaWords(), intloop.Options{
		OnChange: s.onChange,
	})
	return s, nil
}

// Trigger queues one engine event. Safe from any goroutine; the event takes
// effect at the next buffer boundary. A full queue drops the event rather
// than blocking the caller.
func (s *Session) Trigger(ev intloop.Event) {
	select {
	case s.triggers <- ev:
	default:
		slog.Warn("trigger queue full, dropping", "event", ev)
	}
}

// ProcessBuffer advances the looper by one hardware buffer: queued triggers
// are applied first so the whole buffer sees one consistent transport
// state, then the engine consumes the input and the loop mix is laid over
// the monitored input.
func (s *Session) ProcessBuffer(in, out []float32) {
	s.mu.Lock()
	for drained := false; !drained; {
		select {
		case ev := <-s.triggers:
			s.engine.HandleEvent(ev)
		default:
			drained = true
		}
	}
	if cap(s.mix) < len(out) {
		s.mix = make([]float32, len(out))
	}
	mix := s.mix[:len(out)]
	s.engine.Process(in, mix)
	vol := float32(s.volume)
	monitor := s.monitor && in != nil
	s.mu.Unlock()

	for i := range out {
		v := mix[i] * vol
		if monitor {
			v += in[i]
		}
		out[i] = v
	}
	if s.chain != nil {
		s.chain.Process(out)
	}
	if s.sampleTap != nil {
		s.sampleTap(out)
	}
}

// buildChain assembles the output effects chain the profile asks for, in a
// fixed order: distortion, EQ, compressor, tremolo, chorus, delay, reverb.
func buildChain(p intconfig.Profile) *intfx.Chain {
	rate, c := p.SampleRate, p.Channels
	chain := intfx.NewChain()
	if o := p.Effects.Distortion; o != nil {
		chain.Add(intfx.NewDistortion(rate, c, float32(o.PreGain), float32(o.PostGain), float32(o.LPFCutoff)))
	}
	if o := p.Effects.EQ; o != nil {
		chain.Add(intfx.NewEQ3Band(rate, c, float32(o.LowGain), float32(o.MidGain), float32(o.HighGain), float32(o.LowFreq), float32(o.HighFreq)))
	}
	if o := p.Effects.Compressor; o != nil {
		chain.Add(intfx.NewCompressor(rate, c, float32(o.ThresholdDB), float32(o.Ratio), float32(o.AttackMs), float32(o.ReleaseMs), float32(o.MakeupDB)))
	}
	if o := p.Effects.Tremolo; o != nil {
		chain.Add(intfx.NewTremolo(rate, c, o.Depth, o.RateHz, tremoloWave(o.Waveform)))
	}
	if o := p.Effects.Chorus; o != nil {
		chain.Add(intfx.NewChorus(rate, c, float32(o.DelayMs), float32(o.Feedback), float32(o.DepthMs), float32(o.RateHz), float32(o.Wet)))
	}
	if o := p.Effects.Delay; o != nil {
		chain.Add(intfx.NewDelay(rate, c, o.DelayMs, float32(o.Feedback), float32(o.Cross), float32(o.Wet)))
	}
	if o := p.Effects.Reverb; o != nil {
		chain.Add(intfx.NewReverb(rate, c, float32(o.RoomSize), float32(o.Feedback), float32(o.Wet)))
	}
	if chain.Len() == 0 {
		return nil
	}
	return chain
}

func tremoloWave(name string) int {
	switch name {
	case "saw":
		return intlfo.WaveSaw
	case "square":
		return intlfo.WaveSquare
	case "random":
		return intlfo.WaveRandom
	default:
		return intlfo.WaveTriangle
	}
}

// Status is a point in time snapshot of the transport and arena.
type Status struct {
	State        intloop.State
	FrameIndex   int
	LoopLength   int
	ActiveLayers int
	UndoneLayers int
	ArenaUsed    int
	ArenaCap     int
	SampleRate   int
	Channels     int
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.engine.Arena()
	return Status{
		State:        s.engine.State(),
		FrameIndex:   s.engine.FrameIndex(),
		LoopLength:   s.engine.LoopLength(),
		ActiveLayers: a.ActiveLayers(),
		UndoneLayers: a.UndoneLayers(),
		ArenaUsed:    a.Used(),
		ArenaCap:     a.Capacity(),
		SampleRate:   s.profile.SampleRate,
		Channels:     s.profile.Channels,
	}
}

// Watch returns a channel that receives session events:
//   - EventStateChanged: the transport moved between empty, recording,
//     playing and paused
//   - EventLoopWrapped: the playback position wrapped to frame zero
//   - EventLayersChanged: a layer was saved, discarded, undone or redone
//
// The channel is buffered (cap 8); receive in a goroutine to avoid losing
// events. Only the most recent Watch() channel receives events.
func (s *Session) Watch() <-chan SessionEvent {
	ch := make(chan SessionEvent, 8)
	s.eventChMu.Lock()
	s.eventCh = ch
	s.eventChMu.Unlock()
	return ch
}

func (s *Session) onChange(c intloop.Change) {
	kind := EventStateChanged
	switch c.Kind {
	case intloop.ChangeLoopWrap:
		kind = EventLoopWrapped
	case intloop.ChangeLayers:
		kind = EventLayersChanged
	}
	// Dropping the loop also clears the effect tails.
	if c.Kind == intloop.ChangeState && c.State == intloop.StateEmpty && s.chain != nil {
		s.chain.Reset()
	}
	s.sendEvent(SessionEvent{Kind: kind, State: c.State})
}

func (s *Session) sendEvent(ev SessionEvent) {
	s.eventChMu.Lock()
	ch := s.eventCh
	s.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
			// Channel full; drop event
		}
	}
}

// SetTriggerFilter narrows which MIDI bus and channel are read as
// triggers, effective from the next message. Zero accepts any. Does
// nothing until RunLive has opened the MIDI listener.
func (s *Session) SetTriggerFilter(bus, channel int) {
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l != nil {
		l.SetFilter(bus, channel)
	}
}

// SetMixVolume sets the loop mix gain applied on output. 1.0 is default.
func (s *Session) SetMixVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = volume
}

func (s *Session) MixVolume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// BounceLoop renders one full cycle of the active layers into a fresh
// interleaved buffer. The live transport is not disturbed and the output
// effects chain is not applied; the bounce is the raw layer mix. Returns
// nil when no loop exists yet.
func (s *Session) BounceLoop() []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ll := s.engine.LoopLength()
	if ll == 0 {
		return nil
	}
	c := s.engine.Channels()
	out := make([]float32, ll*c)
	a := s.engine.Arena()
	for f := 0; f < ll; f++ {
		a.MixFrame(f, out[f*c:(f+1)*c])
	}
	return out
}

// ExportLoop bounces the current loop to a PCM WAV file.
func (s *Session) ExportLoop(path string) error {
	buf := s.BounceLoop()
	if buf == nil {
		return errors.New("looper: no loop to export")
	}
	return WriteWAV(path, buf, s.profile.SampleRate, s.profile.Channels, s.profile.BitDepth)
}

// ExportStems writes each active layer's contribution to one loop cycle as
// its own WAV file under dir, named stem_01.wav onward, oldest first.
func (s *Session) ExportStems(dir string) error {
	s.mu.Lock()
	ll := s.engine.LoopLength()
	c := s.engine.Channels()
	layers := s.engine.Arena().Layers()
	s.mu.Unlock()

	if ll == 0 {
		return errors.New("looper: no loop to export")
	}
	n := 0
	for _, li := range layers {
		if li.Undone {
			continue
		}
		n++
		buf := renderLayerCycle(li, ll, c)
		path := fmt.Sprintf("%s/stem_%02d.wav", dir, n)
		if err := WriteWAV(path, buf, s.profile.SampleRate, c, s.profile.BitDepth); err != nil {
			return err
		}
	}
	if n == 0 {
		return errors.New("looper: no active layers to export")
	}
	return nil
}

// ImportLoop loads a PCM WAV file as the base layer of an empty session.
// The file must match the session's sample rate and channel count; there
// is no resampling.
func (s *Session) ImportLoop(path string) error {
	samples, rate, channels, err := ReadWAV(path)
	if err != nil {
		return err
	}
	if rate != s.profile.SampleRate {
		return fmt.Errorf("looper: %s is %d Hz, session runs at %d Hz", path, rate, s.profile.SampleRate)
	}
	if channels != s.profile.Channels {
		return fmt.Errorf("looper: %s has %d channels, session runs %d", path, channels, s.profile.Channels)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.LoadLayer(samples)
}

// Reinit rebuilds the engine and arena from the session profile: every
// layer is lost and the transport returns to empty. Intended for host
// resets such as a sample rate change; call it only while no audio is
// flowing.
func (s *Session) Reinit() {
	s.mu.Lock()
	for drained := false; !drained; {
		select {
		case <-s.triggers:
		default:
			drained = true
		}
	}
	s.engine = intloop.NewWithOptions(s.profile.Channels, s.profile.ArenaWords(), intloop.Options{
		OnChange: s.onChange,
	})
	if s.chain != nil {
		s.chain.Reset()
	}
	s.mu.Unlock()
	s.sendEvent(SessionEvent{Kind: EventStateChanged, State: intloop.StateEmpty})
}

// RunLive opens the MIDI listener and the duplex audio stream, then pumps
// audio until ctx is done. A MIDI setup failure is logged and the session
// runs without it.
func (s *Session) RunLive(ctx context.Context) error {
	if s.profile.MIDI.Enabled {
		listener, err := intmidi.OpenListener(intmidi.Config{
			Bus:     s.profile.MIDI.Bus,
			Channel: s.profile.MIDI.Channel,
			Thru:    s.profile.MIDI.Thru,
		})
		if err != nil {
			slog.Warn("midi unavailable", "err", err)
		} else {
			s.mu.Lock()
			s.listener = listener
			s.mu.Unlock()
			defer func() {
				s.mu.Lock()
				s.listener = nil
				s.mu.Unlock()
				listener.Close()
			}()
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case ev, ok := <-listener.Triggers():
						if !ok {
							return
						}
						s.Trigger(ev)
					}
				}
			}()
		}
	}

	duplex, err := intaudio.OpenDuplex(intaudio.DuplexConfig{
		SampleRate: s.profile.SampleRate,
		Channels:   s.profile.Channels,
		FrameSize:  s.profile.FrameSize,
	}, s)
	if err != nil {
		return err
	}
	defer duplex.Close()
	slog.Info("session live",
		"rate", s.profile.SampleRate,
		"channels", s.profile.Channels,
		"arena_seconds", s.profile.ArenaSeconds)
	return duplex.Run(ctx)
}

// Audition renders one cycle of the current loop and plays it through the
// output device, blocking until it finishes or ctx is done. Useful for
// checking a loop without opening a capture stream.
func (s *Session) Audition(ctx context.Context) error {
	buf := s.BounceLoop()
	if buf == nil {
		return errors.New("looper: no loop to audition")
	}
	src := intaudio.NewBufferSource(toStereo(buf, s.profile.Channels))
	player, err := intaudio.NewPlayer(s.profile.SampleRate, src)
	if err != nil {
		return err
	}
	defer player.Stop()
	player.SetVolume(s.profile.MonitorVolume)
	player.Play()

	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			if src.Finished() && !player.IsPlaying() {
				return nil
			}
		}
	}
}

// toStereo widens mono to two identical channels; stereo passes through.
func toStereo(buf []float32, channels int) []float32 {
	if channels == 2 {
		return buf
	}
	out := make([]float32, len(buf)*2)
	for i, s := range buf {
		out[i*2] = s
		out[i*2+1] = s
	}
	return out
}
