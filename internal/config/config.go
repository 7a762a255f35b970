package config

import (
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v2"
)

// Profile holds everything a session needs to come up: stream geometry,
// arena sizing, trigger routing and render options. Zero values mean "use
// the default", so a profile file only needs the fields it overrides.
type Profile struct {
	SampleRate    int     `yaml:"sample_rate,omitempty"`
	Channels      int     `yaml:"channels,omitempty"`
	ArenaSeconds  float64 `yaml:"arena_seconds,omitempty"`
	FrameSize     int     `yaml:"frame_size,omitempty"`
	MonitorVolume float64 `yaml:"monitor_volume,omitempty"`
	BitDepth      int     `yaml:"bit_depth,omitempty"`

	MIDI    MIDIOptions    `yaml:"midi,omitempty"`
	Effects EffectsOptions `yaml:"effects,omitempty"`
}

// MIDIOptions routes trigger messages. Bus and Channel are 1 based; zero
// accepts any. Thru names an output port that receives everything the
// looper does not consume.
type MIDIOptions struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Bus     int    `yaml:"bus,omitempty"`
	Channel int    `yaml:"channel,omitempty"`
	Thru    string `yaml:"thru,omitempty"`
}

// EffectsOptions configures the output effects chain. A nil section leaves
// that effect out; the chain always runs in the order the fields are
// declared here.
type EffectsOptions struct {
	Distortion *DistortionOptions `yaml:"distortion,omitempty"`
	EQ         *EQOptions         `yaml:"eq,omitempty"`
	Compressor *CompressorOptions `yaml:"compressor,omitempty"`
	Tremolo    *TremoloOptions    `yaml:"tremolo,omitempty"`
	Chorus     *ChorusOptions     `yaml:"chorus,omitempty"`
	Delay      *DelayOptions      `yaml:"delay,omitempty"`
	Reverb     *ReverbOptions     `yaml:"reverb,omitempty"`
}

type DistortionOptions struct {
	PreGain   float64 `yaml:"pre_gain,omitempty"`
	PostGain  float64 `yaml:"post_gain,omitempty"`
	LPFCutoff float64 `yaml:"lpf_cutoff,omitempty"`
}

type EQOptions struct {
	LowGain  float64 `yaml:"low_gain,omitempty"`
	MidGain  float64 `yaml:"mid_gain,omitempty"`
	HighGain float64 `yaml:"high_gain,omitempty"`
	LowFreq  float64 `yaml:"low_freq,omitempty"`
	HighFreq float64 `yaml:"high_freq,omitempty"`
}

type CompressorOptions struct {
	ThresholdDB float64 `yaml:"threshold_db,omitempty"`
	Ratio       float64 `yaml:"ratio,omitempty"`
	AttackMs    float64 `yaml:"attack_ms,omitempty"`
	ReleaseMs   float64 `yaml:"release_ms,omitempty"`
	MakeupDB    float64 `yaml:"makeup_db,omitempty"`
}

type TremoloOptions struct {
	Depth    float64 `yaml:"depth,omitempty"`
	RateHz   float64 `yaml:"rate_hz,omitempty"`
	Waveform string  `yaml:"waveform,omitempty"` // saw, square, triangle or random
}

type ChorusOptions struct {
	DelayMs  float64 `yaml:"delay_ms,omitempty"`
	Feedback float64 `yaml:"feedback,omitempty"`
	DepthMs  float64 `yaml:"depth_ms,omitempty"`
	RateHz   float64 `yaml:"rate_hz,omitempty"`
	Wet      float64 `yaml:"wet,omitempty"`
}

type DelayOptions struct {
	DelayMs  float64 `yaml:"delay_ms,omitempty"`
	Feedback float64 `yaml:"feedback,omitempty"`
	Cross    float64 `yaml:"cross,omitempty"`
	Wet      float64 `yaml:"wet,omitempty"`
}

type ReverbOptions struct {
	RoomSize float64 `yaml:"room_size,omitempty"`
	Feedback float64 `yaml:"feedback,omitempty"`
	Wet      float64 `yaml:"wet,omitempty"`
}

// Default returns the profile used when no file overrides anything: a
// minute of stereo at 48 kHz with MIDI triggers accepted from anywhere.
func Default() Profile {
	return Profile{
		SampleRate:    48000,
		Channels:      2,
		ArenaSeconds:  60,
		FrameSize:     256,
		MonitorVolume: 1,
		BitDepth:      24,
		MIDI:          MIDIOptions{Enabled: true},
	}
}

// searchPaths are tried in order when no profile path is given.
func searchPaths() []string {
	paths := []string{"looper.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "looper", "profile.yaml"))
	}
	return paths
}

// Load reads a profile, layering the file's fields over the defaults. With
// an empty path the usual locations are tried and missing files fall back
// to the defaults; an explicit path must exist.
func Load(path string) (Profile, error) {
	p := Default()
	if path == "" {
		for _, candidate := range searchPaths() {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return p, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("config: %s: %w", path, err)
	}
	return p, nil
}

// Validate rejects geometry the engine cannot run with.
func (p Profile) Validate() error {
	if p.SampleRate < 8000 || p.SampleRate > 192000 {
		return fmt.Errorf("sample_rate %d out of range 8000..192000", p.SampleRate)
	}
	if p.Channels < 1 || p.Channels > 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d", p.Channels)
	}
	if p.ArenaSeconds <= 0 {
		return fmt.Errorf("arena_seconds must be positive, got %g", p.ArenaSeconds)
	}
	if p.FrameSize < 16 || p.FrameSize > 8192 {
		return fmt.Errorf("frame_size %d out of range 16..8192", p.FrameSize)
	}
	if p.MonitorVolume < 0 || p.MonitorVolume > 1 {
		return fmt.Errorf("monitor_volume %g out of range 0..1", p.MonitorVolume)
	}
	switch p.BitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("bit_depth must be 16, 24 or 32, got %d", p.BitDepth)
	}
	if p.MIDI.Bus < 0 {
		return fmt.Errorf("midi bus must not be negative, got %d", p.MIDI.Bus)
	}
	if p.MIDI.Channel < 0 || p.MIDI.Channel > 16 {
		return fmt.Errorf("midi channel %d out of range 0..16", p.MIDI.Channel)
	}
	return p.Effects.validate()
}

func (e EffectsOptions) validate() error {
	if eq := e.EQ; eq != nil {
		if eq.LowFreq <= 0 || eq.HighFreq <= eq.LowFreq {
			return fmt.Errorf("eq crossovers must satisfy 0 < low_freq < high_freq, got %g and %g", eq.LowFreq, eq.HighFreq)
		}
	}
	if c := e.Compressor; c != nil {
		if c.Ratio < 1 {
			return fmt.Errorf("compressor ratio must be at least 1, got %g", c.Ratio)
		}
		if c.AttackMs <= 0 || c.ReleaseMs <= 0 {
			return fmt.Errorf("compressor attack_ms and release_ms must be positive")
		}
	}
	if tr := e.Tremolo; tr != nil {
		if tr.Depth < 0 || tr.Depth > 1 {
			return fmt.Errorf("tremolo depth %g out of range 0..1", tr.Depth)
		}
		if tr.RateHz <= 0 {
			return fmt.Errorf("tremolo rate_hz must be positive, got %g", tr.RateHz)
		}
		switch tr.Waveform {
		case "", "saw", "square", "triangle", "random":
		default:
			return fmt.Errorf("unknown tremolo waveform %q", tr.Waveform)
		}
	}
	if c := e.Chorus; c != nil && c.DelayMs <= 0 {
		return fmt.Errorf("chorus delay_ms must be positive, got %g", c.DelayMs)
	}
	if d := e.Delay; d != nil && d.DelayMs <= 0 {
		return fmt.Errorf("delay delay_ms must be positive, got %g", d.DelayMs)
	}
	if r := e.Reverb; r != nil && (r.RoomSize <= 0 || r.RoomSize > 1) {
		return fmt.Errorf("reverb room_size %g out of range 0..1", r.RoomSize)
	}
	return nil
}

// ArenaWords converts the configured arena time into the word capacity of
// the layer store. Layer headers live inside this budget, so the usable
// recording time is a few words short of the nominal figure.
func (p Profile) ArenaWords() int {
	return int(p.ArenaSeconds*float64(p.SampleRate)) * p.Channels
}
