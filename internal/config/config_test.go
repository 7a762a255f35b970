package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(wd)

	p, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p != Default() {
		t.Fatalf("expected defaults, got %+v", p)
	}
}

func TestLoadOverlaysFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	body := "sample_rate: 44100\narena_seconds: 12.5\nmidi:\n  enabled: true\n  channel: 10\n  thru: synth\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.SampleRate != 44100 || p.ArenaSeconds != 12.5 {
		t.Fatalf("file fields not applied: %+v", p)
	}
	if p.MIDI.Channel != 10 || p.MIDI.Thru != "synth" {
		t.Fatalf("midi fields not applied: %+v", p.MIDI)
	}
	// untouched fields keep their defaults
	if p.Channels != 2 || p.FrameSize != 256 || p.BitDepth != 24 {
		t.Fatalf("defaults lost: %+v", p)
	}
}

func TestLoadParsesEffectsSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	body := `effects:
  delay:
    delay_ms: 250
    feedback: 0.4
    wet: 0.3
  reverb:
    room_size: 0.6
    feedback: 0.7
    wet: 0.2
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Effects.Delay == nil || p.Effects.Delay.DelayMs != 250 || p.Effects.Delay.Wet != 0.3 {
		t.Fatalf("delay section not applied: %+v", p.Effects.Delay)
	}
	if p.Effects.Reverb == nil || p.Effects.Reverb.RoomSize != 0.6 {
		t.Fatalf("reverb section not applied: %+v", p.Effects.Reverb)
	}
	if p.Effects.Distortion != nil || p.Effects.Chorus != nil {
		t.Fatalf("absent sections should stay nil: %+v", p.Effects)
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected an error for a missing explicit path")
	}
}

func TestValidateRejectsBadGeometry(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(*Profile)
	}{
		{"sample rate too low", func(p *Profile) { p.SampleRate = 4000 }},
		{"zero channels", func(p *Profile) { p.Channels = 0 }},
		{"surround channels", func(p *Profile) { p.Channels = 6 }},
		{"negative arena", func(p *Profile) { p.ArenaSeconds = -1 }},
		{"tiny frame size", func(p *Profile) { p.FrameSize = 4 }},
		{"loud monitor", func(p *Profile) { p.MonitorVolume = 1.5 }},
		{"odd bit depth", func(p *Profile) { p.BitDepth = 20 }},
		{"midi channel too high", func(p *Profile) { p.MIDI.Channel = 17 }},
		{"eq crossovers inverted", func(p *Profile) {
			p.Effects.EQ = &EQOptions{LowGain: 1, MidGain: 1, HighGain: 1, LowFreq: 3000, HighFreq: 300}
		}},
		{"compressor ratio under one", func(p *Profile) {
			p.Effects.Compressor = &CompressorOptions{ThresholdDB: -20, Ratio: 0.5, AttackMs: 5, ReleaseMs: 50}
		}},
		{"delay without time", func(p *Profile) {
			p.Effects.Delay = &DelayOptions{Wet: 0.5}
		}},
		{"tremolo waveform unknown", func(p *Profile) {
			p.Effects.Tremolo = &TremoloOptions{Depth: 0.5, RateHz: 4, Waveform: "sine"}
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p := Default()
			tc.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestArenaWordsCoversConfiguredTime(t *testing.T) {
	p := Default()
	p.SampleRate = 48000
	p.Channels = 2
	p.ArenaSeconds = 2
	if got := p.ArenaWords(); got != 192000 {
		t.Fatalf("arena words = %d, want 192000", got)
	}
}
