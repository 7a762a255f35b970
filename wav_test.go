package looper

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestWAVRoundtrip(t *testing.T) {
	src := []float32{0, 0.5, -0.5, 0.25, -1, 0.99}
	path := filepath.Join(t.TempDir(), "take.wav")
	if err := WriteWAV(path, src, 8000, 1, 16); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, rate, channels, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if rate != 8000 {
		t.Fatalf("sample rate = %d, want 8000", rate)
	}
	if channels != 1 {
		t.Fatalf("channels = %d, want 1", channels)
	}
	if len(got) != len(src) {
		t.Fatalf("sample count = %d, want %d", len(got), len(src))
	}
	for i := range src {
		if math.Abs(float64(got[i]-src[i])) > 1e-3 {
			t.Fatalf("sample %d = %v, want %v", i, got[i], src[i])
		}
	}
}

func TestWriteWAVClipsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hot.wav")
	if err := WriteWAV(path, []float32{2, -3}, 8000, 1, 16); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, _, _, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got[0] < 0.99 || got[0] > 1 {
		t.Fatalf("clipped high sample = %v, want ~1", got[0])
	}
	if got[1] > -0.99 || got[1] < -1 {
		t.Fatalf("clipped low sample = %v, want ~-1", got[1])
	}
}

func TestWriteWAVRejectsBadDepth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := WriteWAV(path, []float32{0}, 8000, 1, 12); err == nil {
		t.Fatalf("expected error for 12 bit depth")
	}
}

func TestReadWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notwav.wav")
	if err := os.WriteFile(path, []byte("this is not audio"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, _, _, err := ReadWAV(path); err == nil {
		t.Fatalf("expected error for invalid file")
	}
	if _, _, _, err := ReadWAV(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
