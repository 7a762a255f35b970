package looper

import (
	"strings"
	"testing"

	intloop "github.com/dwmuller/looper/internal/loop"
)

func TestRenderScriptFirstLoop(t *testing.T) {
	steps := []ScriptStep{
		{AtFrame: 0, Event: intloop.EventRecordToggle},
		{AtFrame: 4, Event: intloop.EventRecordToggle},
	}
	out, err := RenderScript(steps, 12, RenderOptions{
		Channels: 1,
		Input:    []float32{1, 2, 3, 4},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := []float32{0, 0, 0, 0, 1, 2, 3, 4, 1, 2, 3, 4}
	if len(out) != len(want) {
		t.Fatalf("render length = %d, want %d", len(out), len(want))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestRenderScriptUndoRedo(t *testing.T) {
	steps := []ScriptStep{
		{AtFrame: 0, Event: intloop.EventRecordToggle},
		{AtFrame: 2, Event: intloop.EventRecordToggle},
		{AtFrame: 4, Event: intloop.EventUndo},
		{AtFrame: 8, Event: intloop.EventRedo},
	}
	out, err := RenderScript(steps, 10, RenderOptions{
		Channels: 1,
		Input:    []float32{1, 2},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := []float32{0, 0, 1, 2, 0, 0, 0, 0, 1, 2}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestRenderScriptDefaultsToStereo(t *testing.T) {
	out, err := RenderScript(nil, 3, RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(out) != 6 {
		t.Fatalf("render length = %d, want 6 (3 stereo frames)", len(out))
	}
}

func TestRenderScriptRejectsBadInput(t *testing.T) {
	if _, err := RenderScript(nil, 0, RenderOptions{}); err == nil {
		t.Fatalf("expected error for zero length render")
	}
	steps := []ScriptStep{
		{AtFrame: 4, Event: intloop.EventRecordToggle},
		{AtFrame: 0, Event: intloop.EventRecordToggle},
	}
	if _, err := RenderScript(steps, 8, RenderOptions{Channels: 1}); err == nil {
		t.Fatalf("expected error for out of order steps")
	}
}

func TestParseScript(t *testing.T) {
	text := `
# two bar loop, then drop it
0 record
8 record   # save
12 UNDO

16 reset
`
	steps, err := ParseScript(strings.NewReader(text))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []ScriptStep{
		{AtFrame: 0, Event: intloop.EventRecordToggle},
		{AtFrame: 8, Event: intloop.EventRecordToggle},
		{AtFrame: 12, Event: intloop.EventUndo},
		{AtFrame: 16, Event: intloop.EventReset},
	}
	if len(steps) != len(want) {
		t.Fatalf("got %d steps, want %d", len(steps), len(want))
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("step %d = %+v, want %+v", i, steps[i], want[i])
		}
	}
}

func TestParseScriptErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"bad frame", "x record"},
		{"negative frame", "-4 record"},
		{"unknown event", "5 vibrato"},
		{"missing event", "10"},
		{"out of order", "10 record\n3 record"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseScript(strings.NewReader(tc.text)); err == nil {
				t.Fatalf("expected parse error for %q", tc.text)
			}
		})
	}
}

func TestParseScriptReportsLineNumber(t *testing.T) {
	_, err := ParseScript(strings.NewReader("0 record\n4 wobble"))
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("error %q should name line 2", err)
	}
}
