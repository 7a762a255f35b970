package looper

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	intloop "github.com/dwmuller/looper/internal/loop"
)

// ScriptStep fires one engine event when the render reaches AtFrame.
type ScriptStep struct {
	AtFrame int
	Event   intloop.Event
}

// RenderOptions configures an offline render. Zero values pick defaults:
// stereo, silent input, and an arena sized for the render length.
type RenderOptions struct {
	Channels   int
	ArenaWords int
	Input      []float32
}

// RenderScript runs the engine for totalFrames frames, firing the script's
// events at their frames, and returns the interleaved output. Steps must be
// in nondecreasing frame order. Input frames beyond len(opts.Input) are
// silent.
func RenderScript(steps []ScriptStep, totalFrames int, opts RenderOptions) ([]float32, error) {
	if totalFrames <= 0 {
		return nil, errors.New("looper: render length must be positive")
	}
	channels := opts.Channels
	if channels == 0 {
		channels = 2
	}
	arena := opts.ArenaWords
	if arena == 0 {
		// Enough for a saved take every other frame, the densest
		// layering any script can produce.
		arena = totalFrames*channels*2 + 1024
	}
	for i := 1; i < len(steps); i++ {
		if steps[i].AtFrame < steps[i-1].AtFrame {
			return nil, fmt.Errorf("looper: script step %d out of order (frame %d after %d)",
				i, steps[i].AtFrame, steps[i-1].AtFrame)
		}
	}

	engine := intloop.New(channels, arena)
	out := make([]float32, totalFrames*channels)
	next := 0
	for f := 0; f < totalFrames; f++ {
		for next < len(steps) && steps[next].AtFrame <= f {
			engine.HandleEvent(steps[next].Event)
			next++
		}
		var in []float32
		if end := (f + 1) * channels; end <= len(opts.Input) {
			in = opts.Input[f*channels : end]
		}
		engine.Tick(in, out[f*channels:(f+1)*channels])
	}
	return out, nil
}

var eventNames = map[string]intloop.Event{
	"record":  intloop.EventRecordToggle,
	"undo":    intloop.EventUndo,
	"pause":   intloop.EventPauseToggle,
	"restart": intloop.EventRestartToggle,
	"redo":    intloop.EventRedo,
	"reset":   intloop.EventReset,
}

// ParseScript reads a render script, one step per line:
//
//	# comment
//	0     record
//	48000 record
//	96000 undo
//
// Each step is a frame number and an event name (record, undo, pause,
// restart, redo, reset). Steps must be in nondecreasing frame order.
func ParseScript(r io.Reader) ([]ScriptStep, error) {
	var steps []ScriptStep
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("looper: script line %d: want \"frame event\", got %q", lineNo, line)
		}
		frame, err := strconv.Atoi(fields[0])
		if err != nil || frame < 0 {
			return nil, fmt.Errorf("looper: script line %d: bad frame %q", lineNo, fields[0])
		}
		ev, ok := eventNames[strings.ToLower(fields[1])]
		if !ok {
			return nil, fmt.Errorf("looper: script line %d: unknown event %q", lineNo, fields[1])
		}
		if n := len(steps); n > 0 && frame < steps[n-1].AtFrame {
			return nil, fmt.Errorf("looper: script line %d: frame %d before previous step", lineNo, frame)
		}
		steps = append(steps, ScriptStep{AtFrame: frame, Event: ev})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return steps, nil
}

// renderLayerCycle lays one layer's audio over a full loop cycle, silence
// where the layer does not sound.
func renderLayerCycle(li intloop.LayerInfo, loopLength, channels int) []float32 {
	out := make([]float32, loopLength*channels)
	for f := 0; f < loopLength; f++ {
		local := f%li.LoopLength - li.StartOffset
		if local < 0 || local >= li.Frames {
			continue
		}
		copy(out[f*channels:(f+1)*channels], li.Samples[local*channels:(local+1)*channels])
	}
	return out
}
