package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dwmuller/looper"
	intconfig "github.com/dwmuller/looper/internal/config"
)

var (
	argScript  string
	argOut     string
	argSeconds float64
	argInput   string

	renderCmd = &cobra.Command{
		Use:   "render",
		Short: "Render a trigger script offline to a WAV file",
		Long: `render drives the loop engine from a script instead of live triggers.
Each script line is a frame number and an event name:

    0      record
    96000  record   # save a two second loop at 48 kHz
    192000 undo

Input audio comes from --input when given, otherwise silence.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender()
		},
	}
)

func init() {
	renderCmd.Flags().StringVarP(&argScript, "script", "s", "", "path to a trigger script, REQUIRED")
	renderCmd.Flags().StringVarP(&argOut, "out", "o", "loop.wav", "output WAV path")
	renderCmd.Flags().Float64Var(&argSeconds, "seconds", 0, "render length in seconds (default: one second past the last step)")
	renderCmd.Flags().StringVar(&argInput, "input", "", "WAV file fed to the engine as live input")
}

func runRender() error {
	initLogger(argDebug)
	profile, err := intconfig.Load(argConfig)
	if err != nil {
		return err
	}
	if argScript == "" {
		return errors.New("--script is required")
	}
	f, err := os.Open(argScript)
	if err != nil {
		return err
	}
	steps, err := looper.ParseScript(f)
	f.Close()
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		return fmt.Errorf("%s has no steps", argScript)
	}

	rate := profile.SampleRate
	channels := profile.Channels
	var input []float32
	if argInput != "" {
		input, rate, channels, err = looper.ReadWAV(argInput)
		if err != nil {
			return err
		}
	}

	totalFrames := int(argSeconds * float64(rate))
	if totalFrames <= 0 {
		totalFrames = steps[len(steps)-1].AtFrame + rate
	}

	out, err := looper.RenderScript(steps, totalFrames, looper.RenderOptions{
		Channels:   channels,
		ArenaWords: int(profile.ArenaSeconds*float64(rate)) * channels,
		Input:      input,
	})
	if err != nil {
		return err
	}
	if err := looper.WriteWAV(argOut, out, rate, channels, profile.BitDepth); err != nil {
		return err
	}
	slog.Info("rendered", "frames", totalFrames, "rate", rate, "channels", channels, "path", argOut)
	return nil
}
