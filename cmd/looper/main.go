package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dwmuller/looper"
	intconfig "github.com/dwmuller/looper/internal/config"
	intmidi "github.com/dwmuller/looper/internal/midi"
	inttui "github.com/dwmuller/looper/internal/tui"
)

var (
	argConfig    string
	argDebug     bool
	argNoTUI     bool
	argNoMonitor bool
	argImport    string

	rootCmd = &cobra.Command{
		Use:   "looper",
		Short: "Live audio looper driven by MIDI program changes",
		Long: `looper records layered loops from the default audio input. Triggers
arrive as MIDI program changes or TUI keys: toggle recording, undo and
redo layers, pause, restart and reset.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&argConfig, "config", "c", "", "path to a profile file (default: looper.yaml, ~/.config/looper/profile.yaml)")
	rootCmd.PersistentFlags().BoolVar(&argDebug, "debug", false, "verbose logging")
	rootCmd.Flags().BoolVar(&argNoTUI, "no-tui", false, "run headless, MIDI triggers only")
	rootCmd.Flags().BoolVar(&argNoMonitor, "no-monitor", false, "do not pass live input through to the output")
	rootCmd.Flags().StringVar(&argImport, "import", "", "WAV file to load as the base layer")
	rootCmd.AddCommand(renderCmd, portsCmd)
}

// initLogger configures the shared slog logger and calls slog.SetDefault so
// everything in the process logs through one handler.
func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	slog.SetDefault(slog.New(h))
}

func runLive() error {
	initLogger(argDebug)
	defer intmidi.CloseDriver()
	profile, err := intconfig.Load(argConfig)
	if err != nil {
		return err
	}
	sess, err := looper.NewSession(profile, looper.WithMonitor(!argNoMonitor))
	if err != nil {
		return err
	}
	if argImport != "" {
		if err := sess.ImportLoop(argImport); err != nil {
			return err
		}
		slog.Info("base layer loaded", "path", argImport)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if argNoTUI {
		return sess.RunLive(ctx)
	}

	p := tea.NewProgram(inttui.NewModel(sess), tea.WithAltScreen())
	audioErr := make(chan error, 1)
	go func() {
		err := sess.RunLive(ctx)
		audioErr <- err
		if err != nil {
			p.Quit()
		}
	}()
	if _, err := p.Run(); err != nil {
		cancel()
		<-audioErr
		return err
	}
	cancel()
	if err := <-audioErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
