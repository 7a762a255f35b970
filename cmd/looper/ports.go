package main

import (
	"fmt"

	"github.com/spf13/cobra"

	intmidi "github.com/dwmuller/looper/internal/midi"
)

var portsCmd = &cobra.Command{
	Use:          "ports",
	Short:        "List available MIDI ports",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPorts()
	},
}

func runPorts() error {
	defer intmidi.CloseDriver()
	fmt.Println("inputs:")
	ins := intmidi.InputNames()
	if len(ins) == 0 {
		fmt.Println("  (none)")
	}
	// Bus numbers in the profile are 1 based.
	for i, name := range ins {
		fmt.Printf("  %d: %s\n", i+1, name)
	}
	fmt.Println("outputs:")
	outs := intmidi.OutputNames()
	if len(outs) == 0 {
		fmt.Println("  (none)")
	}
	for i, name := range outs {
		fmt.Printf("  %d: %s\n", i+1, name)
	}
	return nil
}
