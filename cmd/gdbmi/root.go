package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gdbmi",
	Short: "Parse a GDB/MI output transcript",
	Long: `gdbmi reads a GDB/MI output transcript, as produced by "gdb --interpreter=mi",
and renders the stream, async, result, and prompt events the parser core
delivers. It does not spawn gdb and does not maintain any conversational
state; it is a thin adapter over github.com/Lockdog88/gdbwire/mi for
inspecting and debugging a transcript offline.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
