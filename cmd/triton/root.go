package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "triton",
	Short: "Triton - declarative action rule engine for chat events",
	Long: `Triton turns chat activity into structured records.

Operators declare rules that react to trigger events:
  - Emoji reactions on messages
  - Keywords in message text
  - Hashtags in message text
  - Plain messages

A matched rule dispatches its action: create or update a task, calendar
event, bill, or note, send a message back to the chat, or add a label.
Every dispatch attempt is recorded in an append-only execution history.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
