package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	version  = "dev"
	revision = "unknown"
)

func main() {
	root := &cobra.Command{
		Use:   "chime",
		Short: "Pushover and desktop notifications for Claude Code sessions",
		Long: `Chime is a Claude Code lifecycle hook. It caches submitted prompts per
session, summarizes them when the session stops and fans notifications out
to Pushover and the local desktop concurrently.

Invoked without a subcommand it behaves like "chime hook": one JSON event
read from stdin.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runHook,
	}

	root.AddCommand(
		newHookCmd(),
		newInstallCmd(),
		newDoctorCmd(),
		newHistoryCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "chime: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("chime %s (%s)\n", version, revision)
		},
	}
}
