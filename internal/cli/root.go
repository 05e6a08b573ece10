// Package cli implements the focus command line client.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type globalOptions struct {
	configPath string
	offline    bool
}

// NewRootCommand creates the focus command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "focus",
		Short: "Pomodoro timer synchronized with time tracking",
		Long: `focus runs a Pomodoro focus/break timer alongside a time-tracking session.
Both timers survive restarts: the Pomodoro is restored from a local snapshot and
the time-tracking session is loaded from the server (or a local database with --offline).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is <user config dir>/focussync/focus.yaml)")
	rootCmd.PersistentFlags().BoolVar(&opts.offline, "offline", false, "track time in a local database instead of the server")

	rootCmd.AddCommand(
		newRegisterCommand(opts),
		newLoginCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newStartCommand(opts),
		newTrackCommand(opts),
		newStopCommand(opts),
		newPauseCommand(opts),
		newResumeCommand(opts),
		newCancelCommand(opts),
		newStatusCommand(opts),
		newStatsCommand(opts),
		newHistoryCommand(opts),
		newPomodoroCommand(opts),
		newWatchCommand(opts),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
