package cli

import (
	"github.com/spf13/cobra"

	"focussync/internal/tui"
)

func newWatchCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live view of both timers",
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			return tui.Run(cmd.Context(), s.coordinator)
		}),
	}
}
