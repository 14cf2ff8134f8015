package cli

import (
	"github.com/spf13/cobra"

	"cpperf/internal/app"
)

var statsCmd = &cobra.Command{
	Use:   "stats FILE",
	Short: "Show weather and speed statistics for a noon report file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Stats(cmd.Context(), app.StatsOptions{Path: args[0]})
	},
}
