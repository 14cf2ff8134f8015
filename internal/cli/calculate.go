package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cpperf/internal/app"
)

var (
	calcCSVPath  string
	calcXLSXPath string
	calcJSONPath string
	calcWorkers  int
	calcEvents   bool
)

var calculateCmd = &cobra.Command{
	Use:   "calculate FILE...",
	Short: "Calculate warranted performance for one or more noon report files (.csv, .xlsx)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if calcWorkers < 0 {
			return fmt.Errorf("--workers cannot be negative")
		}

		opts := app.CalculateOptions{
			Paths:      args,
			CSVPath:    calcCSVPath,
			XLSXPath:   calcXLSXPath,
			JSONPath:   calcJSONPath,
			Workers:    calcWorkers,
			ShowEvents: calcEvents,
		}

		return getApp().Calculate(cmd.Context(), opts)
	},
}

func init() {
	calculateCmd.Flags().StringVar(&calcCSVPath, "csv", "", "Path to write the report as CSV")
	calculateCmd.Flags().StringVar(&calcXLSXPath, "xlsx", "", "Path to write the report and events as an Excel workbook")
	calculateCmd.Flags().StringVar(&calcJSONPath, "json", "", "Path to write the report, analytics and verdict as JSON")
	calculateCmd.Flags().IntVar(&calcWorkers, "workers", 0, "Files analysed concurrently (defaults to config)")
	calculateCmd.Flags().BoolVar(&calcEvents, "events", false, "Print the normalised event table")
}
