package app

import (
	"fmt"
	"text/tabwriter"

	"cpperf/internal/analytics"
	"cpperf/internal/service"
)

func (a *App) printOutcome(out *service.Outcome, params service.Params) {
	fmt.Fprintf(a.Out, "== %s ==\n", out.Source)
	a.printVoyage(out)

	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Metric\tValue\tUnit")
	for _, m := range out.Report.Metrics() {
		fmt.Fprintf(writer, "%s\t%s\t%s\n", m.Label, m.String(), m.Unit)
	}
	writer.Flush()

	if out.Dropped > 0 {
		fmt.Fprintf(a.Out, "\n%d non-participating rows ignored\n", out.Dropped)
	}
	if len(out.Warnings) > 0 {
		fmt.Fprintf(a.Out, "\nWarnings (%d):\n", len(out.Warnings))
		for _, w := range out.Warnings {
			fmt.Fprintf(a.Out, "  %s\n", w.String())
		}
	}
	for _, n := range out.Notices {
		fmt.Fprintf(a.Out, "\nNote: %s\n", n)
	}

	fmt.Fprintln(a.Out, "\nVerdict:")
	for _, line := range out.Verdict.Lines(params.Terms) {
		fmt.Fprintf(a.Out, "  %s\n", line)
	}
}

func (a *App) printVoyage(out *service.Outcome) {
	fields := out.Voyage.Fields()
	if len(fields) == 0 {
		return
	}
	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	for _, f := range fields {
		fmt.Fprintf(writer, "%s\t%s\n", f.Label, f.Value)
	}
	writer.Flush()
	fmt.Fprintln(a.Out)
}

func (a *App) printEvents(out *service.Outcome) {
	fmt.Fprintln(a.Out, "\nEvents:")
	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Row\tType\tTime (UTC)\tDist nm\tHrs\tFuel MT\tBF\tWave m\tWeather\tExcluded\tFlagged")
	for _, e := range out.Events {
		rec := eventRecord(e)
		excluded, flagged := "", ""
		if e.Excluded {
			excluded = "yes"
		}
		if e.Flagged {
			flagged = "!"
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			rec[0], rec[1], rec[2], rec[3], rec[4], rec[5], rec[6], rec[7], rec[8], excluded, flagged)
	}
	writer.Flush()
}

func (a *App) printStats(out *service.Outcome, params service.Params) {
	fmt.Fprintf(a.Out, "== %s ==\n", out.Source)
	if title := out.Voyage.Title(); title != "" {
		fmt.Fprintln(a.Out, title)
	}

	ws := out.Weather
	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Weather\tCount\tMean\tMin\tMax")
	printSummary(writer, "Beaufort", ws.Beaufort)
	printSummary(writer, "Wave height (m)", ws.WaveHeightM)
	writer.Flush()
	fmt.Fprintf(a.Out, "Good weather days: %d  Bad weather days: %d  Unclassified: %d\n",
		ws.GoodDays, ws.BadDays, ws.UnclassifiedDays)
	fmt.Fprintf(a.Out, "Thresholds: BF <= %d, wave <= %.1f m\n\n",
		params.Thresholds.MaxBeaufort, params.Thresholds.MaxWaveHeightM)

	ss := out.Speed
	writer = tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Speed\tCount\tMean\tMin\tMax")
	printSummary(writer, "Speed (kn)", ss.Speed)
	writer.Flush()
	fmt.Fprintf(a.Out, "At or above warranted %.1f kn: %.1f%%\n", params.Terms.WarrantedSpeedKnots, ss.PctAtOrAboveWarranted)
	fmt.Fprintf(a.Out, "Within %.1f-%.1f kn: %.1f%%\n", params.Terms.MinSpeed(), params.Terms.MaxSpeed(), ss.PctWithinTolerance)
	printCorrelation(a, "Speed vs Beaufort", ss.BeaufortCorrelation)
	printCorrelation(a, "Speed vs wave height", ss.WaveCorrelation)
}

func printSummary(w *tabwriter.Writer, name string, s analytics.Summary) {
	if s.Count == 0 {
		fmt.Fprintf(w, "%s\t0\t-\t-\t-\n", name)
		return
	}
	fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.2f\n", name, s.Count, s.Mean, s.Min, s.Max)
}

func printCorrelation(a *App, name string, c analytics.Correlation) {
	if !c.Valid {
		fmt.Fprintf(a.Out, "%s: %s\n", name, c.Interpretation)
		return
	}
	fmt.Fprintf(a.Out, "%s: r=%.3f (%s)\n", name, c.Coefficient, c.Interpretation)
}
