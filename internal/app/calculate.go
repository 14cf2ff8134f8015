package app

import (
	"context"
	"errors"
	"fmt"

	"cpperf/internal/ingest"
	"cpperf/internal/service"
)

// Calculate runs the performance calculation for every input file, prints
// the results and writes the requested exports.
func (a *App) Calculate(ctx context.Context, opts CalculateOptions) error {
	if len(opts.Paths) == 0 {
		return errors.New("at least one input file is required")
	}

	svc, err := a.newService(opts.Workers, a.newNotifier())
	if err != nil {
		return err
	}

	jobs := make([]service.Job, len(opts.Paths))
	for i, path := range opts.Paths {
		jobs[i] = service.Job{Path: path}
	}

	results := svc.RunBatch(ctx, jobs)
	multi := len(results) > 1

	var failed []error
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(a.Out)
		}
		if res.Err != nil {
			fmt.Fprintf(a.Out, "== %s ==\nerror: %v\n", res.Job.Path, res.Err)
			failed = append(failed, fmt.Errorf("%s: %w", res.Job.Path, res.Err))
			continue
		}

		out := res.Outcome
		a.printOutcome(out, svc.Params())
		if opts.ShowEvents {
			a.printEvents(out)
		}
		if err := a.export(out, opts, multi); err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", res.Job.Path, err))
		}
	}

	if len(failed) > 0 {
		a.Logger.Error().Int("failed", len(failed)).Int("total", len(results)).Msg("calculation finished with errors")
		return errors.Join(failed...)
	}
	a.Logger.Info().Int("files", len(results)).Msg("calculation finished")
	return nil
}

func (a *App) export(out *service.Outcome, opts CalculateOptions, multi bool) error {
	if opts.CSVPath != "" {
		path := outputPath(opts.CSVPath, out.Source, multi)
		if err := writeReportCSV(path, out); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		a.Logger.Info().Str("path", path).Msg("csv report written")
	}
	if opts.XLSXPath != "" {
		path := outputPath(opts.XLSXPath, out.Source, multi)
		if err := writeReportXLSX(path, out); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		a.Logger.Info().Str("path", path).Msg("xlsx report written")
	}
	if opts.JSONPath != "" {
		path := outputPath(opts.JSONPath, out.Source, multi)
		if err := writeReportJSON(path, out); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
		a.Logger.Info().Str("path", path).Msg("json report written")
	}
	return nil
}

// Stats prints weather and speed analytics for one file.
func (a *App) Stats(ctx context.Context, opts StatsOptions) error {
	table, err := ingest.ReadFile(opts.Path)
	if err != nil {
		return err
	}

	svc, err := a.newService(1, nil)
	if err != nil {
		return err
	}
	out, err := svc.Run(ctx, table)
	if err != nil {
		return err
	}

	a.printStats(out, svc.Params())
	return nil
}
