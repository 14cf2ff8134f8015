package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"cpperf/internal/alerting"
	"cpperf/internal/ingest"
	"cpperf/internal/report"
	"cpperf/internal/voyage"
	"cpperf/internal/warranty"
)

// Options tune the runner.
type Options struct {
	Workers int
}

// Service runs the calculation pipeline for one or many voyage tables.
type Service struct {
	params   Params
	workers  int
	notifier alerting.Notifier
	logger   zerolog.Logger
}

// New validates params and constructs the runner. notifier may be nil.
func New(params Params, opts Options, notifier alerting.Notifier, logger zerolog.Logger) (*Service, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Service{
		params:   params.Clone(),
		workers:  workers,
		notifier: notifier,
		logger:   logger.With().Str("component", "service").Logger(),
	}, nil
}

// Params returns a copy of the parameters every run uses.
func (s *Service) Params() Params {
	return s.params.Clone()
}

// Run analyses a single table with the service parameters.
func (s *Service) Run(ctx context.Context, table *ingest.Table) (*Outcome, error) {
	return s.RunWith(ctx, table, s.params)
}

// RunWith analyses a table with explicit parameters, e.g. per-request overrides.
func (s *Service) RunWith(ctx context.Context, table *ingest.Table, params Params) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	source := ""
	if table != nil {
		source = table.Source
	}
	logCtx := s.logger.With().Str("run_id", runID).Str("source", source)
	if title := params.Voyage.Title(); title != "" {
		logCtx = logCtx.Str("voyage", title)
	}
	log := logCtx.Logger()
	started := time.Now()

	out, err := Analyze(table, params)
	if err != nil {
		var schemaErr *voyage.SchemaError
		var degenerate *warranty.DegenerateWarrantyError
		var nonFinite *report.NonFiniteError
		switch {
		case errors.As(err, &schemaErr):
			log.Error().Strs("missing", schemaErr.Missing).Msg("table rejected")
		case errors.As(err, &degenerate):
			log.Error().Str("param", degenerate.Param).Float64("value", degenerate.Value).Msg("warranty terms rejected")
		case errors.As(err, &nonFinite):
			log.Error().Str("metric", nonFinite.Key).Msg("quantities overflow the report")
		default:
			log.Error().Err(err).Msg("analysis failed")
		}
		return nil, err
	}
	out.RunID = runID

	for _, w := range out.Warnings {
		log.Warn().Int("row", w.Row).Str("column", w.Column).Str("value", w.Value).Msg(w.Reason)
	}
	for _, n := range out.Notices {
		log.Warn().Msg(n)
	}
	log.Info().
		Int("events", len(out.Events)).
		Int("dropped", out.Dropped).
		Int("excluded", out.Breakdown.Excluded).
		Int("warnings", len(out.Warnings)).
		Dur("elapsed", time.Since(started)).
		Msg("voyage analysed")

	s.notify(ctx, out, params)
	return out, nil
}

func (s *Service) notify(ctx context.Context, out *Outcome, params Params) {
	if s.notifier == nil {
		return
	}
	note := alerting.Notification{
		RunID:  out.RunID,
		Source: out.Source,
		Title:  out.Voyage.Title(),
		Lines:  out.Verdict.Lines(params.Terms),
	}
	if err := s.notifier.Notify(ctx, note); err != nil {
		s.logger.Error().Err(err).Str("run_id", out.RunID).Msg("failed to dispatch verdict")
	}
}

// Job is one file queued for a batch run.
type Job struct {
	Path string
}

// Result pairs a job with its outcome or error.
type Result struct {
	Job     Job
	Outcome *Outcome
	Err     error
}

// RunBatch reads and analyses every job with at most Workers in flight.
// Results keep the order of jobs; a failing job does not stop the others.
func (s *Service) RunBatch(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, job := range jobs {
		results[i].Job = job
		if gctx.Err() != nil {
			results[i].Err = gctx.Err()
			continue
		}
		i, job := i, job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			table, err := ingest.ReadFile(job.Path)
			if err != nil {
				s.logger.Error().Err(err).Str("path", job.Path).Msg("read failed")
				results[i].Err = fmt.Errorf("read %s: %w", job.Path, err)
				return nil
			}
			results[i].Outcome, results[i].Err = s.Run(gctx, table)
			return nil
		})
	}

	_ = g.Wait()
	return results
}
