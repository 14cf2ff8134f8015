package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"cpperf/internal/analytics"
	"cpperf/internal/exclusion"
	"cpperf/internal/ingest"
	"cpperf/internal/report"
	"cpperf/internal/segment"
	"cpperf/internal/voyage"
	"cpperf/internal/warranty"
	"cpperf/internal/weather"
)

// DefaultBunkerPrice is used to value fuel differences when none is configured.
var DefaultBunkerPrice = decimal.NewFromInt(500)

// Params is the parameter snapshot of one run.
type Params struct {
	Terms       warranty.Terms     `json:"charterparty"`
	Thresholds  weather.Thresholds `json:"weather"`
	Exclusions  []exclusion.Period `json:"exclusions"`
	BunkerPrice decimal.Decimal    `json:"bunker_price_usd_per_mt"`
	Voyage      voyage.Info        `json:"voyage"`
}

// Validate checks every parameter group.
func (p Params) Validate() error {
	if err := p.Terms.Validate(); err != nil {
		return err
	}
	if err := p.Thresholds.Validate(); err != nil {
		return err
	}
	if _, err := exclusion.NewSet(p.Exclusions); err != nil {
		return err
	}
	if p.BunkerPrice.IsNegative() {
		return fmt.Errorf("bunker price must not be negative, got %s", p.BunkerPrice)
	}
	if err := p.Voyage.Validate(); err != nil {
		return err
	}
	return nil
}

// Clone returns a copy that shares no mutable state with p.
func (p Params) Clone() Params {
	out := p
	out.Exclusions = make([]exclusion.Period, len(p.Exclusions))
	copy(out.Exclusions, p.Exclusions)
	return out
}

// Outcome is everything one calculation run produces.
type Outcome struct {
	RunID    string
	Source   string
	Voyage   voyage.Info
	Report   *report.PerformanceReport
	Events   []voyage.Event
	Warnings []voyage.RowCoercionWarning
	// Notices are run-level problems that are not tied to a single cell.
	Notices   []string
	Dropped   int
	Breakdown segment.Breakdown
	Warranty  warranty.Result
	Weather   analytics.WeatherStats
	Speed     analytics.SpeedStats
	Verdict   analytics.Verdict
}

// Analyze runs the whole pipeline over a table. It has no side effects and
// repeated calls with equal inputs give equal outcomes.
func Analyze(table *ingest.Table, params Params) (*Outcome, error) {
	if err := params.Terms.Validate(); err != nil {
		return nil, err
	}
	if err := params.Thresholds.Validate(); err != nil {
		return nil, err
	}
	if err := params.Voyage.Validate(); err != nil {
		return nil, err
	}
	excluded, err := exclusion.NewSet(params.Exclusions)
	if err != nil {
		return nil, err
	}

	normalized, err := voyage.Normalize(table)
	if err != nil {
		return nil, err
	}
	events := normalized.Events

	weather.ClassifyAll(events, params.Thresholds)
	excluded.Apply(events)

	breakdown := segment.Aggregate(events)
	result, err := warranty.Compute(breakdown.All, breakdown.Good, params.Terms)
	if err != nil {
		return nil, err
	}
	rep := report.Assemble(breakdown, result)
	if err := rep.Check(); err != nil {
		return nil, err
	}

	price := params.BunkerPrice
	if price.IsZero() {
		price = DefaultBunkerPrice
	}

	return &Outcome{
		Source:    normalized.Source,
		Voyage:    params.Voyage,
		Report:    rep,
		Events:    events,
		Warnings:  normalized.Warnings,
		Notices:   notices(events, excluded, params.Voyage.Passage),
		Dropped:   normalized.Dropped,
		Breakdown: breakdown,
		Warranty:  result,
		Weather:   analytics.Weather(events),
		Speed:     analytics.Speed(events, params.Terms),
		Verdict:   analytics.Judge(rep, params.Terms, price),
	}, nil
}

func notices(events []voyage.Event, excluded *exclusion.Set, passage voyage.Passage) []string {
	var out []string
	if excluded.Len() > 0 {
		unstamped := 0
		for _, e := range events {
			if e.Timestamp == nil {
				unstamped++
			}
		}
		switch {
		case unstamped == 0:
		case unstamped == len(events):
			out = append(out, "exclusion periods are set but no event carries a timestamp; nothing was excluded")
		default:
			out = append(out, fmt.Sprintf("%d events carry no timestamp and cannot be excluded", unstamped))
		}
	}
	if rows := passage.Outside(events); len(rows) > 0 {
		labels := make([]string, len(rows))
		for i, r := range rows {
			labels[i] = strconv.Itoa(r)
		}
		out = append(out, fmt.Sprintf("%d of %d events fall outside the COSP-EOSP window (rows %s)", len(rows), len(events), strings.Join(labels, ", ")))
	}
	return out
}
