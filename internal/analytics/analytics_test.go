package analytics

import (
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"cpperf/internal/report"
	"cpperf/internal/segment"
	"cpperf/internal/voyage"
	"cpperf/internal/warranty"
)

var terms = warranty.Terms{
	WarrantedSpeedKnots:          13,
	WarrantedConsumptionMTPerDay: 19.9,
	FuelTolerancePct:             5,
	SpeedToleranceKnots:          0.5,
}

func ptr(v float64) *float64 { return &v }

func TestDescribe(t *testing.T) {
	s := Describe([]float64{2, 4, 9})
	if s.Count != 3 || s.Mean != 5 || s.Min != 2 || s.Max != 9 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if empty := Describe(nil); empty != (Summary{}) {
		t.Fatalf("empty sample should give zero summary, got %+v", empty)
	}
}

func TestWeatherSkipsExcluded(t *testing.T) {
	events := []voyage.Event{
		{Beaufort: ptr(3), WaveHeightM: ptr(1.0), WeatherStatus: voyage.WeatherGood},
		{Beaufort: ptr(7), WaveHeightM: ptr(3.5), WeatherStatus: voyage.WeatherBad},
		{WeatherStatus: voyage.WeatherUnclassified},
		{Beaufort: ptr(11), WaveHeightM: ptr(9), WeatherStatus: voyage.WeatherBad, Excluded: true},
	}

	ws := Weather(events)
	if ws.GoodDays != 1 || ws.BadDays != 1 || ws.UnclassifiedDays != 1 {
		t.Fatalf("unexpected counts %+v", ws)
	}
	if ws.Beaufort.Count != 2 || ws.Beaufort.Max != 7 || ws.Beaufort.Mean != 5 {
		t.Fatalf("unexpected beaufort summary %+v", ws.Beaufort)
	}
	if ws.WaveHeightM.Max != 3.5 {
		t.Fatalf("excluded wave height leaked into summary: %+v", ws.WaveHeightM)
	}
}

func TestSpeedStatsAndCorrelation(t *testing.T) {
	var events []voyage.Event
	for i, bf := range []float64{1, 2, 3, 4, 5, 6} {
		speed := 14 - float64(i)*0.5
		events = append(events, voyage.Event{
			DistanceNM:    speed * 24,
			SteamingHours: 24,
			FuelMT:        20,
			Beaufort:      ptr(bf),
			WaveHeightM:   ptr(bf / 2),
		})
	}
	// no steaming time, ignored
	events = append(events, voyage.Event{DistanceNM: 10, SteamingHours: 0, FuelMT: math.NaN()})

	ss := Speed(events, terms)
	if ss.Speed.Count != 6 {
		t.Fatalf("expected 6 speed samples, got %d", ss.Speed.Count)
	}
	// speeds 14, 13.5, 13, 12.5, 12, 11.5
	if math.Abs(ss.PctAtOrAboveWarranted-50) > 1e-9 {
		t.Fatalf("pct at/above warranted = %v", ss.PctAtOrAboveWarranted)
	}
	if math.Abs(ss.PctWithinTolerance-50) > 1e-9 {
		t.Fatalf("pct within tolerance = %v", ss.PctWithinTolerance)
	}
	if !ss.BeaufortCorrelation.Valid || ss.BeaufortCorrelation.Coefficient > -0.99 {
		t.Fatalf("expected perfect negative correlation, got %+v", ss.BeaufortCorrelation)
	}
	if !strings.HasPrefix(ss.BeaufortCorrelation.Interpretation, "strong negative") {
		t.Fatalf("unexpected interpretation %q", ss.BeaufortCorrelation.Interpretation)
	}
}

func TestCorrelationNeedsVariation(t *testing.T) {
	c := correlate([]float64{12, 12, 12}, []float64{3, 3, 3})
	if c.Valid {
		t.Fatalf("constant inputs should not produce a coefficient: %+v", c)
	}
	if c = correlate([]float64{12}, []float64{3}); c.Valid || c.Samples != 1 {
		t.Fatalf("single sample should be invalid: %+v", c)
	}
}

func TestInterpretBands(t *testing.T) {
	cases := map[float64]string{
		-0.8: "strong negative",
		-0.4: "moderate negative",
		-0.2: "weak negative",
		0.0:  "no significant",
		0.05: "no significant",
		0.6:  "unexpected positive",
		-0.5: "moderate negative",
		-0.1: "no significant",
	}
	for r, want := range cases {
		if got := interpret(r); !strings.HasPrefix(got, want) {
			t.Fatalf("interpret(%v) = %q, want prefix %q", r, got, want)
		}
	}
}

func TestJudgeSlowOverconsumingVoyage(t *testing.T) {
	tot := segment.Totals{DistanceNM: 2500, TimeHours: 208, FuelMT: 200, Events: 10}
	w, err := warranty.Compute(tot, tot, terms)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	rep := report.Assemble(segment.Breakdown{All: tot, Good: tot}, w)

	v := Judge(rep, terms, decimal.NewFromInt(500))
	if v.Time.Outcome != OutcomeTimeLost || v.Time.Hours.StringFixed(2) != "14.81" {
		t.Fatalf("unexpected time verdict %+v", v.Time)
	}
	if v.Time.Days.StringFixed(2) != "0.62" {
		t.Fatalf("time lost days = %s", v.Time.Days.StringFixed(2))
	}
	if v.Fuel.Outcome != OutcomeOverconsumption {
		t.Fatalf("unexpected fuel verdict %+v", v.Fuel)
	}
	if !v.Fuel.EstimatedCost.Equal(v.Fuel.QuantityMT.Mul(decimal.NewFromInt(500))) {
		t.Fatalf("cost %s should be quantity × price", v.Fuel.EstimatedCost)
	}
	if v.Speed.Outcome != OutcomeSlower || v.Speed.DifferenceKnots.StringFixed(2) != "-0.98" {
		t.Fatalf("unexpected speed verdict %+v", v.Speed)
	}

	lines := v.Lines(terms)
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "Time lost: 14.81 hrs") {
		t.Fatalf("unexpected lines %q", lines)
	}
	if !strings.Contains(lines[2], "0.98 kn slower") {
		t.Fatalf("unexpected speed line %q", lines[2])
	}
}

func TestJudgeWithinEnvelope(t *testing.T) {
	// 13kn at 19.9 MT/day sits exactly on the warranted figures.
	tot := segment.Totals{DistanceNM: 1300, TimeHours: 100, FuelMT: 19.9 * 100 / 24, Events: 4}
	w, err := warranty.Compute(tot, tot, terms)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	rep := report.Assemble(segment.Breakdown{All: tot, Good: tot}, w)

	v := Judge(rep, terms, decimal.NewFromInt(500))
	if v.Fuel.Outcome != OutcomeWithin || v.Speed.Outcome != OutcomeWithin {
		t.Fatalf("expected fuel and speed within, got %+v", v)
	}
	// 1300nm at 13kn against 104h allowed at 12.5kn
	if v.Time.Outcome != OutcomeTimeGained || v.Time.Hours.StringFixed(2) != "4.00" {
		t.Fatalf("unexpected time verdict %+v", v.Time)
	}
	if !v.Fuel.EstimatedCost.IsZero() {
		t.Fatalf("within envelope should carry no cost, got %s", v.Fuel.EstimatedCost)
	}
}

func TestMoney(t *testing.T) {
	cases := map[string]string{
		"0":         "0.00",
		"999.5":     "999.50",
		"12937.5":   "12,937.50",
		"1234567.8": "1,234,567.80",
		"-4200":     "-4,200.00",
	}
	for in, want := range cases {
		if got := money(decimal.RequireFromString(in)); got != want {
			t.Fatalf("money(%s) = %s, want %s", in, got, want)
		}
	}
}
