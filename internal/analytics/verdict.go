package analytics

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"cpperf/internal/report"
	"cpperf/internal/warranty"
)

// Outcome values used by the verdict.
const (
	OutcomeWithin          = "within"
	OutcomeTimeGained      = "gained"
	OutcomeTimeLost        = "lost"
	OutcomeFuelSaving      = "saving"
	OutcomeOverconsumption = "overconsumption"
	OutcomeFaster          = "faster"
	OutcomeSlower          = "slower"
)

var hoursPerDay = decimal.NewFromInt(24)

// Verdict is the charterer-facing reading of a performance report.
type Verdict struct {
	Time  TimeVerdict  `json:"time"`
	Fuel  FuelVerdict  `json:"fuel"`
	Speed SpeedVerdict `json:"speed"`
}

// TimeVerdict reports time gained or lost against the warranted envelope.
type TimeVerdict struct {
	Outcome string          `json:"outcome"`
	Hours   decimal.Decimal `json:"hours"`
	Days    decimal.Decimal `json:"days"`
}

// FuelVerdict reports fuel saved or overconsumed and what it is worth.
type FuelVerdict struct {
	Outcome       string          `json:"outcome"`
	QuantityMT    decimal.Decimal `json:"quantity_mt"`
	BunkerPrice   decimal.Decimal `json:"bunker_price_usd_per_mt"`
	EstimatedCost decimal.Decimal `json:"estimated_value_usd"`
}

// SpeedVerdict compares good weather speed with the warranted speed.
type SpeedVerdict struct {
	Outcome         string          `json:"outcome"`
	GoodWxSpeed     decimal.Decimal `json:"good_wx_speed_knots"`
	DifferenceKnots decimal.Decimal `json:"difference_knots"`
}

// Judge reads a report against the terms. Figures are rounded to two places
// before comparing so the verdict agrees with the displayed report.
func Judge(rep *report.PerformanceReport, terms warranty.Terms, bunkerPrice decimal.Decimal) Verdict {
	var v Verdict

	gained := rounded(rep, report.KeyTimeGained)
	lost := rounded(rep, report.KeyTimeLost)
	switch {
	case gained.IsPositive():
		v.Time = TimeVerdict{Outcome: OutcomeTimeGained, Hours: gained, Days: gained.Div(hoursPerDay).Round(2)}
	case lost.IsPositive():
		v.Time = TimeVerdict{Outcome: OutcomeTimeLost, Hours: lost, Days: lost.Div(hoursPerDay).Round(2)}
	default:
		v.Time = TimeVerdict{Outcome: OutcomeWithin, Hours: decimal.Zero, Days: decimal.Zero}
	}

	saving := rounded(rep, report.KeyFuelSaving)
	over := rounded(rep, report.KeyFuelOverconsumption)
	v.Fuel = FuelVerdict{Outcome: OutcomeWithin, QuantityMT: decimal.Zero, BunkerPrice: bunkerPrice, EstimatedCost: decimal.Zero}
	switch {
	case saving.IsPositive():
		v.Fuel.Outcome = OutcomeFuelSaving
		v.Fuel.QuantityMT = saving
	case over.IsPositive():
		v.Fuel.Outcome = OutcomeOverconsumption
		v.Fuel.QuantityMT = over
	}
	v.Fuel.EstimatedCost = v.Fuel.QuantityMT.Mul(bunkerPrice).Round(2)

	goodSpeed := rounded(rep, report.KeyGoodSpeed)
	diff := goodSpeed.Sub(decimal.NewFromFloat(terms.WarrantedSpeedKnots))
	v.Speed = SpeedVerdict{GoodWxSpeed: goodSpeed, DifferenceKnots: diff}
	switch {
	case diff.Abs().LessThanOrEqual(decimal.NewFromFloat(terms.SpeedToleranceKnots)):
		v.Speed.Outcome = OutcomeWithin
	case diff.IsPositive():
		v.Speed.Outcome = OutcomeFaster
	default:
		v.Speed.Outcome = OutcomeSlower
	}

	return v
}

// Lines renders the verdict as short sentences.
func (v Verdict) Lines(terms warranty.Terms) []string {
	lines := make([]string, 0, 3)

	switch v.Time.Outcome {
	case OutcomeTimeGained:
		lines = append(lines, fmt.Sprintf("Time gained: %s hrs (%s days) against the maximum time allowed", v.Time.Hours.StringFixed(2), v.Time.Days.StringFixed(2)))
	case OutcomeTimeLost:
		lines = append(lines, fmt.Sprintf("Time lost: %s hrs (%s days) against the minimum time allowed", v.Time.Hours.StringFixed(2), v.Time.Days.StringFixed(2)))
	default:
		lines = append(lines, "Time performance within the allowed range")
	}

	switch v.Fuel.Outcome {
	case OutcomeFuelSaving:
		lines = append(lines, fmt.Sprintf("Fuel saved: %s MT (est. $%s at $%s/MT)", v.Fuel.QuantityMT.StringFixed(2), money(v.Fuel.EstimatedCost), v.Fuel.BunkerPrice.String()))
	case OutcomeOverconsumption:
		lines = append(lines, fmt.Sprintf("Fuel overconsumed: %s MT (est. $%s at $%s/MT)", v.Fuel.QuantityMT.StringFixed(2), money(v.Fuel.EstimatedCost), v.Fuel.BunkerPrice.String()))
	default:
		lines = append(lines, "Fuel consumption within the allowed range")
	}

	warranted := decimal.NewFromFloat(terms.WarrantedSpeedKnots)
	switch v.Speed.Outcome {
	case OutcomeFaster:
		lines = append(lines, fmt.Sprintf("Good weather speed %s kn, %s kn faster than warranted %s kn", v.Speed.GoodWxSpeed.StringFixed(2), v.Speed.DifferenceKnots.StringFixed(2), warranted))
	case OutcomeSlower:
		lines = append(lines, fmt.Sprintf("Good weather speed %s kn, %s kn slower than warranted %s kn", v.Speed.GoodWxSpeed.StringFixed(2), v.Speed.DifferenceKnots.Abs().StringFixed(2), warranted))
	default:
		lines = append(lines, fmt.Sprintf("Good weather speed %s kn within tolerance of warranted %s kn", v.Speed.GoodWxSpeed.StringFixed(2), warranted))
	}

	return lines
}

func rounded(rep *report.PerformanceReport, key string) decimal.Decimal {
	m, ok := rep.Metric(key)
	if !ok || math.IsNaN(m.Value) {
		return decimal.Zero
	}
	return m.Rounded()
}

// money formats a two-place amount with thousands separators.
func money(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}
