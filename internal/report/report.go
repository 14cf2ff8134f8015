package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"cpperf/internal/segment"
	"cpperf/internal/warranty"
)

// Metric keys, in report order.
const (
	KeyTotalDistance        = "total_distance_nm"
	KeyTotalTime            = "total_time_hours"
	KeyTotalFuel            = "total_fuel_mt"
	KeyVoyageAvgSpeed       = "voyage_avg_speed_knots"
	KeyGoodDistance         = "good_wx_distance_nm"
	KeyGoodTime             = "good_wx_time_hours"
	KeyGoodSpeed            = "good_wx_speed_knots"
	KeyGoodFuel             = "good_wx_fuel_mt"
	KeyGoodFuelRateHour     = "good_wx_fuel_rate_mt_per_hour"
	KeyGoodFuelRateDay      = "good_wx_fuel_rate_mt_per_day"
	KeyBadDistance          = "bad_wx_distance_nm"
	KeyBadTime              = "bad_wx_time_hours"
	KeyBadFuel              = "bad_wx_fuel_mt"
	KeyBadSpeed             = "bad_wx_speed_knots"
	KeyUnclassifiedDistance = "unclassified_distance_nm"
	KeyUnclassifiedTime     = "unclassified_time_hours"
	KeyUnclassifiedFuel     = "unclassified_fuel_mt"
	KeyFuelTolerance        = "fuel_tolerance_mt"
	KeyWarrantedUpper       = "warranted_upper_mt_per_day"
	KeyWarrantedLower       = "warranted_lower_mt_per_day"
	KeyProjectedConsumption = "projected_voyage_consumption_mt"
	KeyAdjustedSpeed        = "adjusted_speed_knots"
	KeyMaxWarrantedFuel     = "max_warranted_consumption_mt"
	KeyMinWarrantedFuel     = "min_warranted_consumption_mt"
	KeyFuelOverconsumption  = "fuel_overconsumption_mt"
	KeyFuelSaving           = "fuel_saving_mt"
	KeyTimeAtAdjustedSpeed  = "time_at_adjusted_speed_hours"
	KeyMaxTime              = "max_time_hours"
	KeyMinTime              = "min_time_hours"
	KeyTimeGained           = "time_gained_hours"
	KeyTimeLost             = "time_lost_hours"
	KeyEventsTotal          = "events_total"
	KeyEventsGood           = "events_good"
	KeyEventsBad            = "events_bad"
	KeyEventsUnclassified   = "events_unclassified"
	KeyEventsExcluded       = "events_excluded"
)

// Metric is one named figure of the report.
type Metric struct {
	Key   string
	Label string
	Unit  string
	// Places is the number of decimals used for display.
	Places int32
	Value  float64
}

// Rounded returns the value rounded half away from zero to Places decimals.
func (m Metric) Rounded() decimal.Decimal {
	return decimal.NewFromFloat(m.Value).Round(m.Places)
}

// String renders the rounded value with a fixed number of decimals.
func (m Metric) String() string {
	return m.Rounded().StringFixed(m.Places)
}

// PerformanceReport is the read-only result of one calculation run.
type PerformanceReport struct {
	metrics []Metric
	index   map[string]int
}

// Assemble packs segment totals and warranty figures into a report.
func Assemble(b segment.Breakdown, w warranty.Result) *PerformanceReport {
	metrics := []Metric{
		{KeyTotalDistance, "Total Distance", "nm", 2, b.All.DistanceNM},
		{KeyTotalTime, "Total Steaming Time", "hrs", 2, b.All.TimeHours},
		{KeyTotalFuel, "Total ME Fuel", "MT", 2, b.All.FuelMT},
		{KeyVoyageAvgSpeed, "Voyage Avg Speed", "knots", 2, b.All.AvgSpeedKnots()},
		{KeyGoodDistance, "Good Wx Distance", "nm", 2, b.Good.DistanceNM},
		{KeyGoodTime, "Good Wx Time", "hrs", 2, b.Good.TimeHours},
		{KeyGoodSpeed, "Good Wx Speed", "knots", 2, b.Good.AvgSpeedKnots()},
		{KeyGoodFuel, "Good Wx FO Cons", "MT", 2, b.Good.FuelMT},
		{KeyGoodFuelRateHour, "Good Wx FO Rate", "MT/hr", 3, b.Good.FuelRatePerHour()},
		{KeyGoodFuelRateDay, "Good Wx FO Rate", "MT/day", 3, b.Good.FuelRatePerDay()},
		{KeyBadDistance, "Bad Wx Distance", "nm", 2, b.Bad.DistanceNM},
		{KeyBadTime, "Bad Wx Time", "hrs", 2, b.Bad.TimeHours},
		{KeyBadFuel, "Bad Wx FO Cons", "MT", 2, b.Bad.FuelMT},
		{KeyBadSpeed, "Bad Wx Speed", "knots", 2, b.Bad.AvgSpeedKnots()},
		{KeyUnclassifiedDistance, "Unclassified Distance", "nm", 2, b.Unclassified.DistanceNM},
		{KeyUnclassifiedTime, "Unclassified Time", "hrs", 2, b.Unclassified.TimeHours},
		{KeyUnclassifiedFuel, "Unclassified FO Cons", "MT", 2, b.Unclassified.FuelMT},
		{KeyFuelTolerance, "Fuel Tolerance", "MT/day", 3, w.FuelToleranceMT},
		{KeyWarrantedUpper, "Warranted Cons + Tolerance", "MT/day", 3, w.WarrantedUpperMTPerDay},
		{KeyWarrantedLower, "Warranted Cons - Tolerance", "MT/day", 3, w.WarrantedLowerMTPerDay},
		{KeyProjectedConsumption, "Entire Voyage Cons via Good Wx Perf", "MT", 2, w.ProjectedConsumptionMT},
		{KeyAdjustedSpeed, "Adjusted Speed", "knots", 2, w.AdjustedSpeedKnots},
		{KeyMaxWarrantedFuel, "Max Warranted FO", "MT", 2, w.MaxWarrantedConsumption},
		{KeyMinWarrantedFuel, "Min Warranted FO", "MT", 2, w.MinWarrantedConsumption},
		{KeyFuelOverconsumption, "Fuel Overconsumption", "MT", 2, w.FuelOverconsumptionMT},
		{KeyFuelSaving, "Fuel Saving", "MT", 2, w.FuelSavingMT},
		{KeyTimeAtAdjustedSpeed, "Time @ Adjusted Speed", "hrs", 2, w.TimeAtAdjustedSpeedHours},
		{KeyMaxTime, "Max Time @ Warranted Spd", "hrs", 2, w.MaxTimeHours},
		{KeyMinTime, "Min Time @ Warranted Spd", "hrs", 2, w.MinTimeHours},
		{KeyTimeGained, "Time Gained", "hrs", 2, w.TimeGainedHours},
		{KeyTimeLost, "Time Lost", "hrs", 2, w.TimeLostHours},
		{KeyEventsTotal, "Events Assessed", "", 0, float64(b.All.Events)},
		{KeyEventsGood, "Good Wx Events", "", 0, float64(b.Good.Events)},
		{KeyEventsBad, "Bad Wx Events", "", 0, float64(b.Bad.Events)},
		{KeyEventsUnclassified, "Unclassified Events", "", 0, float64(b.Unclassified.Events)},
		{KeyEventsExcluded, "Excluded Events", "", 0, float64(b.Excluded)},
	}

	index := make(map[string]int, len(metrics))
	for i, m := range metrics {
		index[m.Key] = i
	}
	return &PerformanceReport{metrics: metrics, index: index}
}

// NonFiniteError reports a metric that came out infinite or NaN, which
// happens when input quantities are large enough to overflow the sums.
type NonFiniteError struct {
	Key   string
	Value float64
}

func (e *NonFiniteError) Error() string {
	return fmt.Sprintf("report: %s is %v; input quantities are out of range", e.Key, e.Value)
}

// Check fails with *NonFiniteError on the first metric that is not finite.
func (r *PerformanceReport) Check() error {
	for _, m := range r.metrics {
		if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
			return &NonFiniteError{Key: m.Key, Value: m.Value}
		}
	}
	return nil
}

// Metrics returns a copy of the metrics in report order.
func (r *PerformanceReport) Metrics() []Metric {
	out := make([]Metric, len(r.metrics))
	copy(out, r.metrics)
	return out
}

// Metric looks a metric up by key.
func (r *PerformanceReport) Metric(key string) (Metric, bool) {
	idx, ok := r.index[key]
	if !ok {
		return Metric{}, false
	}
	return r.metrics[idx], true
}

// Value returns the full precision value of key, 0 when unknown.
func (r *PerformanceReport) Value(key string) float64 {
	m, _ := r.Metric(key)
	return m.Value
}

// Keys lists the metric keys in report order.
func (r *PerformanceReport) Keys() []string {
	keys := make([]string, len(r.metrics))
	for i, m := range r.metrics {
		keys[i] = m.Key
	}
	return keys
}

// MarshalJSON writes the report as an object whose keys keep report order.
func (r *PerformanceReport) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range r.metrics {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.Value)
		if err != nil {
			return nil, fmt.Errorf("metric %s: %w", m.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var _ json.Marshaler = (*PerformanceReport)(nil)
