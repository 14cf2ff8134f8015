package warranty

import (
	"fmt"
	"math"

	"cpperf/internal/segment"
)

const hoursPerDay = 24

// Terms are the speed and consumption warranties of a charterparty.
type Terms struct {
	WarrantedSpeedKnots          float64 `json:"warranted_speed_knots"`
	WarrantedConsumptionMTPerDay float64 `json:"warranted_consumption_mt_per_day"`
	FuelTolerancePct             float64 `json:"fuel_tolerance_pct"`
	SpeedToleranceKnots          float64 `json:"speed_tolerance_knots"`
}

// DegenerateWarrantyError reports terms that would put a zero or negative
// value in a denominator of the warranty calculation.
type DegenerateWarrantyError struct {
	Param  string
	Value  float64
	Reason string
}

func (e *DegenerateWarrantyError) Error() string {
	return fmt.Sprintf("degenerate warranty: %s=%g %s", e.Param, e.Value, e.Reason)
}

// Validate rejects terms the calculation cannot be run with.
func (t Terms) Validate() error {
	if t.WarrantedSpeedKnots <= 0 {
		return &DegenerateWarrantyError{Param: "warranted_speed_knots", Value: t.WarrantedSpeedKnots, Reason: "must be greater than zero"}
	}
	if t.SpeedToleranceKnots < 0 {
		return fmt.Errorf("speed_tolerance_knots cannot be negative, got %g", t.SpeedToleranceKnots)
	}
	if t.WarrantedSpeedKnots-t.SpeedToleranceKnots <= 0 {
		return &DegenerateWarrantyError{
			Param:  "speed_tolerance_knots",
			Value:  t.SpeedToleranceKnots,
			Reason: fmt.Sprintf("must be below warranted speed %g", t.WarrantedSpeedKnots),
		}
	}
	if t.WarrantedConsumptionMTPerDay <= 0 {
		return fmt.Errorf("warranted_consumption_mt_per_day must be greater than zero, got %g", t.WarrantedConsumptionMTPerDay)
	}
	if t.FuelTolerancePct < 0 || t.FuelTolerancePct > 100 {
		return fmt.Errorf("fuel_tolerance_pct must be between 0 and 100, got %g", t.FuelTolerancePct)
	}
	return nil
}

// MinSpeed is the lower edge of the speed tolerance band.
func (t Terms) MinSpeed() float64 { return t.WarrantedSpeedKnots - t.SpeedToleranceKnots }

// MaxSpeed is the upper edge of the speed tolerance band.
func (t Terms) MaxSpeed() float64 { return t.WarrantedSpeedKnots + t.SpeedToleranceKnots }

// SpeedAdjustment records how the good weather speed was brought into the band.
type SpeedAdjustment string

const (
	SpeedUnchanged SpeedAdjustment = "none"
	SpeedCapped    SpeedAdjustment = "capped"
	SpeedFloored   SpeedAdjustment = "floored"
)

// Result holds the derived warranty figures of one voyage.
type Result struct {
	FuelToleranceMT          float64         `json:"fuel_tolerance_mt"`
	WarrantedUpperMTPerDay   float64         `json:"warranted_upper_mt_per_day"`
	WarrantedLowerMTPerDay   float64         `json:"warranted_lower_mt_per_day"`
	ProjectedConsumptionMT   float64         `json:"projected_voyage_consumption_mt"`
	AdjustedSpeedKnots       float64         `json:"adjusted_speed_knots"`
	SpeedAdjustment          SpeedAdjustment `json:"speed_adjustment"`
	MaxWarrantedConsumption  float64         `json:"max_warranted_consumption_mt"`
	MinWarrantedConsumption  float64         `json:"min_warranted_consumption_mt"`
	FuelOverconsumptionMT    float64         `json:"fuel_overconsumption_mt"`
	FuelSavingMT             float64         `json:"fuel_saving_mt"`
	TimeAtAdjustedSpeedHours float64         `json:"time_at_adjusted_speed_hours"`
	MaxTimeHours             float64         `json:"max_time_hours"`
	MinTimeHours             float64         `json:"min_time_hours"`
	TimeGainedHours          float64         `json:"time_gained_hours"`
	TimeLostHours            float64         `json:"time_lost_hours"`
}

// Compute tests the voyage against the warranty.
//
// The whole passage is projected at the good weather speed and fuel rate,
// since bad weather slowdowns are excused; that projection is compared with
// the warranted consumption envelope at the tolerance-clamped speed.
func Compute(all, good segment.Totals, terms Terms) (Result, error) {
	if err := terms.Validate(); err != nil {
		return Result{}, err
	}

	var r Result
	distance := all.DistanceNM
	goodSpeed := good.AvgSpeedKnots()

	r.FuelToleranceMT = terms.WarrantedConsumptionMTPerDay * (terms.FuelTolerancePct / 100)
	r.WarrantedUpperMTPerDay = terms.WarrantedConsumptionMTPerDay + r.FuelToleranceMT
	r.WarrantedLowerMTPerDay = terms.WarrantedConsumptionMTPerDay - r.FuelToleranceMT

	if goodSpeed > 0 {
		r.ProjectedConsumptionMT = (distance / goodSpeed) * (good.FuelRatePerDay() / hoursPerDay)
	}

	r.AdjustedSpeedKnots, r.SpeedAdjustment = clampSpeed(goodSpeed, terms)
	if r.AdjustedSpeedKnots <= 0 || math.IsNaN(r.AdjustedSpeedKnots) {
		return Result{}, &DegenerateWarrantyError{Param: "adjusted_speed", Value: r.AdjustedSpeedKnots, Reason: "must be greater than zero"}
	}

	r.TimeAtAdjustedSpeedHours = distance / r.AdjustedSpeedKnots
	r.MaxWarrantedConsumption = r.TimeAtAdjustedSpeedHours * (r.WarrantedUpperMTPerDay / hoursPerDay)
	r.MinWarrantedConsumption = r.TimeAtAdjustedSpeedHours * (r.WarrantedLowerMTPerDay / hoursPerDay)

	r.FuelOverconsumptionMT = math.Max(r.ProjectedConsumptionMT-r.MaxWarrantedConsumption, 0)
	r.FuelSavingMT = math.Max(r.MinWarrantedConsumption-r.ProjectedConsumptionMT, 0)

	r.MaxTimeHours = distance / terms.MinSpeed()
	r.MinTimeHours = distance / terms.MaxSpeed()
	r.TimeGainedHours = math.Max(r.MaxTimeHours-r.TimeAtAdjustedSpeedHours, 0)
	r.TimeLostHours = math.Max(r.TimeAtAdjustedSpeedHours-r.MinTimeHours, 0)

	return r, nil
}

func clampSpeed(speed float64, terms Terms) (float64, SpeedAdjustment) {
	switch {
	case speed > terms.MaxSpeed():
		return terms.MaxSpeed(), SpeedCapped
	case speed < terms.MinSpeed():
		return terms.MinSpeed(), SpeedFloored
	default:
		return speed, SpeedUnchanged
	}
}
