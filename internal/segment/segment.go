package segment

import (
	"math"

	"cpperf/internal/voyage"
)

const hoursPerDay = 24

// Totals accumulates distance, time and fuel over a set of events.
type Totals struct {
	DistanceNM float64 `json:"distance_nm"`
	TimeHours  float64 `json:"time_hours"`
	FuelMT     float64 `json:"fuel_mt"`
	Events     int     `json:"events"`
}

// Add folds one event in. NaN quantities contribute zero.
func (t *Totals) Add(e voyage.Event) {
	t.DistanceNM += contribution(e.DistanceNM)
	t.TimeHours += contribution(e.SteamingHours)
	t.FuelMT += contribution(e.FuelMT)
	t.Events++
}

// AvgSpeedKnots is distance over time, 0 when no time was logged.
func (t Totals) AvgSpeedKnots() float64 {
	if t.TimeHours == 0 {
		return 0
	}
	return t.DistanceNM / t.TimeHours
}

// FuelRatePerHour is fuel over time, 0 when no time was logged.
func (t Totals) FuelRatePerHour() float64 {
	if t.TimeHours == 0 {
		return 0
	}
	return t.FuelMT / t.TimeHours
}

// FuelRatePerDay scales the hourly rate to a 24 hour day.
func (t Totals) FuelRatePerDay() float64 {
	return t.FuelRatePerHour() * hoursPerDay
}

// Breakdown holds the voyage totals split by weather status.
// All equals Good + Bad + Unclassified; excluded events are in none of them.
type Breakdown struct {
	All          Totals `json:"all"`
	Good         Totals `json:"good"`
	Bad          Totals `json:"bad"`
	Unclassified Totals `json:"unclassified"`
	Excluded     int    `json:"excluded"`
}

// Aggregate sums classified, exclusion-marked events into a Breakdown.
func Aggregate(events []voyage.Event) Breakdown {
	var b Breakdown
	for _, e := range events {
		if e.Excluded {
			b.Excluded++
			continue
		}
		b.All.Add(e)
		switch e.WeatherStatus {
		case voyage.WeatherGood:
			b.Good.Add(e)
		case voyage.WeatherBad:
			b.Bad.Add(e)
		default:
			b.Unclassified.Add(e)
		}
	}
	return b
}

func contribution(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
