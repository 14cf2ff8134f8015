package segment

import (
	"math"
	"testing"

	"cpperf/internal/voyage"
)

func ev(status voyage.WeatherStatus, dist, hrs, fuel float64) voyage.Event {
	return voyage.Event{
		Type:          voyage.EventNoonAtSea,
		DistanceNM:    dist,
		SteamingHours: hrs,
		FuelMT:        fuel,
		WeatherStatus: status,
	}
}

func TestAggregatePartition(t *testing.T) {
	events := []voyage.Event{
		ev(voyage.WeatherGood, 250, 20, 20),
		ev(voyage.WeatherGood, 260, 21, 21),
		ev(voyage.WeatherBad, 200, 24, 23),
		ev(voyage.WeatherUnclassified, 50, 4, 3),
		ev(voyage.WeatherGood, math.NaN(), 10, 8),
	}
	excluded := ev(voyage.WeatherBad, 100, 12, 10)
	excluded.Excluded = true
	events = append(events, excluded)

	b := Aggregate(events)

	if b.All.Events != 5 || b.Excluded != 1 {
		t.Fatalf("unexpected counts: all=%d excluded=%d", b.All.Events, b.Excluded)
	}
	if b.Good.DistanceNM != 510 {
		t.Fatalf("NaN distance should contribute zero, got %v", b.Good.DistanceNM)
	}
	sumDist := b.Good.DistanceNM + b.Bad.DistanceNM + b.Unclassified.DistanceNM
	sumTime := b.Good.TimeHours + b.Bad.TimeHours + b.Unclassified.TimeHours
	sumFuel := b.Good.FuelMT + b.Bad.FuelMT + b.Unclassified.FuelMT
	if sumDist != b.All.DistanceNM || sumTime != b.All.TimeHours || sumFuel != b.All.FuelMT {
		t.Fatalf("partition broken: %+v", b)
	}
	if b.All.DistanceNM != 760 || b.All.TimeHours != 79 || b.All.FuelMT != 75 {
		t.Fatalf("excluded event leaked into totals: %+v", b.All)
	}
}

func TestTotalsRates(t *testing.T) {
	tot := Totals{DistanceNM: 2500, TimeHours: 208, FuelMT: 200}

	if got := tot.AvgSpeedKnots(); math.Abs(got-12.0192) > 1e-4 {
		t.Fatalf("avg speed %v", got)
	}
	if got := tot.FuelRatePerHour(); math.Abs(got-0.961538) > 1e-6 {
		t.Fatalf("fuel rate per hour %v", got)
	}
	if got := tot.FuelRatePerDay(); math.Abs(got-23.0769) > 1e-4 {
		t.Fatalf("fuel rate per day %v", got)
	}

	var empty Totals
	if empty.AvgSpeedKnots() != 0 || empty.FuelRatePerHour() != 0 || empty.FuelRatePerDay() != 0 {
		t.Fatal("zero time must give zero rates")
	}
}
