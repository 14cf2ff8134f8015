package weather

import (
	"fmt"

	"cpperf/internal/voyage"
)

// Thresholds define the good-weather envelope agreed in the charterparty.
// Both bounds are inclusive.
type Thresholds struct {
	MaxBeaufort    int     `json:"max_beaufort"`
	MaxWaveHeightM float64 `json:"max_wave_height_m"`
}

// Validate checks the thresholds are on their physical scales.
func (t Thresholds) Validate() error {
	if t.MaxBeaufort < 0 || t.MaxBeaufort > 12 {
		return fmt.Errorf("weather.max_beaufort must be between 0 and 12, got %d", t.MaxBeaufort)
	}
	if t.MaxWaveHeightM < 0 {
		return fmt.Errorf("weather.max_wave_height_m cannot be negative, got %g", t.MaxWaveHeightM)
	}
	return nil
}

// Classify labels a single event. Events missing either observation stay
// unclassified; otherwise both limits must hold for GOOD.
func (t Thresholds) Classify(e voyage.Event) voyage.WeatherStatus {
	if !e.HasWeather() {
		return voyage.WeatherUnclassified
	}
	if *e.Beaufort <= float64(t.MaxBeaufort) && *e.WaveHeightM <= t.MaxWaveHeightM {
		return voyage.WeatherGood
	}
	return voyage.WeatherBad
}

// ClassifyAll sets WeatherStatus on every event in place.
func ClassifyAll(events []voyage.Event, t Thresholds) {
	for i := range events {
		events[i].WeatherStatus = t.Classify(events[i])
	}
}
