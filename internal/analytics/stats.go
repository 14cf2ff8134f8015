package analytics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"cpperf/internal/voyage"
	"cpperf/internal/warranty"
)

// Summary describes a sample the way a spreadsheet describe() would.
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Describe summarises values; an empty sample gives a zero Summary.
func Describe(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	return Summary{
		Count: len(values),
		Mean:  stat.Mean(values, nil),
		Min:   floats.Min(values),
		Max:   floats.Max(values),
	}
}

// WeatherStats summarises the observed sea state of the assessed events.
type WeatherStats struct {
	Beaufort         Summary `json:"beaufort"`
	WaveHeightM      Summary `json:"wave_height_m"`
	GoodDays         int     `json:"good_days"`
	BadDays          int     `json:"bad_days"`
	UnclassifiedDays int     `json:"unclassified_days"`
}

// Weather computes sea state statistics over classified, non-excluded events.
func Weather(events []voyage.Event) WeatherStats {
	var ws WeatherStats
	var beaufort, waves []float64
	for _, e := range events {
		if e.Excluded {
			continue
		}
		if e.Beaufort != nil {
			beaufort = append(beaufort, *e.Beaufort)
		}
		if e.WaveHeightM != nil {
			waves = append(waves, *e.WaveHeightM)
		}
		switch e.WeatherStatus {
		case voyage.WeatherGood:
			ws.GoodDays++
		case voyage.WeatherBad:
			ws.BadDays++
		default:
			ws.UnclassifiedDays++
		}
	}
	ws.Beaufort = Describe(beaufort)
	ws.WaveHeightM = Describe(waves)
	return ws
}

// Correlation is a Pearson coefficient with a plain-language reading.
type Correlation struct {
	Coefficient    float64 `json:"coefficient"`
	Samples        int     `json:"samples"`
	Valid          bool    `json:"valid"`
	Interpretation string  `json:"interpretation"`
}

// SpeedStats compares observed speeds against the warranted speed band.
type SpeedStats struct {
	Speed                 Summary     `json:"speed_knots"`
	PctAtOrAboveWarranted float64     `json:"pct_at_or_above_warranted"`
	PctWithinTolerance    float64     `json:"pct_within_tolerance"`
	BeaufortCorrelation   Correlation `json:"beaufort_correlation"`
	WaveCorrelation       Correlation `json:"wave_correlation"`
}

// Speed computes per-report speed statistics for non-excluded events.
func Speed(events []voyage.Event, terms warranty.Terms) SpeedStats {
	var speeds []float64
	var bfSpeed, bf, waveSpeed, wave []float64
	above, within := 0, 0

	for _, e := range events {
		if e.Excluded {
			continue
		}
		v, ok := e.Speed()
		if !ok {
			continue
		}
		speeds = append(speeds, v)
		if v >= terms.WarrantedSpeedKnots {
			above++
		}
		if v >= terms.MinSpeed() && v <= terms.MaxSpeed() {
			within++
		}
		if e.Beaufort != nil {
			bfSpeed = append(bfSpeed, v)
			bf = append(bf, *e.Beaufort)
		}
		if e.WaveHeightM != nil {
			waveSpeed = append(waveSpeed, v)
			wave = append(wave, *e.WaveHeightM)
		}
	}

	ss := SpeedStats{
		Speed:               Describe(speeds),
		BeaufortCorrelation: correlate(bfSpeed, bf),
		WaveCorrelation:     correlate(waveSpeed, wave),
	}
	if n := len(speeds); n > 0 {
		ss.PctAtOrAboveWarranted = float64(above) / float64(n) * 100
		ss.PctWithinTolerance = float64(within) / float64(n) * 100
	}
	return ss
}

func correlate(speed, condition []float64) Correlation {
	c := Correlation{Samples: len(speed)}
	if len(speed) < 2 {
		c.Interpretation = "not enough observations"
		return c
	}
	r := stat.Correlation(condition, speed, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		c.Interpretation = "no variation in observations"
		return c
	}
	c.Coefficient = r
	c.Valid = true
	c.Interpretation = interpret(r)
	return c
}

func interpret(r float64) string {
	switch {
	case r < -0.5:
		return "strong negative correlation: speed drops markedly as conditions worsen"
	case r < -0.3:
		return "moderate negative correlation: speed tends to drop as conditions worsen"
	case r < -0.1:
		return "weak negative correlation: speed drops slightly as conditions worsen"
	case r < 0.1:
		return "no significant correlation"
	default:
		return "unexpected positive correlation: speed rises as conditions worsen"
	}
}
