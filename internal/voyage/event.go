package voyage

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// EventType identifies the kind of noon report row.
type EventType string

const (
	EventNoonAtSea EventType = "NOON_AT_SEA"
	EventCOSP      EventType = "COSP"
	EventEOSP      EventType = "EOSP"
)

// ParseEventType maps a raw cell onto a participating event type.
// Matching ignores case and treats spaces and hyphens as underscores.
func ParseEventType(raw string) (EventType, bool) {
	fields := strings.FieldsFunc(strings.ToUpper(raw), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '\t'
	})
	switch EventType(strings.Join(fields, "_")) {
	case EventNoonAtSea:
		return EventNoonAtSea, true
	case EventCOSP:
		return EventCOSP, true
	case EventEOSP:
		return EventEOSP, true
	default:
		return "", false
	}
}

// WeatherStatus is the derived weather label of an event.
type WeatherStatus string

const (
	WeatherUnclassified WeatherStatus = "UNCLASSIFIED"
	WeatherGood         WeatherStatus = "GOOD"
	WeatherBad          WeatherStatus = "BAD"
)

// Event is one normalised noon report, COSP or EOSP record.
//
// DistanceNM, SteamingHours and FuelMT hold NaN when the source cell was
// missing or unusable; such values contribute nothing to segment sums.
type Event struct {
	Row           int
	Type          EventType
	Timestamp     *time.Time
	DistanceNM    float64
	SteamingHours float64
	FuelMT        float64
	Beaufort      *float64
	WaveHeightM   *float64

	WeatherStatus WeatherStatus
	Excluded      bool
	Flagged       bool
}

// HasWeather reports whether both weather observations are present.
func (e Event) HasWeather() bool {
	return e.Beaufort != nil && e.WaveHeightM != nil
}

// Speed returns the observed speed over ground for the reporting period.
func (e Event) Speed() (float64, bool) {
	if math.IsNaN(e.DistanceNM) || math.IsNaN(e.SteamingHours) || e.SteamingHours <= 0 {
		return 0, false
	}
	return e.DistanceNM / e.SteamingHours, true
}

type eventJSON struct {
	Row           int           `json:"row"`
	Type          EventType     `json:"event_type"`
	Timestamp     *time.Time    `json:"timestamp"`
	DistanceNM    *float64      `json:"distance_nm"`
	SteamingHours *float64      `json:"steaming_hours"`
	FuelMT        *float64      `json:"fuel_mt"`
	Beaufort      *float64      `json:"beaufort"`
	WaveHeightM   *float64      `json:"wave_height_m"`
	WeatherStatus WeatherStatus `json:"weather"`
	Excluded      bool          `json:"excluded"`
	Flagged       bool          `json:"flagged"`
}

// MarshalJSON writes unusable quantities as null.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{
		Row:           e.Row,
		Type:          e.Type,
		Timestamp:     e.Timestamp,
		DistanceNM:    finite(e.DistanceNM),
		SteamingHours: finite(e.SteamingHours),
		FuelMT:        finite(e.FuelMT),
		Beaufort:      e.Beaufort,
		WaveHeightM:   e.WaveHeightM,
		WeatherStatus: e.WeatherStatus,
		Excluded:      e.Excluded,
		Flagged:       e.Flagged,
	})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
