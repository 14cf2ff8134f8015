package voyage

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"

	"cpperf/internal/ingest"
)

// Column names recognised in noon report tables.
const (
	ColumnEventType  = "event_type"
	ColumnDistance   = "distance_travelled_actual"
	ColumnSteaming   = "steaming_time_hrs"
	ColumnFuel       = "me_fuel_consumed"
	ColumnBeaufort   = "beaufort_number"
	ColumnWaveHeight = "significant_wave_height"
	ColumnTimestamp  = "timestamp"
)

const maxBeaufort = 12

// Normalized is the canonical event sequence derived from one table.
type Normalized struct {
	Source   string
	Events   []Event
	Warnings []RowCoercionWarning
	// Dropped counts rows whose event type does not participate.
	Dropped int
}

type columns struct {
	eventType, distance, steaming, fuel int
	beaufort, wave, timestamp           int
}

// extra layouts tried after cast's own list; spreadsheet exports often drop seconds.
var timestampLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"02-01-2006 15:04",
	"01/02/2006 15:04",
	"1/2/06 15:04",
	"02 Jan 2006 15:04",
}

// Normalize validates the table layout and coerces every participating row
// into an Event. It fails with *SchemaError when a required column is absent.
func Normalize(table *ingest.Table) (*Normalized, error) {
	if table == nil {
		return nil, fmt.Errorf("normalize: nil table")
	}

	cols, err := resolveColumns(table)
	if err != nil {
		return nil, err
	}

	out := &Normalized{
		Source: table.Source,
		Events: make([]Event, 0, table.Len()),
	}

	for i, row := range table.Rows {
		rowNum := i + 1
		kind, ok := ParseEventType(row[cols.eventType])
		if !ok {
			out.Dropped++
			continue
		}

		n := rowNormalizer{row: row, rowNum: rowNum}
		event := Event{
			Row:           rowNum,
			Type:          kind,
			DistanceNM:    n.quantity(cols.distance, ColumnDistance),
			SteamingHours: n.quantity(cols.steaming, ColumnSteaming),
			FuelMT:        n.quantity(cols.fuel, ColumnFuel),
			Beaufort:      n.beaufort(cols.beaufort),
			WaveHeightM:   n.waveHeight(cols.wave),
			Timestamp:     n.timestamp(cols.timestamp),
			WeatherStatus: WeatherUnclassified,
		}
		event.Flagged = n.flagged
		out.Warnings = append(out.Warnings, n.warnings...)
		out.Events = append(out.Events, event)
	}

	return out, nil
}

func resolveColumns(table *ingest.Table) (columns, error) {
	cols := columns{beaufort: -1, wave: -1, timestamp: -1}
	var missing []string

	required := []struct {
		name string
		dst  *int
	}{
		{ColumnEventType, &cols.eventType},
		{ColumnDistance, &cols.distance},
		{ColumnSteaming, &cols.steaming},
		{ColumnFuel, &cols.fuel},
	}
	for _, req := range required {
		idx, ok := table.Column(req.name)
		if !ok {
			missing = append(missing, req.name)
			continue
		}
		*req.dst = idx
	}
	if len(missing) > 0 {
		return columns{}, &SchemaError{Source: table.Source, Missing: missing}
	}

	if idx, ok := table.Column(ColumnBeaufort, "beaufort"); ok {
		cols.beaufort = idx
	}
	if idx, ok := table.Column(ColumnWaveHeight, "significant_wave_height_m", "wave_height"); ok {
		cols.wave = idx
	}
	if idx, ok := table.Column(ColumnTimestamp, "date", "datetime"); ok {
		cols.timestamp = idx
	}
	return cols, nil
}

type rowNormalizer struct {
	row      []string
	rowNum   int
	flagged  bool
	warnings []RowCoercionWarning
}

func (n *rowNormalizer) warn(column, value, reason string) {
	n.flagged = true
	n.warnings = append(n.warnings, RowCoercionWarning{
		Row:    n.rowNum,
		Column: column,
		Value:  value,
		Reason: reason,
	})
}

// quantity coerces a required non-negative amount; failures yield NaN.
func (n *rowNormalizer) quantity(idx int, column string) float64 {
	raw := strings.TrimSpace(n.row[idx])
	if raw == "" {
		n.warn(column, raw, "missing value")
		return math.NaN()
	}
	v, ok := parseNumber(raw)
	if !ok {
		n.warn(column, raw, "not a number")
		return math.NaN()
	}
	if v < 0 {
		n.warn(column, raw, "negative value")
		return math.NaN()
	}
	return v
}

func (n *rowNormalizer) beaufort(idx int) *float64 {
	v, ok := n.optional(idx, ColumnBeaufort)
	if !ok {
		return nil
	}
	if v < 0 || v > maxBeaufort {
		n.warn(ColumnBeaufort, n.row[idx], "outside beaufort scale 0-12")
		return nil
	}
	return &v
}

func (n *rowNormalizer) waveHeight(idx int) *float64 {
	v, ok := n.optional(idx, ColumnWaveHeight)
	if !ok {
		return nil
	}
	if v < 0 {
		n.warn(ColumnWaveHeight, n.row[idx], "negative value")
		return nil
	}
	return &v
}

// optional reads a weather cell; empty cells are absence, not warnings.
func (n *rowNormalizer) optional(idx int, column string) (float64, bool) {
	if idx < 0 {
		return 0, false
	}
	raw := strings.TrimSpace(n.row[idx])
	if raw == "" {
		return 0, false
	}
	v, ok := parseNumber(raw)
	if !ok {
		n.warn(column, raw, "not a number")
		return 0, false
	}
	return v, true
}

func (n *rowNormalizer) timestamp(idx int) *time.Time {
	if idx < 0 {
		return nil
	}
	raw := strings.TrimSpace(n.row[idx])
	if raw == "" {
		return nil
	}
	ts, ok := ParseTimestamp(raw)
	if !ok {
		n.warn(ColumnTimestamp, raw, "unrecognised timestamp")
		return nil
	}
	return &ts
}

func parseNumber(raw string) (float64, bool) {
	v, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseTimestamp accepts the layouts cast understands plus common
// spreadsheet renderings. Zone-less values are taken as UTC.
func ParseTimestamp(raw string) (time.Time, bool) {
	if ts, err := cast.ToTimeE(raw); err == nil {
		return ts.UTC(), true
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
