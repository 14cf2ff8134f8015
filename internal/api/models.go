package api

import (
	"cpperf/internal/analytics"
	"cpperf/internal/exclusion"
	"cpperf/internal/report"
	"cpperf/internal/voyage"
)

// Error codes returned by the API.
const (
	CodeSchemaError        = "SCHEMA_ERROR"
	CodeDegenerateWarranty = "DEGENERATE_WARRANTY"
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeNonFiniteResult    = "NON_FINITE_RESULT"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeNotFound           = "NOT_FOUND"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ParamsOverride replaces individual configured parameters for one request.
type ParamsOverride struct {
	WarrantedSpeedKnots          *float64 `json:"warranted_speed_knots"`
	WarrantedConsumptionMTPerDay *float64 `json:"warranted_consumption_mt_per_day"`
	FuelTolerancePct             *float64 `json:"fuel_tolerance_pct"`
	SpeedToleranceKnots          *float64 `json:"speed_tolerance_knots"`
	MaxBeaufort                  *int     `json:"max_beaufort"`
	MaxWaveHeightM               *float64 `json:"max_wave_height_m"`
	BunkerPriceUSDPerMT          *float64 `json:"bunker_price_usd_per_mt"`
	// Exclusions and Voyage replace the configured values as a whole.
	Exclusions *[]exclusion.Period `json:"exclusions"`
	Voyage     *voyage.Info        `json:"voyage"`
}

// AnalyzeResponse is the body of a successful analysis.
type AnalyzeResponse struct {
	RunID    string                      `json:"run_id"`
	Source   string                      `json:"source"`
	Voyage   voyage.Info                 `json:"voyage"`
	Report   *report.PerformanceReport   `json:"report"`
	Weather  analytics.WeatherStats      `json:"weather"`
	Speed    analytics.SpeedStats        `json:"speed"`
	Verdict  analytics.Verdict           `json:"verdict"`
	Warnings []voyage.RowCoercionWarning `json:"warnings"`
	Notices  []string                    `json:"notices"`
	Dropped  int                         `json:"dropped_rows"`
	Events   []voyage.Event              `json:"events"`
}
