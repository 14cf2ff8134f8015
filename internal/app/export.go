package app

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"cpperf/internal/analytics"
	"cpperf/internal/report"
	"cpperf/internal/service"
	"cpperf/internal/voyage"
)

var reportHeader = []string{"metric", "label", "unit", "value", "display"}

var eventHeader = []string{"row", "event_type", "timestamp", "distance_nm", "steaming_hours", "fuel_mt", "beaufort", "wave_height_m", "weather", "excluded", "flagged"}

func writeReportCSV(path string, out *service.Outcome) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(reportHeader); err != nil {
		return err
	}
	for _, f := range out.Voyage.Fields() {
		if err := writer.Write([]string{"voyage." + f.Key, f.Label, "", f.Value, f.Value}); err != nil {
			return err
		}
	}
	for _, m := range out.Report.Metrics() {
		record := []string{
			m.Key,
			m.Label,
			m.Unit,
			strconv.FormatFloat(m.Value, 'f', -1, 64),
			m.String(),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeReportXLSX(path string, out *service.Outcome) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	const reportSheet = "Report"
	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return err
	}
	var rows [][]any
	if fields := out.Voyage.Fields(); len(fields) > 0 {
		for _, f := range fields {
			rows = append(rows, []any{f.Label, f.Value})
		}
		rows = append(rows, nil)
	}
	rows = append(rows, toRow(reportHeader))
	for _, m := range out.Report.Metrics() {
		value, _ := m.Rounded().Float64()
		rows = append(rows, []any{m.Key, m.Label, m.Unit, m.Value, value})
	}
	if err := writeSheet(f, reportSheet, rows); err != nil {
		return err
	}

	rows = [][]any{toRow(eventHeader)}
	for _, e := range out.Events {
		rows = append(rows, toRow(eventRecord(e)))
	}
	if err := addSheet(f, "Events", rows); err != nil {
		return err
	}

	if len(out.Warnings) > 0 {
		rows = [][]any{{"row", "column", "value", "reason"}}
		for _, w := range out.Warnings {
			rows = append(rows, []any{w.Row, w.Column, w.Value, w.Reason})
		}
		if err := addSheet(f, "Warnings", rows); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func addSheet(f *excelize.File, name string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	return writeSheet(f, name, rows)
}

func writeSheet(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func toRow(values []string) []any {
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}

// document is the JSON export of one outcome.
type document struct {
	RunID    string                      `json:"run_id"`
	Source   string                      `json:"source"`
	Voyage   voyage.Info                 `json:"voyage"`
	Report   *report.PerformanceReport   `json:"report"`
	Weather  analytics.WeatherStats      `json:"weather"`
	Speed    analytics.SpeedStats        `json:"speed"`
	Verdict  analytics.Verdict           `json:"verdict"`
	Warnings []voyage.RowCoercionWarning `json:"warnings"`
	Notices  []string                    `json:"notices,omitempty"`
	Dropped  int                         `json:"dropped_rows"`
	Events   []voyage.Event              `json:"events"`
}

func writeReportJSON(path string, out *service.Outcome) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	warnings := out.Warnings
	if warnings == nil {
		warnings = []voyage.RowCoercionWarning{}
	}
	body, err := json.MarshalIndent(document{
		RunID:    out.RunID,
		Source:   out.Source,
		Voyage:   out.Voyage,
		Report:   out.Report,
		Weather:  out.Weather,
		Speed:    out.Speed,
		Verdict:  out.Verdict,
		Warnings: warnings,
		Notices:  out.Notices,
		Dropped:  out.Dropped,
		Events:   out.Events,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(body, '\n'), 0o644)
}

func eventRecord(e voyage.Event) []string {
	ts := ""
	if e.Timestamp != nil {
		ts = e.Timestamp.Format(time.RFC3339)
	}
	return []string{
		strconv.Itoa(e.Row),
		string(e.Type),
		ts,
		formatQuantity(e.DistanceNM),
		formatQuantity(e.SteamingHours),
		formatQuantity(e.FuelMT),
		formatOptional(e.Beaufort),
		formatOptional(e.WaveHeightM),
		string(e.WeatherStatus),
		strconv.FormatBool(e.Excluded),
		strconv.FormatBool(e.Flagged),
	}
}

func formatQuantity(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// outputPath suffixes the export path with the source name when several
// files are exported, so "out/report.csv" becomes "out/report_leg1.csv".
func outputPath(path, source string, multi bool) string {
	if !multi {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return fmt.Sprintf("%s_%s%s", base, name, ext)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
