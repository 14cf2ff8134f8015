package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"cpperf/internal/alerting"
	"cpperf/internal/exclusion"
	"cpperf/internal/ingest"
	"cpperf/internal/report"
	"cpperf/internal/voyage"
	"cpperf/internal/warranty"
	"cpperf/internal/weather"
)

func defaultParams() Params {
	return Params{
		Terms: warranty.Terms{
			WarrantedSpeedKnots:          13,
			WarrantedConsumptionMTPerDay: 19.9,
			FuelTolerancePct:             5,
			SpeedToleranceKnots:          0.5,
		},
		Thresholds:  weather.Thresholds{MaxBeaufort: 5, MaxWaveHeightM: 2},
		BunkerPrice: decimal.NewFromInt(500),
	}
}

var header = []string{"Event Type", "Timestamp", "Distance Travelled Actual", "Steaming Time Hrs", "ME Fuel Consumed", "Beaufort Number", "Significant Wave Height"}

// tenNoonReports is 10 days of 250nm / 20.8h / 20MT in Beaufort 3, 1.0m seas.
func tenNoonReports() *ingest.Table {
	var rows [][]string
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		ts := start.AddDate(0, 0, i).Format("2006-01-02 15:04")
		rows = append(rows, []string{"NOON_AT_SEA", ts, "250", "20.8", "20", "3", "1.0"})
	}
	return ingest.NewTable("voyage.csv", header, rows)
}

func TestAnalyzeTenNoonReports(t *testing.T) {
	out, err := Analyze(tenNoonReports(), defaultParams())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if out.Source != "voyage.csv" || len(out.Events) != 10 || len(out.Warnings) != 0 {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if out.Breakdown.Good.Events != 10 {
		t.Fatalf("all events should be good weather, got %+v", out.Breakdown)
	}
	checks := map[string]string{
		report.KeyTotalDistance:        "2500.00",
		report.KeyGoodSpeed:            "12.02",
		report.KeyProjectedConsumption: "200.00",
		report.KeyAdjustedSpeed:        "12.50",
		report.KeyTimeLost:             "14.81",
	}
	for key, want := range checks {
		m, _ := out.Report.Metric(key)
		if m.String() != want {
			t.Fatalf("%s = %s, want %s", key, m.String(), want)
		}
	}
	if out.Weather.GoodDays != 10 || out.Speed.Speed.Count != 10 {
		t.Fatalf("analytics not populated: %+v %+v", out.Weather, out.Speed)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	first, err := Analyze(tenNoonReports(), defaultParams())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	second, err := Analyze(tenNoonReports(), defaultParams())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !reflect.DeepEqual(first.Report.Metrics(), second.Report.Metrics()) {
		t.Fatal("identical inputs must give identical reports")
	}
}

func TestAnalyzeExclusionRemovesEvents(t *testing.T) {
	params := defaultParams()
	params.Exclusions = []exclusion.Period{{
		Start:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2024, 3, 2, 23, 59, 59, 0, time.UTC),
		Reason: "deviation",
	}}

	out, err := Analyze(tenNoonReports(), params)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if out.Breakdown.Excluded != 2 || out.Breakdown.All.Events != 8 {
		t.Fatalf("expected 2 excluded events, got %+v", out.Breakdown)
	}
	if got := out.Report.Value(report.KeyTotalDistance); got != 2000 {
		t.Fatalf("excluded distance should not count, got %v", got)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	missing := ingest.NewTable("bad.csv", []string{"Event Type", "Distance Travelled Actual"}, [][]string{{"NOON_AT_SEA", "10"}})
	_, err := Analyze(missing, defaultParams())
	var schemaErr *voyage.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}

	params := defaultParams()
	params.Terms.SpeedToleranceKnots = 13
	_, err = Analyze(tenNoonReports(), params)
	var degenerate *warranty.DegenerateWarrantyError
	if !errors.As(err, &degenerate) {
		t.Fatalf("expected DegenerateWarrantyError, got %v", err)
	}
}

func TestAnalyzeNoticesUnstampedExclusions(t *testing.T) {
	params := defaultParams()
	params.Exclusions = []exclusion.Period{{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	}}
	unstamped := ingest.NewTable("voyage.csv",
		[]string{"Event Type", "Distance Travelled Actual", "Steaming Time Hrs", "ME Fuel Consumed"},
		[][]string{{"NOON_AT_SEA", "250", "20.8", "20"}, {"NOON_AT_SEA", "250", "20.8", "20"}})

	out, err := Analyze(unstamped, params)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if out.Breakdown.Excluded != 0 {
		t.Fatalf("nothing can be excluded without timestamps, got %d", out.Breakdown.Excluded)
	}
	if len(out.Notices) != 1 || !strings.Contains(out.Notices[0], "no event carries a timestamp") {
		t.Fatalf("expected a notice about missing timestamps, got %v", out.Notices)
	}

	stamped, err := Analyze(tenNoonReports(), params)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(stamped.Notices) != 0 {
		t.Fatalf("timestamped table should raise no notice, got %v", stamped.Notices)
	}
}

func TestAnalyzeRejectsOverflowingQuantities(t *testing.T) {
	table := ingest.NewTable("voyage.csv", header, [][]string{
		{"NOON_AT_SEA", "2024-03-01 12:00", "1e308", "20.8", "20", "3", "1.0"},
		{"NOON_AT_SEA", "2024-03-02 12:00", "1e308", "20.8", "20", "3", "1.0"},
	})
	_, err := Analyze(table, defaultParams())
	var nonFinite *report.NonFiniteError
	if !errors.As(err, &nonFinite) || nonFinite.Key != report.KeyTotalDistance {
		t.Fatalf("expected NonFiniteError on total distance, got %v", err)
	}
}

func TestRunCarriesVoyageParticulars(t *testing.T) {
	params := defaultParams()
	params.Voyage = voyage.Info{
		Vessel:  voyage.Vessel{Name: "MV Ocean Carrier"},
		Passage: voyage.Passage{VoyageNo: "V2024-01"},
	}
	notifier := &recordingNotifier{}
	svc, err := New(params, Options{}, notifier, zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := svc.Run(context.Background(), tenNoonReports())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Voyage.Vessel.Name != "MV Ocean Carrier" {
		t.Fatalf("outcome lacks particulars: %+v", out.Voyage)
	}
	if len(notifier.notes) != 1 || notifier.notes[0].Title != "MV Ocean Carrier V2024-01" {
		t.Fatalf("notification lacks voyage title: %+v", notifier.notes)
	}

	params.Voyage.Vessel.DWT = -1
	if _, err := New(params, Options{}, nil, zerolog.Nop()); err == nil {
		t.Fatal("negative dwt should be rejected")
	}
}

func TestParamsCloneIsolated(t *testing.T) {
	params := defaultParams()
	params.Exclusions = []exclusion.Period{{Start: time.Unix(0, 0), End: time.Unix(10, 0)}}
	clone := params.Clone()
	clone.Exclusions[0].Reason = "changed"
	if params.Exclusions[0].Reason != "" {
		t.Fatal("clone must not share exclusions")
	}
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []alerting.Notification
	err   error
}

func (r *recordingNotifier) Notify(_ context.Context, n alerting.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
	return r.err
}

func TestRunNotifiesAndToleratesFailure(t *testing.T) {
	notifier := &recordingNotifier{err: fmt.Errorf("telegram down")}
	svc, err := New(defaultParams(), Options{Workers: 2}, notifier, zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	out, err := svc.Run(context.Background(), tenNoonReports())
	if err != nil {
		t.Fatalf("notifier failure must not fail the run: %v", err)
	}
	if out.RunID == "" {
		t.Fatal("run id should be set")
	}
	if len(notifier.notes) != 1 || notifier.notes[0].RunID != out.RunID || len(notifier.notes[0].Lines) != 3 {
		t.Fatalf("unexpected notifications %+v", notifier.notes)
	}
}

func TestNewRejectsInvalidParams(t *testing.T) {
	params := defaultParams()
	params.Thresholds.MaxBeaufort = 20
	if _, err := New(params, Options{}, nil, zerolog.Nop()); err == nil {
		t.Fatal("invalid thresholds should be rejected")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRunBatchKeepsOrderAndIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	good := "event_type,distance_travelled_actual,steaming_time_hrs,me_fuel_consumed,beaufort_number,significant_wave_height\n" +
		strings.Repeat("NOON_AT_SEA,250,20.8,20,3,1.0\n", 4)
	schema := "event_type,distance_travelled_actual\nNOON_AT_SEA,250\n"

	jobs := []Job{
		{Path: writeFile(t, dir, "a.csv", good)},
		{Path: writeFile(t, dir, "b.csv", schema)},
		{Path: filepath.Join(dir, "missing.csv")},
		{Path: writeFile(t, dir, "d.csv", good)},
	}

	svc, err := New(defaultParams(), Options{Workers: 2}, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	results := svc.RunBatch(context.Background(), jobs)
	if len(results) != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), len(results))
	}
	for i, r := range results {
		if r.Job != jobs[i] {
			t.Fatalf("result %d out of order: %+v", i, r.Job)
		}
	}
	if results[0].Err != nil || results[0].Outcome == nil || results[0].Outcome.Source != "a.csv" {
		t.Fatalf("first job should succeed: %+v", results[0])
	}
	var schemaErr *voyage.SchemaError
	if !errors.As(results[1].Err, &schemaErr) {
		t.Fatalf("second job should fail on schema, got %v", results[1].Err)
	}
	if results[2].Err == nil {
		t.Fatal("missing file should fail")
	}
	if results[3].Err != nil || results[3].Outcome == nil {
		t.Fatalf("last job should succeed despite earlier failures: %+v", results[3])
	}
}

func TestRunBatchCancelled(t *testing.T) {
	svc, err := New(defaultParams(), Options{Workers: 1}, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := svc.RunBatch(ctx, []Job{{Path: "a.csv"}, {Path: "b.csv"}})
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Fatalf("expected cancellation, got %v", r.Err)
		}
	}
}
