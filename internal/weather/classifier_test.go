package weather

import (
	"testing"

	"cpperf/internal/voyage"
)

func obs(bf, wave float64) voyage.Event {
	return voyage.Event{Type: voyage.EventNoonAtSea, Beaufort: &bf, WaveHeightM: &wave}
}

func TestClassifyConjunction(t *testing.T) {
	th := Thresholds{MaxBeaufort: 5, MaxWaveHeightM: 2.0}

	cases := []struct {
		name string
		ev   voyage.Event
		want voyage.WeatherStatus
	}{
		{"both within", obs(3, 1.0), voyage.WeatherGood},
		{"bounds inclusive", obs(5, 2.0), voyage.WeatherGood},
		{"wind too strong", obs(6, 1.0), voyage.WeatherBad},
		{"sea too high", obs(3, 2.25), voyage.WeatherBad},
		{"both exceeded", obs(8, 4), voyage.WeatherBad},
		{"missing weather", voyage.Event{Type: voyage.EventNoonAtSea}, voyage.WeatherUnclassified},
	}
	for _, tc := range cases {
		if got := th.Classify(tc.ev); got != tc.want {
			t.Fatalf("%s: got %s want %s", tc.name, got, tc.want)
		}
	}

	bf := 3.0
	half := voyage.Event{Beaufort: &bf}
	if got := th.Classify(half); got != voyage.WeatherUnclassified {
		t.Fatalf("one observation is not enough, got %s", got)
	}
}

func TestClassifyMonotonic(t *testing.T) {
	events := []voyage.Event{obs(0, 0), obs(2, 0.5), obs(4, 1.5), obs(5, 2.0), obs(7, 3.0), obs(12, 9)}

	loose := Thresholds{MaxBeaufort: 6, MaxWaveHeightM: 2.5}
	for bf := loose.MaxBeaufort; bf >= 0; bf-- {
		for _, wave := range []float64{2.5, 2.0, 1.0, 0} {
			tight := Thresholds{MaxBeaufort: bf, MaxWaveHeightM: wave}
			for _, ev := range events {
				if tight.Classify(ev) == voyage.WeatherGood && loose.Classify(ev) != voyage.WeatherGood {
					t.Fatalf("lowering thresholds made an event GOOD: %+v under %+v", ev, tight)
				}
			}
		}
	}
}

func TestClassifyAll(t *testing.T) {
	events := []voyage.Event{obs(3, 1), obs(7, 1), {Type: voyage.EventEOSP}}
	ClassifyAll(events, Thresholds{MaxBeaufort: 5, MaxWaveHeightM: 2})

	want := []voyage.WeatherStatus{voyage.WeatherGood, voyage.WeatherBad, voyage.WeatherUnclassified}
	for i, ev := range events {
		if ev.WeatherStatus != want[i] {
			t.Fatalf("event %d: got %s want %s", i, ev.WeatherStatus, want[i])
		}
	}
}

func TestThresholdsValidate(t *testing.T) {
	if err := (Thresholds{MaxBeaufort: 13}).Validate(); err == nil {
		t.Fatal("beaufort 13 should be rejected")
	}
	if err := (Thresholds{MaxBeaufort: 4, MaxWaveHeightM: -1}).Validate(); err == nil {
		t.Fatal("negative wave height should be rejected")
	}
	if err := (Thresholds{MaxBeaufort: 0, MaxWaveHeightM: 0}).Validate(); err != nil {
		t.Fatalf("zero thresholds are legal: %v", err)
	}
}
