package coach

import (
	"testing"
	"time"

	"github.com/iformai/iform/internal/strava"
)

// englishLocalizer satisfies Localizer without a locale catalogue.
type englishLocalizer struct{}

func (englishLocalizer) MonthShort(m time.Month) string       { return m.String()[:3] }
func (englishLocalizer) UIString(key, fallback string) string { return fallback }

func TestComputeTrendSingleMonth(t *testing.T) {
	now := time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)
	activities := []strava.Activity{
		{
			Distance:       5000,
			MovingTime:     1500,
			StartDateLocal: strava.Timestamp{Time: time.Date(2026, 6, 10, 7, 0, 0, 0, time.UTC)},
		},
	}

	trend := ComputeTrend(activities, now, englishLocalizer{})

	wantLabels := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}
	if len(trend.Labels) != TrendMonths {
		t.Fatalf("expected %d labels, got %d", TrendMonths, len(trend.Labels))
	}
	for i, want := range wantLabels {
		if trend.Labels[i] != want {
			t.Errorf("label %d: expected %q, got %q", i, want, trend.Labels[i])
		}
	}

	if len(trend.Datasets) != 2 {
		t.Fatalf("expected 2 datasets, got %d", len(trend.Datasets))
	}
	pace, distance := trend.Datasets[0], trend.Datasets[1]

	if pace.Label != "Average Pace (min/km)" {
		t.Errorf("unexpected pace label %q", pace.Label)
	}
	if distance.Label != "Total Distance (km)" {
		t.Errorf("unexpected distance label %q", distance.Label)
	}

	// 5 km in 25 min is a 5.0 min/km pace in the newest bucket
	if got := pace.Data[5]; got != 5.0 {
		t.Errorf("expected pace 5.0 in current month, got %v", got)
	}
	if got := distance.Data[5]; got != 5.0 {
		t.Errorf("expected distance 5.0 in current month, got %v", got)
	}
	for i := 0; i < 5; i++ {
		if pace.Data[i] != 0 || distance.Data[i] != 0 {
			t.Errorf("month %d: expected zeroes, got pace %v distance %v", i, pace.Data[i], distance.Data[i])
		}
	}
}

func TestComputeTrendAggregatesWithinMonth(t *testing.T) {
	now := time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)
	activities := []strava.Activity{
		{Distance: 10000, MovingTime: 3000, StartDateLocal: strava.Timestamp{Time: time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)}},
		{Distance: 10000, MovingTime: 3600, StartDateLocal: strava.Timestamp{Time: time.Date(2026, 5, 28, 0, 0, 0, 0, time.UTC)}},
	}

	trend := ComputeTrend(activities, now, englishLocalizer{})

	// May is the second-newest bucket: 20 km in 110 min
	if got := trend.Datasets[1].Data[4]; got != 20.0 {
		t.Errorf("expected 20 km in May, got %v", got)
	}
	if got := trend.Datasets[0].Data[4]; got != 5.5 {
		t.Errorf("expected pace 5.5 in May, got %v", got)
	}
}

func TestComputeTrendYearBoundary(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	activities := []strava.Activity{
		{Distance: 8000, MovingTime: 2400, StartDateLocal: strava.Timestamp{Time: time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)}},
	}

	trend := ComputeTrend(activities, now, englishLocalizer{})

	wantLabels := []string{"Sep", "Oct", "Nov", "Dec", "Jan", "Feb"}
	for i, want := range wantLabels {
		if trend.Labels[i] != want {
			t.Errorf("label %d: expected %q, got %q", i, want, trend.Labels[i])
		}
	}

	if got := trend.Datasets[1].Data[2]; got != 8.0 {
		t.Errorf("expected 8 km in November bucket, got %v", got)
	}
}

func TestComputeTrendDropsOutOfWindowActivities(t *testing.T) {
	now := time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)
	activities := []strava.Activity{
		// Too old and in the future; neither lands in a bucket
		{Distance: 5000, MovingTime: 1500, StartDateLocal: strava.Timestamp{Time: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}},
		{Distance: 5000, MovingTime: 1500, StartDateLocal: strava.Timestamp{Time: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)}},
	}

	trend := ComputeTrend(activities, now, englishLocalizer{})

	for i := 0; i < TrendMonths; i++ {
		if trend.Datasets[1].Data[i] != 0 {
			t.Errorf("month %d: expected empty bucket, got %v", i, trend.Datasets[1].Data[i])
		}
	}
}

func TestComputeTrendZeroDistancePaceClamped(t *testing.T) {
	now := time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)
	activities := []strava.Activity{
		// A recorded session with no GPS distance must not divide by zero
		{Distance: 0, MovingTime: 3600, StartDateLocal: strava.Timestamp{Time: time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC)}},
	}

	trend := ComputeTrend(activities, now, englishLocalizer{})

	if got := trend.Datasets[0].Data[5]; got != 0 {
		t.Errorf("expected pace clamped to 0, got %v", got)
	}
}

func TestComputeTrendEmptyInput(t *testing.T) {
	now := time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)

	trend := ComputeTrend(nil, now, englishLocalizer{})

	if len(trend.Labels) != TrendMonths {
		t.Fatalf("expected %d labels even with no activities, got %d", TrendMonths, len(trend.Labels))
	}
	for _, ds := range trend.Datasets {
		if len(ds.Data) != TrendMonths {
			t.Fatalf("expected %d points, got %d", TrendMonths, len(ds.Data))
		}
		for i, v := range ds.Data {
			if v != 0 {
				t.Errorf("point %d: expected 0, got %v", i, v)
			}
		}
	}
}
