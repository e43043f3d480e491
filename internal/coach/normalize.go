// Package coach implements the activity-to-coaching-report pipeline:
// normalizing raw Strava activities, building the model prompt, parsing the
// model's reply, and computing local trend series for charting.
package coach

import (
	"math"

	"github.com/iformai/iform/internal/strava"
)

// ActivitySummary is the compact per-activity shape embedded in the prompt.
// Distances are km, durations minutes, speeds km/h, all rounded to two
// decimals; the date is the local calendar date without a time component.
type ActivitySummary struct {
	Name            string  `json:"name"`
	DistanceKm      float64 `json:"distance_km"`
	MovingTimeMin   float64 `json:"moving_time_min"`
	AverageSpeedKmh float64 `json:"average_speed_kmh"`
	Date            string  `json:"date"`
}

// Normalize converts raw activities into prompt-ready summaries, preserving
// input order. Field ranges are not validated; whatever the provider sent is
// converted as-is.
func Normalize(activities []strava.Activity) []ActivitySummary {
	summaries := make([]ActivitySummary, len(activities))
	for i, a := range activities {
		summaries[i] = ActivitySummary{
			Name:            a.Name,
			DistanceKm:      round2(a.Distance / 1000),
			MovingTimeMin:   round2(float64(a.MovingTime) / 60),
			AverageSpeedKmh: round2(a.AverageSpeed * 3.6),
			// Local calendar date, no timezone conversion
			Date: a.StartDateLocal.Format("2006-01-02"),
		}
	}
	return summaries
}

// round2 rounds to two decimals, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
