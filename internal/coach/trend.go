package coach

import (
	"time"

	"github.com/iformai/iform/internal/strava"
)

// TrendMonths is the number of trailing calendar months charted.
const TrendMonths = 6

// Localizer provides the locale-dependent strings the trend series need.
// i18n.Locale satisfies it.
type Localizer interface {
	MonthShort(m time.Month) string
	UIString(key, fallback string) string
}

// TrendDataset is one chart series.
type TrendDataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// TrendData is the chart-ready trend structure: one label and one data
// point per trailing month, oldest first.
type TrendData struct {
	Labels   []string       `json:"labels"`
	Datasets []TrendDataset `json:"datasets"`
}

type monthKey struct {
	year  int
	month time.Month
}

// monthlyBucket accumulates one calendar month of activity.
type monthlyBucket struct {
	distanceKm    float64
	movingTimeMin float64
	count         int
}

// ComputeTrend buckets activities into the trailing TrendMonths calendar
// months (including the current one) and derives the average pace and total
// distance series, oldest to newest. Activities outside the window are
// silently dropped. Months without activities emit 0 for both series, as do
// months whose recorded distance is zero (pace is clamped rather than
// dividing by zero).
func ComputeTrend(activities []strava.Activity, now time.Time, loc Localizer) TrendData {
	buckets := make(map[monthKey]*monthlyBucket, TrendMonths)
	for i := 0; i < TrendMonths; i++ {
		// time.Date normalizes month underflow across year boundaries
		m := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		buckets[monthKey{m.Year(), m.Month()}] = &monthlyBucket{}
	}

	for _, a := range activities {
		key := monthKey{a.StartDateLocal.Year(), a.StartDateLocal.Month()}
		bucket, ok := buckets[key]
		if !ok {
			continue
		}
		bucket.distanceKm += a.Distance / 1000
		bucket.movingTimeMin += float64(a.MovingTime) / 60
		bucket.count++
	}

	labels := make([]string, 0, TrendMonths)
	paceData := make([]float64, 0, TrendMonths)
	distanceData := make([]float64, 0, TrendMonths)

	for i := TrendMonths - 1; i >= 0; i-- {
		m := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		labels = append(labels, loc.MonthShort(m.Month()))

		bucket := buckets[monthKey{m.Year(), m.Month()}]
		if bucket.count > 0 && bucket.distanceKm > 0 {
			paceData = append(paceData, round2(bucket.movingTimeMin/bucket.distanceKm))
			distanceData = append(distanceData, round2(bucket.distanceKm))
		} else {
			paceData = append(paceData, 0)
			distanceData = append(distanceData, round2(bucket.distanceKm))
		}
	}

	return TrendData{
		Labels: labels,
		Datasets: []TrendDataset{
			{
				Label: loc.UIString("average_pace_label", "Average Pace (min/km)"),
				Data:  paceData,
			},
			{
				Label: loc.UIString("total_distance_label", "Total Distance (km)"),
				Data:  distanceData,
			},
		},
	}
}
