package coach

import (
	"fmt"
	"math"
)

// Insight is a single human-readable observation about recent training,
// derived locally from the monthly trend series.
type Insight struct {
	Type    string `json:"type"` // "trend", "achievement", "warning", "suggestion"
	Message string `json:"message"`
}

// TrendInsights compares the last two months of the trend series and
// reports how volume and pace are moving. It returns nil when there is
// not enough history to compare.
func TrendInsights(trend TrendData) []Insight {
	if len(trend.Datasets) < 2 {
		return nil
	}
	pace := trend.Datasets[0].Data
	distance := trend.Datasets[1].Data
	if len(pace) < 2 || len(distance) < 2 {
		return nil
	}

	var insights []Insight
	n := len(distance)
	insights = append(insights, metricInsights(distance[n-1], distance[n-2], "monthly distance", true)...)
	insights = append(insights, metricInsights(pace[n-1], pace[n-2], "average pace", false)...)

	if distance[n-1] == 0 && distance[n-2] == 0 {
		insights = append(insights, Insight{
			Type:    "suggestion",
			Message: "No recorded activity in the last two months - time to get moving again?",
		})
	}

	return insights
}

// metricInsights classifies the month-over-month change of one metric.
// Changes under 5% read as stable, over 20% as significant.
func metricInsights(current, previous float64, metric string, higherIsBetter bool) []Insight {
	var insights []Insight

	if previous == 0 {
		if current > 0 {
			insights = append(insights, Insight{
				Type:    "achievement",
				Message: fmt.Sprintf("Your %s went from nothing to %.1f this month", metric, current),
			})
		}
		return insights
	}

	changePercent := ((current - previous) / previous) * 100
	improving := (higherIsBetter && changePercent > 0) || (!higherIsBetter && changePercent < 0)

	absChange := math.Abs(changePercent)

	if absChange < 5 {
		insights = append(insights, Insight{
			Type:    "trend",
			Message: fmt.Sprintf("Your %s is stable (%.1f%% change)", metric, changePercent),
		})
	} else if improving {
		intensity := "improving"
		if absChange > 20 {
			intensity = "significantly improving"
		}
		insights = append(insights, Insight{
			Type:    "achievement",
			Message: fmt.Sprintf("Your %s is %s (%.1f%% better)", metric, intensity, absChange),
		})
	} else {
		intensity := "declining"
		if absChange > 20 {
			intensity = "significantly declining"
		}
		insights = append(insights, Insight{
			Type:    "warning",
			Message: fmt.Sprintf("Your %s is %s (%.1f%% worse)", metric, intensity, absChange),
		})
	}

	return insights
}
