package coach

import (
	"strings"
	"testing"
)

func trendWith(pace, distance []float64) TrendData {
	return TrendData{
		Labels: []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"},
		Datasets: []TrendDataset{
			{Label: "Average Pace (min/km)", Data: pace},
			{Label: "Total Distance (km)", Data: distance},
		},
	}
}

func hasInsight(insights []Insight, typ, substr string) bool {
	for _, in := range insights {
		if in.Type == typ && strings.Contains(in.Message, substr) {
			return true
		}
	}
	return false
}

func TestTrendInsightsImprovingDistance(t *testing.T) {
	trend := trendWith(
		[]float64{0, 0, 0, 0, 5.5, 5.4},
		[]float64{0, 0, 0, 0, 50, 65},
	)

	insights := TrendInsights(trend)

	if !hasInsight(insights, "achievement", "monthly distance") {
		t.Errorf("expected distance achievement, got %+v", insights)
	}
}

func TestTrendInsightsDecliningPace(t *testing.T) {
	// Pace is minutes per km, so a higher value is worse
	trend := trendWith(
		[]float64{0, 0, 0, 0, 5.0, 6.5},
		[]float64{0, 0, 0, 0, 50, 50},
	)

	insights := TrendInsights(trend)

	if !hasInsight(insights, "warning", "average pace") {
		t.Errorf("expected pace warning, got %+v", insights)
	}
	if !hasInsight(insights, "trend", "monthly distance") {
		t.Errorf("expected stable distance trend, got %+v", insights)
	}
}

func TestTrendInsightsStable(t *testing.T) {
	trend := trendWith(
		[]float64{0, 0, 0, 0, 5.5, 5.5},
		[]float64{0, 0, 0, 0, 50, 51},
	)

	insights := TrendInsights(trend)

	if !hasInsight(insights, "trend", "stable") {
		t.Errorf("expected stable insight, got %+v", insights)
	}
	if hasInsight(insights, "warning", "") {
		t.Errorf("expected no warnings, got %+v", insights)
	}
}

func TestTrendInsightsNoRecentActivity(t *testing.T) {
	trend := trendWith(
		[]float64{5.5, 5.4, 0, 0, 0, 0},
		[]float64{50, 60, 0, 0, 0, 0},
	)

	insights := TrendInsights(trend)

	if !hasInsight(insights, "suggestion", "No recorded activity") {
		t.Errorf("expected inactivity suggestion, got %+v", insights)
	}
}

func TestTrendInsightsComebackMonth(t *testing.T) {
	trend := trendWith(
		[]float64{0, 0, 0, 0, 0, 5.2},
		[]float64{0, 0, 0, 0, 0, 30},
	)

	insights := TrendInsights(trend)

	if !hasInsight(insights, "achievement", "from nothing") {
		t.Errorf("expected comeback achievement, got %+v", insights)
	}
}

func TestTrendInsightsInsufficientData(t *testing.T) {
	if got := TrendInsights(TrendData{}); got != nil {
		t.Errorf("expected nil insights for empty trend, got %+v", got)
	}
	if got := TrendInsights(trendWith([]float64{5.0}, []float64{50})); got != nil {
		t.Errorf("expected nil insights for single-point trend, got %+v", got)
	}
}
