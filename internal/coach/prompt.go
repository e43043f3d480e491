package coach

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoActivities indicates an analysis request carried no activities.
// Callers reject the request before any prompt is built.
var ErrNoActivities = errors.New("no activities to analyze")

// ReportKeys holds the localized JSON field names the model is instructed
// to use for the report's two content sections. Resolved once per request
// from the locale catalogue and threaded explicitly through builder and
// parser.
type ReportKeys struct {
	Summary     string
	Suggestions string
}

// DefaultReportKeys are the literal fallbacks used when a locale catalogue
// lacks the field name entries.
var DefaultReportKeys = ReportKeys{Summary: "summary", Suggestions: "suggestions"}

// BuildReportRequest renders the deterministic instruction document sent to
// the model: persona, language directive, optional safety constraints, the
// summarized activity data as pretty-printed JSON, and the required fenced
// JSON output schema. It performs no I/O.
func BuildReportRequest(summaries []ActivitySummary, lang, specialConsiderations string, keys ReportKeys) string {
	summaryKey := keys.Summary
	if summaryKey == "" {
		summaryKey = DefaultReportKeys.Summary
	}
	suggestionsKey := keys.Suggestions
	if suggestionsKey == "" {
		suggestionsKey = DefaultReportKeys.Suggestions
	}

	// The summaries marshal cleanly by construction; an error here would
	// mean a broken ActivitySummary type, not bad input.
	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		data = []byte("[]")
	}

	var b strings.Builder

	fmt.Fprintf(&b, `You are an expert running coach named "iform AI". Your task is to analyze a runner's last 6 months of Strava data.
The user's preferred language is %s. Please provide your entire response in this language.`, lang)

	if specialConsiderations != "" {
		fmt.Fprintf(&b, `

IMPORTANT: The user has provided the following special considerations that you MUST take into account when creating suggestions: %q. Your suggestions should be safe and appropriate given these considerations.`, specialConsiderations)
	}

	fmt.Fprintf(&b, `

Here is the data:
%s

Your response MUST be a valid JSON object, enclosed in a json code fence. The JSON object must have the following structure:
{
  %q: "A brief, encouraging summary of the training period (2-3 sentences).",
  %q: [
    "A first concrete, actionable suggestion for improvement. Include specific details like duration (minutes), distance (km), and repetitions. For example: 'Try incorporating interval training: 4 repetitions of 800m at a faster pace, with 2 minutes of rest in between.'",
    "A second concrete, actionable suggestion for improvement. Be specific with numbers.",
    "A third concrete, actionable suggestion for improvement. Be specific with numbers."
  ],
  "trendData": {
    "labels": ["Month 1", "Month 2", "Month 3", "Month 4", "Month 5", "Month 6"],
    "datasets": [
      {
        "label": "Average Pace (min/km)",
        "data": [5.5, 5.4, 5.6, 5.3, 5.2, 5.1]
      },
      {
        "label": "Total Distance (km)",
        "data": [50, 60, 55, 70, 75, 80]
      }
    ]
  }
}

Important instructions for the JSON content:
- For "trendData.labels", create 6 labels representing the last 6 months (e.g., ["Jan", "Feb", "Mar", "Apr", "May", "Jun"]).
- For "trendData.datasets", provide placeholder data. The actual trend values are computed locally and will replace yours.
- Ensure all text in %q and %q is in %s.
`, data, summaryKey, suggestionsKey, summaryKey, suggestionsKey, lang)

	return b.String()
}
