package coach

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// ErrMalformedResponse indicates the model reply contains no fenced JSON block
var ErrMalformedResponse = errors.New("model reply contains no fenced JSON block")

// ErrInvalidJSON indicates the fenced block content does not parse as JSON
var ErrInvalidJSON = errors.New("fenced JSON block is not valid JSON")

// fencedJSON captures the content of the first ```json ... ``` block,
// non-greedily across newlines.
var fencedJSON = regexp.MustCompile("```json\\n([\\s\\S]*?)\\n```")

// CoachingReport is the parsed model output. Beyond being valid JSON no
// schema is enforced; missing localized keys are tolerated by the accessors.
type CoachingReport map[string]interface{}

// ParseReportResponse extracts the fenced JSON block from the model's
// free-text reply and parses it. Both failure variants are terminal; the
// caller logs which one occurred and surfaces a generic failure to the user.
func ParseReportResponse(text string) (CoachingReport, error) {
	match := fencedJSON.FindStringSubmatch(text)
	if match == nil {
		return nil, ErrMalformedResponse
	}

	var report CoachingReport
	if err := json.Unmarshal([]byte(match[1]), &report); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	return report, nil
}

// Summary returns the localized summary text, or fallback when the report
// lacks the key or it is not a string.
func (r CoachingReport) Summary(keys ReportKeys, fallback string) string {
	if s, ok := r[keys.Summary].(string); ok && s != "" {
		return s
	}
	return fallback
}

// Suggestions returns the localized suggestion strings in report order.
// Non-string entries are skipped; a missing or malformed key yields nil.
func (r CoachingReport) Suggestions(keys ReportKeys) []string {
	raw, ok := r[keys.Suggestions].([]interface{})
	if !ok {
		return nil
	}

	suggestions := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			suggestions = append(suggestions, s)
		}
	}
	return suggestions
}
