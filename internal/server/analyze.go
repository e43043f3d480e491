package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iformai/iform/internal/coach"
	"github.com/iformai/iform/internal/logging"
	"github.com/iformai/iform/internal/strava"
)

type analyzeRequest struct {
	Activities            []strava.Activity `json:"activities"`
	Lang                  string            `json:"lang"`
	SpecialConsiderations string            `json:"special_considerations"`
}

// handleAnalyze runs the full coaching pipeline: normalize, prompt, model
// call, parse, then overwrite the model's placeholder trend with the series
// computed from the actual activities.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		analysesTotal.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "No activities provided for analysis.")
		return
	}
	if len(req.Activities) == 0 {
		analysesTotal.WithLabelValues("bad_request").Inc()
		logging.Warn("rejecting analysis request", "error", coach.ErrNoActivities)
		writeError(w, http.StatusBadRequest, "No activities provided for analysis.")
		return
	}

	lang := req.Lang
	if lang == "" {
		lang = s.cfg.DefaultLanguage
	}
	locale := s.locales.Lookup(lang)
	keys := coach.ReportKeys{
		Summary:     locale.UIString("summary", coach.DefaultReportKeys.Summary),
		Suggestions: locale.UIString("suggestions", coach.DefaultReportKeys.Suggestions),
	}

	summaries := coach.Normalize(req.Activities)
	prompt := coach.BuildReportRequest(summaries, lang, req.SpecialConsiderations, keys)

	text, err := s.generator.GenerateContent(r.Context(), prompt)
	if err != nil {
		analysesTotal.WithLabelValues("model_error").Inc()
		logging.Error("model call failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to analyze activities.")
		return
	}

	report, err := coach.ParseReportResponse(text)
	if err != nil {
		switch {
		case errors.Is(err, coach.ErrMalformedResponse):
			analysesTotal.WithLabelValues("malformed_response").Inc()
			logging.Error("model response missing fenced JSON block", "response_bytes", len(text))
		case errors.Is(err, coach.ErrInvalidJSON):
			analysesTotal.WithLabelValues("invalid_json").Inc()
			logging.Error("model response JSON did not parse", "error", err)
		default:
			analysesTotal.WithLabelValues("parse_error").Inc()
			logging.Error("failed to parse model response", "error", err)
		}
		writeError(w, http.StatusInternalServerError, "Failed to analyze activities.")
		return
	}

	// Guarantee the localized keys hold usable content even when the model
	// drifted from the schema.
	report[keys.Summary] = report.Summary(keys, "No summary available.")
	suggestions := report.Suggestions(keys)
	if suggestions == nil {
		suggestions = []string{"No suggestions available."}
	}
	report[keys.Suggestions] = suggestions

	// The model is told to emit placeholder trend data; the real series
	// comes from the activities themselves.
	trend := coach.ComputeTrend(req.Activities, s.now(), locale)
	report["trendData"] = trend
	report["insights"] = coach.TrendInsights(trend)

	analysesTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, report)
}
