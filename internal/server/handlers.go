package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iformai/iform/internal/logging"
	"github.com/iformai/iform/internal/session"
	"github.com/iformai/iform/internal/strava"
)

const stateCookie = "iform_oauth_state"

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// currentSession resolves the browser session from its cookie, creating a
// fresh session (and setting the cookie) when none exists yet.
func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		sess, err := s.sessions.Get(r.Context(), c.Value)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, session.ErrNotFound) {
			return nil, err
		}
	}

	sess, err := s.sessions.Create(r.Context())
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

func (s *Server) handleLang(w http.ResponseWriter, r *http.Request) {
	lang := mux.Vars(r)["lang"]
	if !s.locales.Has(lang) {
		writeError(w, http.StatusNotFound, "Language not found")
		return
	}

	// The frontend reads the catalogue as a flat key map
	loc := s.locales.Lookup(lang)
	payload := make(map[string]interface{}, len(loc.UI)+1)
	for k, v := range loc.UI {
		payload[k] = v
	}
	payload["months_short"] = loc.MonthsShort
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleStravaStatus(w http.ResponseWriter, r *http.Request) {
	sess, err := s.currentSession(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": sess.Authenticated()})
}

func (s *Server) handleGithubURL(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"url": s.cfg.GithubURL})
}

func (s *Server) handleStravaConnect(w http.ResponseWriter, r *http.Request) {
	if _, err := s.currentSession(w, r); err != nil {
		writeError(w, http.StatusInternalServerError, "session error")
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api/strava",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, strava.AuthCodeURL(s.oauth, state), http.StatusFound)
}

func (s *Server) handleStravaCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Authorization code is missing.", http.StatusBadRequest)
		return
	}

	stateCk, err := r.Cookie(stateCookie)
	if err != nil || stateCk.Value == "" || stateCk.Value != r.URL.Query().Get("state") {
		http.Error(w, "Invalid OAuth state.", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/api/strava", MaxAge: -1})

	sess, err := s.currentSession(w, r)
	if err != nil {
		http.Error(w, "Failed to authenticate with Strava.", http.StatusInternalServerError)
		return
	}

	tokens, err := strava.Exchange(r.Context(), s.oauth, code)
	if err != nil {
		logging.Error("oauth code exchange failed", "error", err)
		http.Error(w, "Failed to authenticate with Strava.", http.StatusInternalServerError)
		return
	}

	if err := s.sessions.SaveTokens(r.Context(), sess.ID, tokens); err != nil {
		logging.Error("failed to persist strava tokens", "error", err)
		http.Error(w, "Failed to authenticate with Strava.", http.StatusInternalServerError)
		return
	}

	logging.Info("strava account connected", "session", sess.ID)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	sess, err := s.currentSession(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session error")
		return
	}
	if !sess.Authenticated() {
		writeError(w, http.StatusUnauthorized, "Not authenticated with Strava.")
		return
	}

	accessToken, err := s.sessions.AccessToken(r.Context(), sess.ID)
	if err != nil {
		logging.Error("failed to resolve access token", "error", err)
		writeError(w, http.StatusUnauthorized, "Not authenticated with Strava.")
		return
	}

	sixMonthsAgo := s.now().AddDate(0, -6, 0)
	client := strava.NewClient(accessToken)
	activities, err := client.FetchActivitiesSince(r.Context(), sixMonthsAgo)
	if err != nil {
		if errors.Is(err, strava.ErrUnauthorized) {
			stravaFetchesTotal.WithLabelValues("unauthorized").Inc()
			writeError(w, http.StatusUnauthorized, "Not authenticated with Strava.")
			return
		}
		stravaFetchesTotal.WithLabelValues("error").Inc()
		logging.Error("failed to fetch strava activities", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch activities from Strava.")
		return
	}

	stravaFetchesTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, activities)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if err := s.sessions.Delete(r.Context(), c.Value); err != nil {
			logging.Error("failed to delete session", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
