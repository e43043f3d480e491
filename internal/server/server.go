// Package server exposes the browser-facing HTTP API: Strava OAuth,
// activity retrieval, and the Gemini-backed coaching analysis.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/oauth2"

	"github.com/iformai/iform/internal/config"
	"github.com/iformai/iform/internal/i18n"
	"github.com/iformai/iform/internal/session"
)

const sessionCookie = "iform_session"

// TextGenerator produces model output for a prompt. Satisfied by
// gemini.Client; tests substitute a canned implementation.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Server wires the HTTP routes to sessions, Strava, and the model.
type Server struct {
	router    *mux.Router
	cfg       *config.Config
	sessions  *session.Store
	oauth     *oauth2.Config
	generator TextGenerator
	locales   *i18n.Bundle
	staticDir string

	// now is replaceable in tests so trend windows are deterministic
	now func() time.Time
}

// New builds the server and registers all routes.
func New(
	cfg *config.Config,
	sessions *session.Store,
	oauth *oauth2.Config,
	generator TextGenerator,
	locales *i18n.Bundle,
	staticDir string,
) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		cfg:       cfg,
		sessions:  sessions,
		oauth:     oauth,
		generator: generator,
		locales:   locales,
		staticDir: staticDir,
		now:       time.Now,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.recoveryMiddleware)
	s.router.Use(s.loggingMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/lang/{lang}", s.handleLang).Methods("GET").Name("lang")
	api.HandleFunc("/strava/status", s.handleStravaStatus).Methods("GET").Name("strava-status")
	api.HandleFunc("/strava/connect", s.handleStravaConnect).Methods("GET").Name("strava-connect")
	api.HandleFunc("/strava/callback", s.handleStravaCallback).Methods("GET").Name("strava-callback")
	api.HandleFunc("/strava/activities", s.handleActivities).Methods("GET").Name("strava-activities")
	api.HandleFunc("/analyze/activities", s.handleAnalyze).Methods("POST").Name("analyze-activities")
	api.HandleFunc("/logout", s.handleLogout).Methods("POST").Name("logout")
	api.HandleFunc("/github_url", s.handleGithubURL).Methods("GET").Name("github-url")

	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET").Name("metrics")

	if s.staticDir != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir))).Name("static")
	}
}

// ServeHTTP lets the server plug directly into http.Server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
