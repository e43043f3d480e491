package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"golang.org/x/sync/errgroup"

	"github.com/iformai/iform/internal/config"
	"github.com/iformai/iform/internal/db"
	"github.com/iformai/iform/internal/gemini"
	"github.com/iformai/iform/internal/i18n"
	"github.com/iformai/iform/internal/logging"
	"github.com/iformai/iform/internal/server"
	"github.com/iformai/iform/internal/session"
	"github.com/iformai/iform/internal/strava"
	"github.com/iformai/iform/internal/workers"
)

// RuntimeConfig holds all runtime configuration from CLI flags
type RuntimeConfig struct {
	Port            int
	DBPath          string
	StaticDir       string
	EnvFile         string
	CleanupInterval time.Duration
	OpenBrowser     bool
}

// Run is the main entry point for the server
func Run(rtCfg *RuntimeConfig) error {
	log := logging.Logger

	cfg, err := config.Load(rtCfg.EnvFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log.Info().
		Int("port", rtCfg.Port).
		Str("db_path", rtCfg.DBPath).
		Str("static_dir", rtCfg.StaticDir).
		Str("model", cfg.GeminiModel).
		Dur("session_ttl", cfg.SessionTTL).
		Msg("starting iform")

	// Set up context for shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	// Open database and apply migrations
	log.Info().Str("path", rtCfg.DBPath).Msg("opening database")
	sqlDB, err := db.Open(rtCfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	if err := db.Migrate(ctx, sqlDB); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	locales, err := i18n.Load(cfg.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("loading locales: %w", err)
	}

	oauth := strava.OAuthConfig(cfg.StravaClientID, cfg.StravaClientSecret, cfg.RedirectURI)
	sessions := session.NewStore(sqlDB, oauth, cfg.SessionTTL)
	generator := gemini.NewClient(cfg.GoogleAPIKey, cfg.GeminiModel)

	srv := server.New(cfg, sessions, oauth, generator, locales, rtCfg.StaticDir)

	g, gCtx := errgroup.WithContext(ctx)

	// Expired session sweeper
	cleaner := workers.NewSessionCleaner(sessions, rtCfg.CleanupInterval)
	g.Go(func() error {
		cleaner.Run(gCtx)
		return nil
	})

	addr := fmt.Sprintf(":%d", rtCfg.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	g.Go(func() error {
		log.Info().
			Str("address", addr).
			Str("url", fmt.Sprintf("http://localhost%s", addr)).
			Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info().Msg("shutting down HTTP server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if rtCfg.OpenBrowser {
		url := fmt.Sprintf("http://localhost:%d", rtCfg.Port)
		if err := browser.OpenURL(url); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("failed to open browser")
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info().Msg("shutdown complete")
	return nil
}
