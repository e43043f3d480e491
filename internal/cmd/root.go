package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/iformai/iform/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbosity       int
	port            int
	dbPath          string
	staticDir       string
	envFile         string
	cleanupInterval time.Duration
	openBrowser     bool
)

var rootCmd = &cobra.Command{
	Use:   "iform",
	Short: "iform AI - browser-based running coach backed by Strava and Gemini",
	Long: `iform AI serves a small web app that connects to your Strava account,
fetches your last six months of activities, and asks Google Gemini for a
localized coaching report with concrete training suggestions.

Sessions are kept in a local SQLite database; Strava tokens are refreshed
automatically while a session is active.

Secrets come from the environment (or an optional .env file):
STRAVA_CLIENT_ID, STRAVA_CLIENT_SECRET, GOOGLE_API_KEY, and optionally
REDIRECT_URI, GEMINI_MODEL, GITHUB_URL, SESSION_TTL, DEFAULT_LANGUAGE.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Set up logging based on verbosity before any command runs
		logging.Setup(logging.Level(verbosity))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		rtCfg := &RuntimeConfig{
			Port:            port,
			DBPath:          dbPath,
			StaticDir:       staticDir,
			EnvFile:         envFile,
			CleanupInterval: cleanupInterval,
			OpenBrowser:     openBrowser,
		}

		return Run(rtCfg)
	},
}

func init() {
	// Logging verbosity
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase verbosity (-v for debug)")

	// Runtime settings as CLI flags
	rootCmd.PersistentFlags().IntVarP(&port, "port", "p", 3000, "HTTP server port")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "iform_sessions.db", "path to SQLite database file")
	rootCmd.PersistentFlags().StringVar(&staticDir, "static", "frontend", "directory with the web frontend")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional .env file with secrets")
	rootCmd.PersistentFlags().DurationVar(&cleanupInterval, "cleanup-interval", time.Hour, "interval between expired session sweeps")
	rootCmd.PersistentFlags().BoolVar(&openBrowser, "open", false, "open the app in the default browser on startup")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
