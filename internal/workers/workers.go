package workers

import (
	"context"
	"time"

	"github.com/iformai/iform/internal/logging"
	"github.com/iformai/iform/internal/session"
)

// SessionCleaner periodically removes expired browser sessions
type SessionCleaner struct {
	store    *session.Store
	interval time.Duration
}

// NewSessionCleaner creates a new session cleanup worker
func NewSessionCleaner(store *session.Store, interval time.Duration) *SessionCleaner {
	return &SessionCleaner{
		store:    store,
		interval: interval,
	}
}

// Run starts the session cleanup worker
func (c *SessionCleaner) Run(ctx context.Context) {
	log := logging.Logger
	log.Info().Dur("interval", c.interval).Msg("session cleaner started")

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Do an initial sweep
	c.purge(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("session cleaner stopped")
			return
		case <-ticker.C:
			c.purge(ctx)
		}
	}
}

func (c *SessionCleaner) purge(ctx context.Context) {
	log := logging.Logger
	log.Debug().Msg("purging expired sessions")

	removed, err := c.store.PurgeExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to purge expired sessions")
		return
	}

	if removed > 0 {
		log.Info().Int64("removed", removed).Msg("expired sessions purged")
	} else {
		log.Debug().Msg("no expired sessions")
	}
}
