// Package session persists browser sessions and their Strava tokens in
// SQLite. A session exists as soon as the browser first talks to the API;
// it is authenticated once the OAuth callback stores tokens on it.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iformai/iform/internal/logging"
	"github.com/iformai/iform/internal/strava"
	"golang.org/x/oauth2"
)

// ErrNotFound indicates the session id is unknown or expired
var ErrNotFound = errors.New("session not found")

// ErrNotAuthenticated indicates the session has no Strava tokens
var ErrNotAuthenticated = errors.New("session not authenticated with Strava")

// Session is one browser session and its (optional) Strava tokens.
type Session struct {
	ID           string
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
	CreatedAt    time.Time
	LastSeen     time.Time
}

// Authenticated reports whether the session holds Strava tokens.
func (s *Session) Authenticated() bool {
	return s.AccessToken != ""
}

// Store manages sessions in SQLite and refreshes Strava tokens on demand.
type Store struct {
	db    *sql.DB
	oauth *oauth2.Config
	ttl   time.Duration
}

// NewStore creates a session store. The OAuth config is used to refresh
// expiring access tokens transparently.
func NewStore(sqlDB *sql.DB, oauth *oauth2.Config, ttl time.Duration) *Store {
	return &Store{
		db:    sqlDB,
		oauth: oauth,
		ttl:   ttl,
	}
}

// Create inserts a new empty session and returns it.
func (s *Store) Create(ctx context.Context) (*Session, error) {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		LastSeen:  now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, access_token, refresh_token, expires_at, created_at, last_seen)
		 VALUES (?, '', '', 0, ?, ?)`,
		sess.ID, now.Unix(), now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return sess, nil
}

// Get loads a session by id and touches its last_seen timestamp. Sessions
// older than the store TTL are treated as missing.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	var (
		sess                Session
		createdAt, lastSeen int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, access_token, refresh_token, expires_at, created_at, last_seen
		 FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.AccessToken, &sess.RefreshToken, &sess.ExpiresAt, &createdAt, &lastSeen)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	sess.CreatedAt = time.Unix(createdAt, 0)
	sess.LastSeen = time.Unix(lastSeen, 0)

	if time.Since(sess.LastSeen) > s.ttl {
		_ = s.Delete(ctx, id)
		return nil, ErrNotFound
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET last_seen = ? WHERE id = ?`, time.Now().Unix(), id); err != nil {
		return nil, fmt.Errorf("touching session: %w", err)
	}
	return &sess, nil
}

// SaveTokens stores Strava tokens on an existing session.
func (s *Store) SaveTokens(ctx context.Context, id string, tokens *strava.Token) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET access_token = ?, refresh_token = ?, expires_at = ? WHERE id = ?`,
		tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresAt, id,
	)
	if err != nil {
		return fmt.Errorf("saving tokens: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// AccessToken returns a valid Strava access token for the session,
// refreshing through OAuth when the stored one is expired or about to
// expire.
func (s *Store) AccessToken(ctx context.Context, id string) (string, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	if !sess.Authenticated() {
		return "", ErrNotAuthenticated
	}

	if !strava.TokenExpired(sess.ExpiresAt) {
		return sess.AccessToken, nil
	}

	logging.Info("access token expiring, refreshing", "session", sess.ID)

	newTokens, err := strava.Refresh(ctx, s.oauth, sess.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("refreshing token: %w", err)
	}

	if err := s.SaveTokens(ctx, id, newTokens); err != nil {
		return "", fmt.Errorf("saving refreshed tokens: %w", err)
	}

	return newTokens.AccessToken, nil
}

// PurgeExpired deletes all sessions idle for longer than the store TTL and
// returns how many were removed.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.ttl).Unix()
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE last_seen < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Count returns the number of stored sessions.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return n, nil
}
