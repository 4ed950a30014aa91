// Package storage persists watcher state and announcement history in a
// local SQLite database. Losing the file means one duplicate announcement
// at worst, so a single file with WAL is plenty.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	apperrors "github.com/tubecrier/tubecrier/internal/core/errors"
)

// Announcement is one delivery attempt's outcome, accepted or not.
type Announcement struct {
	ID       uuid.UUID
	VideoID  string
	Platform string
	Message  string
	Accepted bool
	Attempts int
	PostedAt time.Time
}

// Store wraps the SQLite handle.
type Store struct {
	db *sql.DB
}

// Open opens (and creates if needed) the database at path and runs the
// schema migration.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS channel_state (
			channel_id    TEXT PRIMARY KEY,
			last_video_id TEXT NOT NULL,
			updated_at    TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS announcements (
			id        TEXT PRIMARY KEY,
			video_id  TEXT NOT NULL,
			platform  TEXT NOT NULL,
			message   TEXT NOT NULL,
			accepted  INTEGER NOT NULL,
			attempts  INTEGER NOT NULL,
			posted_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_announcements_video ON announcements(video_id);
		CREATE INDEX IF NOT EXISTS idx_announcements_platform_time ON announcements(platform, posted_at DESC);
	`)

	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// LastVideoID returns the newest video already announced for the channel.
// apperrors.ErrNotFound means the channel has never been seen; the caller
// baselines instead of announcing history.
func (s *Store) LastVideoID(ctx context.Context, channelID string) (string, error) {
	var videoID string

	err := s.db.QueryRowContext(ctx,
		`SELECT last_video_id FROM channel_state WHERE channel_id = ?`, channelID).Scan(&videoID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: channel %s", apperrors.ErrNotFound, channelID)
	}

	if err != nil {
		return "", fmt.Errorf("query channel state: %w", err)
	}

	return videoID, nil
}

// SetLastVideoID records the newest announced video for the channel.
func (s *Store) SetLastVideoID(ctx context.Context, channelID, videoID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO channel_state (channel_id, last_video_id, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(channel_id) DO UPDATE SET
			last_video_id = excluded.last_video_id,
			updated_at = excluded.updated_at
	`, channelID, videoID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert channel state: %w", err)
	}

	return nil
}

// RecordAnnouncement stores one delivery outcome.
func (s *Store) RecordAnnouncement(ctx context.Context, a Announcement) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	if a.PostedAt.IsZero() {
		a.PostedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO announcements (id, video_id, platform, message, accepted, attempts, posted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID.String(), a.VideoID, a.Platform, a.Message, a.Accepted, a.Attempts, a.PostedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert announcement: %w", err)
	}

	return nil
}

// RecentMessages returns the latest accepted messages for a platform,
// newest first. Pass platform "" for all platforms. Used to warm the
// novelty cache across restarts.
func (s *Store) RecentMessages(ctx context.Context, platform string, limit int) ([]string, error) {
	query := `SELECT message FROM announcements WHERE accepted = 1`
	args := []any{}

	if platform != "" {
		query += ` AND platform = ?`
		args = append(args, platform)
	}

	query += ` ORDER BY posted_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []string

	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}

		messages = append(messages, msg)
	}

	return messages, rows.Err()
}
