// Package watch detects new uploads on a YouTube channel, either through
// the Data API v3 or the public Atom feed. Both modes answer the same
// question: what is the newest video right now.
package watch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tubecrier/tubecrier/internal/core/domain"
)

// Mode selects the upload detection backend.
type Mode string

const (
	// ModeAPI uses the YouTube Data API v3. Costs quota, returns full
	// descriptions.
	ModeAPI Mode = "api"
	// ModeRSS polls the channel's public Atom feed. No key, no quota,
	// slightly laggier metadata.
	ModeRSS Mode = "rss"
)

// Watcher reports the most recent upload of a channel.
type Watcher interface {
	// LatestVideo returns the newest video on the channel.
	// apperrors.ErrNotFound means the channel has no videos.
	LatestVideo(ctx context.Context, channelID string) (domain.VideoContext, error)
}

// Config holds watcher construction settings.
type Config struct {
	Mode   Mode
	APIKey string // api mode only
}

// New builds the configured watcher.
func New(ctx context.Context, cfg Config, logger *zerolog.Logger) (Watcher, error) {
	switch cfg.Mode {
	case ModeAPI:
		return newAPIWatcher(ctx, cfg.APIKey, logger)
	case ModeRSS:
		return newRSSWatcher(logger), nil
	default:
		return nil, fmt.Errorf("unknown watch mode %q", cfg.Mode)
	}
}

// videoURL is the canonical watch link for a video ID.
func videoURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
