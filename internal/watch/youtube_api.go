package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/tubecrier/tubecrier/internal/core/domain"
	apperrors "github.com/tubecrier/tubecrier/internal/core/errors"
)

// apiWatcher asks the Data API for the head of the channel's uploads
// playlist. The uploads playlist ID is resolved once per channel and cached;
// after that each poll costs a single quota unit.
type apiWatcher struct {
	service *youtube.Service
	logger  *zerolog.Logger

	mu      sync.Mutex
	uploads map[string]channelInfo
}

type channelInfo struct {
	playlistID string
	name       string
}

func newAPIWatcher(ctx context.Context, apiKey string, logger *zerolog.Logger) (*apiWatcher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube api mode requires an api key")
	}

	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &apiWatcher{
		service: service,
		logger:  logger,
		uploads: make(map[string]channelInfo),
	}, nil
}

func (w *apiWatcher) LatestVideo(ctx context.Context, channelID string) (domain.VideoContext, error) {
	playlistID, username, err := w.uploadsPlaylist(ctx, channelID)
	if err != nil {
		return domain.VideoContext{}, err
	}

	resp, err := w.service.PlaylistItems.List([]string{"snippet", "contentDetails"}).
		PlaylistId(playlistID).
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return domain.VideoContext{}, fmt.Errorf("playlistItems.list: %w", err)
	}

	if len(resp.Items) == 0 {
		return domain.VideoContext{}, fmt.Errorf("%w: channel %s has no uploads", apperrors.ErrNotFound, channelID)
	}

	item := resp.Items[0]

	video := domain.VideoContext{
		ID:       item.ContentDetails.VideoId,
		URL:      videoURL(item.ContentDetails.VideoId),
		Username: username,
	}

	if item.Snippet != nil {
		video.Title = item.Snippet.Title
		video.Description = item.Snippet.Description

		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.High != nil {
			video.Thumbnail = item.Snippet.Thumbnails.High.Url
		}

		if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			video.PublishedAt = t
		}
	}

	return video, nil
}

func (w *apiWatcher) uploadsPlaylist(ctx context.Context, channelID string) (string, string, error) {
	w.mu.Lock()
	cached, ok := w.uploads[channelID]
	w.mu.Unlock()

	if ok {
		return cached.playlistID, cached.name, nil
	}

	resp, err := w.service.Channels.List([]string{"contentDetails", "snippet"}).
		Id(channelID).
		Context(ctx).
		Do()
	if err != nil {
		return "", "", fmt.Errorf("channels.list: %w", err)
	}

	if len(resp.Items) == 0 {
		return "", "", fmt.Errorf("%w: channel %s", apperrors.ErrNotFound, channelID)
	}

	channel := resp.Items[0]
	playlistID := channel.ContentDetails.RelatedPlaylists.Uploads

	name := ""
	if channel.Snippet != nil {
		name = channel.Snippet.Title
	}

	w.mu.Lock()
	w.uploads[channelID] = channelInfo{playlistID: playlistID, name: name}
	w.mu.Unlock()

	w.logger.Debug().
		Str("channel_id", channelID).
		Str("uploads_playlist", playlistID).
		Msg("resolved uploads playlist")

	return playlistID, name, nil
}
