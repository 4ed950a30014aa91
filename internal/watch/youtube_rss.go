package watch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/rs/zerolog"

	"github.com/tubecrier/tubecrier/internal/core/domain"
	apperrors "github.com/tubecrier/tubecrier/internal/core/errors"
)

const (
	rssTimeout   = 15 * time.Second
	rssUserAgent = "tubecrier/1.0 (+https://github.com/tubecrier/tubecrier)"
)

// rssWatcher polls the channel's public Atom feed. The feed carries the
// fifteen newest entries with title, published time and a media:group block
// holding the description and thumbnail.
type rssWatcher struct {
	parser  *gofeed.Parser
	baseURL string
	logger  *zerolog.Logger
}

func newRSSWatcher(logger *zerolog.Logger) *rssWatcher {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: rssTimeout}
	parser.UserAgent = rssUserAgent

	return &rssWatcher{
		parser:  parser,
		baseURL: "https://www.youtube.com",
		logger:  logger,
	}
}

func (w *rssWatcher) LatestVideo(ctx context.Context, channelID string) (domain.VideoContext, error) {
	feedURL := fmt.Sprintf("%s/feeds/videos.xml?channel_id=%s", w.baseURL, channelID)

	feed, err := w.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return domain.VideoContext{}, fmt.Errorf("parse channel feed: %w", err)
	}

	if len(feed.Items) == 0 {
		return domain.VideoContext{}, fmt.Errorf("%w: channel %s has no feed entries", apperrors.ErrNotFound, channelID)
	}

	item := feed.Items[0]

	video := domain.VideoContext{
		ID:       extensionValue(item, "yt", "videoId"),
		Title:    item.Title,
		Username: feed.Title,
	}

	if video.ID == "" {
		return domain.VideoContext{}, fmt.Errorf("feed entry for %s has no video id", channelID)
	}

	video.URL = videoURL(video.ID)

	if item.Author != nil && item.Author.Name != "" {
		video.Username = item.Author.Name
	}

	if item.PublishedParsed != nil {
		video.PublishedAt = *item.PublishedParsed
	}

	if group := mediaGroup(item); group != nil {
		if desc := group.Children["description"]; len(desc) > 0 {
			video.Description = desc[0].Value
		}

		if thumbs := group.Children["thumbnail"]; len(thumbs) > 0 {
			video.Thumbnail = thumbs[0].Attrs["url"]
		}
	}

	return video, nil
}

func extensionValue(item *gofeed.Item, namespace, name string) string {
	exts, ok := item.Extensions[namespace]
	if !ok {
		return ""
	}

	values := exts[name]
	if len(values) == 0 {
		return ""
	}

	return values[0].Value
}

func mediaGroup(item *gofeed.Item) *ext.Extension {
	exts, ok := item.Extensions["media"]
	if !ok {
		return nil
	}

	groups := exts["group"]
	if len(groups) == 0 {
		return nil
	}

	return &groups[0]
}
