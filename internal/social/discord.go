package social

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tubecrier/tubecrier/internal/core/domain"
)

// DiscordPoster posts through an incoming webhook. Webhooks need no bot
// account and no gateway connection; one POST per announcement.
type DiscordPoster struct {
	webhookURL string
	client     *http.Client
	limiter    *rate.Limiter
	logger     *zerolog.Logger
}

func NewDiscord(webhookURL string, logger *zerolog.Logger) *DiscordPoster {
	return &DiscordPoster{
		webhookURL: webhookURL,
		client:     newHTTPClient(),
		limiter:    newPostLimiter(),
		logger:     logger,
	}
}

func (p *DiscordPoster) Name() string { return domain.PlatformDiscord }

type discordWebhookPayload struct {
	Content string `json:"content"`
}

func (p *DiscordPoster) Post(ctx context.Context, text string, _ domain.VideoContext) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("post limiter: %w", err)
	}

	err := doJSON(ctx, p.client, http.MethodPost, p.webhookURL, nil, discordWebhookPayload{Content: text}, nil)
	if err != nil {
		return err
	}

	p.logger.Info().Str("platform", p.Name()).Msg("posted announcement")

	return nil
}
