package social

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tubecrier/tubecrier/internal/core/domain"
)

// MastodonPoster publishes statuses with an application access token. The
// Idempotency-Key header keeps a retried request from double-posting.
type MastodonPoster struct {
	server      string
	accessToken string
	visibility  string
	client      *http.Client
	limiter     *rate.Limiter
	logger      *zerolog.Logger
}

func NewMastodon(server, accessToken, visibility string, logger *zerolog.Logger) *MastodonPoster {
	if visibility == "" {
		visibility = "public"
	}

	return &MastodonPoster{
		server:      strings.TrimRight(server, "/"),
		accessToken: accessToken,
		visibility:  visibility,
		client:      newHTTPClient(),
		limiter:     newPostLimiter(),
		logger:      logger,
	}
}

func (p *MastodonPoster) Name() string { return domain.PlatformMastodon }

type mastodonStatus struct {
	Status     string `json:"status"`
	Visibility string `json:"visibility"`
}

func (p *MastodonPoster) Post(ctx context.Context, text string, _ domain.VideoContext) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("post limiter: %w", err)
	}

	headers := map[string]string{
		headerAuthorization: "Bearer " + p.accessToken,
		"Idempotency-Key":   uuid.NewString(),
	}

	payload := mastodonStatus{Status: text, Visibility: p.visibility}

	err := doJSON(ctx, p.client, http.MethodPost, p.server+"/api/v1/statuses", headers, payload, nil)
	if err != nil {
		return err
	}

	p.logger.Info().Str("platform", p.Name()).Msg("posted announcement")

	return nil
}
