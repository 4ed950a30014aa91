// Package app wires the daemon together: watcher, generator, posters and
// state store, plus the polling loop that connects them.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tubecrier/tubecrier/internal/core/domain"
	apperrors "github.com/tubecrier/tubecrier/internal/core/errors"
	"github.com/tubecrier/tubecrier/internal/core/llm"
	"github.com/tubecrier/tubecrier/internal/platform/config"
	"github.com/tubecrier/tubecrier/internal/platform/observability"
	"github.com/tubecrier/tubecrier/internal/platform/worker"
	"github.com/tubecrier/tubecrier/internal/process/generator"
	"github.com/tubecrier/tubecrier/internal/process/validate"
	"github.com/tubecrier/tubecrier/internal/social"
	"github.com/tubecrier/tubecrier/internal/storage"
	"github.com/tubecrier/tubecrier/internal/watch"
)

const (
	outcomeAccepted  = "accepted"
	outcomeExhausted = "exhausted"
	outcomeFallback  = "fallback"

	statusOK    = "ok"
	statusError = "error"

	postTimeout = 45 * time.Second
)

// App holds the daemon's dependencies.
type App struct {
	cfg       *config.Config
	store     *storage.Store
	logger    *zerolog.Logger
	watcher   watch.Watcher
	generator *generator.Generator
	posters   []social.Poster
}

// New builds the application from configuration.
func New(ctx context.Context, cfg *config.Config, store *storage.Store, logger *zerolog.Logger) (*App, error) {
	watcher, err := watch.New(ctx, watch.Config{
		Mode:   watch.Mode(cfg.YouTubeMode),
		APIKey: cfg.YouTubeAPIKey,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("watcher init: %w", err)
	}

	provider, err := llm.New(llm.Config{
		Provider:    llm.ProviderName(cfg.LLMProvider),
		Endpoint:    cfg.LLMEndpoint,
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.LLMTimeout,
		RateRPS:     cfg.LLMRateRPS,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("llm init: %w", err)
	}

	rules, err := buildRules(cfg)
	if err != nil {
		return nil, err
	}

	gen := generator.New(provider, rules, generator.Options{
		MaxAttempts:    cfg.MaxAttempts,
		DedupScope:     generator.DedupScope(cfg.DedupScope),
		DedupCapacity:  cfg.DedupCapacity,
		DedupThreshold: cfg.DedupThreshold,
	}, logger)

	app := &App{
		cfg:       cfg,
		store:     store,
		logger:    logger,
		watcher:   watcher,
		generator: gen,
		posters:   buildPosters(cfg, logger),
	}

	if len(app.posters) == 0 {
		return nil, fmt.Errorf("no platforms enabled")
	}

	if err := app.warmNoveltyCache(ctx); err != nil {
		return nil, err
	}

	return app, nil
}

func buildRules(cfg *config.Config) (validate.Rules, error) {
	rules := validate.DefaultRules()

	if len(cfg.ForbiddenWords) > 0 {
		rules.ForbiddenWords = cfg.ForbiddenWords
	}

	rules.MaxEmojiCount = cfg.MaxEmojiCount
	rules.ProfanityEnabled = cfg.ProfanityEnabled
	rules.ProfanitySeverity = validate.Severity(cfg.ProfanitySeverity)
	rules.QualityScoringEnabled = cfg.QualityScoringEnabled
	rules.MinQualityScore = cfg.MinQualityScore

	if err := rules.Validate(); err != nil {
		return validate.Rules{}, fmt.Errorf("content rules: %w", err)
	}

	return rules, nil
}

func buildPosters(cfg *config.Config, logger *zerolog.Logger) []social.Poster {
	var posters []social.Poster

	if cfg.DiscordEnabled {
		posters = append(posters, social.NewDiscord(cfg.DiscordWebhookURL, logger))
	}

	if cfg.MatrixEnabled {
		posters = append(posters, social.NewMatrix(cfg.MatrixHomeserver, cfg.MatrixRoomID, cfg.MatrixAccessToken, logger))
	}

	if cfg.BlueskyEnabled {
		posters = append(posters, social.NewBluesky(cfg.BlueskyHost, cfg.BlueskyHandle, cfg.BlueskyAppPassword, logger))
	}

	if cfg.MastodonEnabled {
		posters = append(posters, social.NewMastodon(cfg.MastodonServer, cfg.MastodonAccessToken, cfg.MastodonVisibility, logger))
	}

	return posters
}

// warmNoveltyCache reloads recent accepted messages so a restart cannot
// repeat what was just posted.
func (a *App) warmNoveltyCache(ctx context.Context) error {
	if generator.DedupScope(a.cfg.DedupScope) == generator.ScopePlatform {
		for _, p := range a.posters {
			msgs, err := a.store.RecentMessages(ctx, p.Name(), a.cfg.DedupCapacity)
			if err != nil {
				return fmt.Errorf("warm novelty cache: %w", err)
			}

			a.generator.Warm(p.Name(), reverse(msgs))
		}

		return nil
	}

	msgs, err := a.store.RecentMessages(ctx, "", a.cfg.DedupCapacity)
	if err != nil {
		return fmt.Errorf("warm novelty cache: %w", err)
	}

	a.generator.Warm("", reverse(msgs))

	return nil
}

// reverse flips newest-first query results into insertion order.
func reverse(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}

	return out
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	return observability.NewServer(a.store, a.cfg.HealthPort, a.logger).Start(ctx)
}

// Run polls for new uploads until the context is canceled. With once set a
// single poll runs and the process exits.
func (a *App) Run(ctx context.Context, once bool) error {
	if once {
		return a.poll(ctx)
	}

	return worker.Loop(ctx, worker.Config{
		Name:         "upload-watcher",
		PollInterval: a.cfg.CheckInterval,
		Process:      a.poll,
		OnError: func(err error) bool {
			observability.PollErrors.Inc()
			a.logger.Error().Err(err).Msg("poll iteration failed")

			return true
		},
		Logger: a.logger,
	})
}

func (a *App) poll(ctx context.Context) error {
	defer worker.RecoverPanic(a.logger, "poll")

	video, err := a.watcher.LatestVideo(ctx, a.cfg.ChannelID)
	if err != nil {
		return fmt.Errorf("check channel: %w", err)
	}

	last, err := a.store.LastVideoID(ctx, a.cfg.ChannelID)
	if errors.Is(err, apperrors.ErrNotFound) {
		// First run: baseline without announcing history.
		a.logger.Info().
			Str("channel_id", a.cfg.ChannelID).
			Str("video_id", video.ID).
			Msg("baselining channel state")

		return a.store.SetLastVideoID(ctx, a.cfg.ChannelID, video.ID)
	}

	if err != nil {
		return err
	}

	if video.ID == last {
		return nil
	}

	observability.VideosDetected.Inc()
	a.logger.Info().
		Str("video_id", video.ID).
		Str("title", video.Title).
		Msg("new upload detected")

	a.announce(ctx, video)

	return a.store.SetLastVideoID(ctx, a.cfg.ChannelID, video.ID)
}

// announce fans the video out to every enabled platform. One platform
// failing never blocks the others.
func (a *App) announce(ctx context.Context, video domain.VideoContext) {
	for _, poster := range a.posters {
		if ctx.Err() != nil {
			return
		}

		text, res, err := a.compose(ctx, video, poster.Name())
		if err != nil {
			a.logger.Error().Err(err).
				Str("platform", poster.Name()).
				Msg("composing announcement failed")

			continue
		}

		status := statusOK

		err = worker.RunWithTimeout(ctx, postTimeout, func(ctx context.Context) error {
			return poster.Post(ctx, text, video)
		})
		if err != nil {
			status = statusError

			a.logger.Error().Err(err).
				Str("platform", poster.Name()).
				Msg("post failed")
		}

		observability.PostsTotal.WithLabelValues(poster.Name(), status).Inc()

		record := storage.Announcement{
			VideoID:  video.ID,
			Platform: poster.Name(),
			Message:  text,
			Accepted: res.Accepted,
			Attempts: res.Attempts,
		}
		if err := a.store.RecordAnnouncement(ctx, record); err != nil {
			a.logger.Error().Err(err).Msg("recording announcement failed")
		}
	}
}

// compose runs the generation loop for one platform and falls back to the
// static template when no acceptable candidate came out of it.
func (a *App) compose(ctx context.Context, video domain.VideoContext, platform string) (string, generator.Result, error) {
	start := time.Now()

	res, err := a.generator.Generate(ctx, video, platform)

	observability.GenerationDuration.WithLabelValues(platform).Observe(time.Since(start).Seconds())
	observability.GenerationAttempts.WithLabelValues(platform).Add(float64(res.Attempts))

	switch {
	case err == nil && res.Accepted:
		observability.GenerationOutcomes.WithLabelValues(platform, outcomeAccepted).Inc()

		return res.Text, res, nil

	case err == nil:
		// Exhausted: the last candidate still violates rules, so post the
		// template instead of something off-brand.
		observability.GenerationOutcomes.WithLabelValues(platform, outcomeExhausted).Inc()
		a.logger.Warn().
			Str("platform", platform).
			Strs("violations", res.Violations).
			Msg("generation exhausted, using template")

		text, tmplErr := a.templateText(video, platform)

		return text, res, tmplErr

	case errors.Is(err, apperrors.ErrNoCandidate):
		observability.GenerationOutcomes.WithLabelValues(platform, outcomeFallback).Inc()
		a.logger.Warn().
			Str("platform", platform).
			Msg("no candidate produced, using template")

		text, tmplErr := a.templateText(video, platform)

		return text, res, tmplErr

	default:
		return "", res, err
	}
}

// templateText renders the configured fallback template, trimmed to the
// platform limit with the link appended.
func (a *App) templateText(video domain.VideoContext, platform string) (string, error) {
	profile, err := domain.GetProfile(platform)
	if err != nil {
		return "", err
	}

	body := a.cfg.NotificationTemplate
	body = strings.ReplaceAll(body, "{username}", video.Username)
	body = strings.ReplaceAll(body, "{title}", video.Title)

	body = validate.FitBody(body, video.URL, profile.MaxChars)

	return validate.AppendURL(body, video.URL), nil
}
