// Package config loads the daemon configuration from environment
// variables, with an optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/tubecrier/tubecrier/internal/platform/secrets"
)

type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"local"`

	// Polling
	ChannelID     string        `env:"YOUTUBE_CHANNEL_ID,required"`
	CheckInterval time.Duration `env:"CHECK_INTERVAL" envDefault:"15m"`
	YouTubeMode   string        `env:"YOUTUBE_MODE" envDefault:"rss"` // rss or api
	YouTubeAPIKey string        `env:"YOUTUBE_API_KEY"`

	// Storage
	DBPath string `env:"DB_PATH" envDefault:"./tubecrier.db"`

	// Observability
	HealthPort int `env:"HEALTH_PORT" envDefault:"8080"`

	// LLM backend
	LLMProvider    string        `env:"LLM_PROVIDER" envDefault:"local"` // local or cloud
	LLMEndpoint    string        `env:"LLM_ENDPOINT" envDefault:"http://localhost:11434/v1"`
	LLMAPIKey      string        `env:"LLM_API_KEY"`
	LLMModel       string        `env:"LLM_MODEL" envDefault:"qwen2.5:3b"`
	LLMMaxTokens   int           `env:"LLM_MAX_TOKENS" envDefault:"150"`
	LLMTemperature float32       `env:"LLM_TEMPERATURE" envDefault:"0.3"`
	LLMTimeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
	LLMRateRPS     float64       `env:"LLM_RATE_RPS" envDefault:"1"`
	MaxAttempts    int           `env:"GENERATION_MAX_ATTEMPTS" envDefault:"3"`

	// Content rules
	ForbiddenWords        []string `env:"FORBIDDEN_WORDS" envSeparator:","`
	MaxEmojiCount         int      `env:"MAX_EMOJI_COUNT" envDefault:"2"`
	ProfanityEnabled      bool     `env:"PROFANITY_FILTER_ENABLED" envDefault:"false"`
	ProfanitySeverity     string   `env:"PROFANITY_SEVERITY" envDefault:"moderate"`
	QualityScoringEnabled bool     `env:"QUALITY_SCORING_ENABLED" envDefault:"false"`
	MinQualityScore       int      `env:"MIN_QUALITY_SCORE" envDefault:"6"`

	// Novelty cache
	DedupCapacity  int     `env:"DEDUP_CACHE_SIZE" envDefault:"20"`
	DedupThreshold float64 `env:"DEDUP_THRESHOLD" envDefault:"0.80"`
	DedupScope     string  `env:"DEDUP_SCOPE" envDefault:"global"` // global or platform

	// Fallback when generation is exhausted without any candidate.
	NotificationTemplate string `env:"NOTIFICATION_TEMPLATE" envDefault:"New video from {username}: {title}"`

	// Discord
	DiscordEnabled    bool   `env:"DISCORD_ENABLED" envDefault:"false"`
	DiscordWebhookURL string `env:"DISCORD_WEBHOOK_URL"`

	// Matrix
	MatrixEnabled     bool   `env:"MATRIX_ENABLED" envDefault:"false"`
	MatrixHomeserver  string `env:"MATRIX_HOMESERVER"`
	MatrixRoomID      string `env:"MATRIX_ROOM_ID"`
	MatrixAccessToken string `env:"MATRIX_ACCESS_TOKEN"`

	// Bluesky
	BlueskyEnabled     bool   `env:"BLUESKY_ENABLED" envDefault:"false"`
	BlueskyHost        string `env:"BLUESKY_HOST" envDefault:"https://bsky.social"`
	BlueskyHandle      string `env:"BLUESKY_HANDLE"`
	BlueskyAppPassword string `env:"BLUESKY_APP_PASSWORD"`

	// Mastodon
	MastodonEnabled     bool   `env:"MASTODON_ENABLED" envDefault:"false"`
	MastodonServer      string `env:"MASTODON_SERVER"`
	MastodonAccessToken string `env:"MASTODON_ACCESS_TOKEN"`
	MastodonVisibility  string `env:"MASTODON_VISIBILITY" envDefault:"public"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	// Credentials may arrive via *_FILE mounts instead of plain env vars.
	err := secrets.Fill(map[string]*string{
		"YOUTUBE_API_KEY":       &cfg.YouTubeAPIKey,
		"LLM_API_KEY":           &cfg.LLMAPIKey,
		"DISCORD_WEBHOOK_URL":   &cfg.DiscordWebhookURL,
		"MATRIX_ACCESS_TOKEN":   &cfg.MatrixAccessToken,
		"BLUESKY_APP_PASSWORD":  &cfg.BlueskyAppPassword,
		"MASTODON_ACCESS_TOKEN": &cfg.MastodonAccessToken,
	})
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.YouTubeMode == "api" && c.YouTubeAPIKey == "" {
		return fmt.Errorf("YOUTUBE_MODE=api requires YOUTUBE_API_KEY")
	}

	if c.LLMProvider == "cloud" && c.LLMAPIKey == "" {
		return fmt.Errorf("LLM_PROVIDER=cloud requires LLM_API_KEY")
	}

	if c.DiscordEnabled && c.DiscordWebhookURL == "" {
		return fmt.Errorf("DISCORD_ENABLED requires DISCORD_WEBHOOK_URL")
	}

	if c.MatrixEnabled && (c.MatrixHomeserver == "" || c.MatrixRoomID == "" || c.MatrixAccessToken == "") {
		return fmt.Errorf("MATRIX_ENABLED requires MATRIX_HOMESERVER, MATRIX_ROOM_ID and MATRIX_ACCESS_TOKEN")
	}

	if c.BlueskyEnabled && (c.BlueskyHandle == "" || c.BlueskyAppPassword == "") {
		return fmt.Errorf("BLUESKY_ENABLED requires BLUESKY_HANDLE and BLUESKY_APP_PASSWORD")
	}

	if c.MastodonEnabled && (c.MastodonServer == "" || c.MastodonAccessToken == "") {
		return fmt.Errorf("MASTODON_ENABLED requires MASTODON_SERVER and MASTODON_ACCESS_TOKEN")
	}

	return nil
}
