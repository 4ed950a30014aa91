package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("YOUTUBE_CHANNEL_ID", "UCtest123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.AppEnv)
	assert.Equal(t, 15*time.Minute, cfg.CheckInterval)
	assert.Equal(t, "rss", cfg.YouTubeMode)
	assert.Equal(t, "local", cfg.LLMProvider)
	assert.Equal(t, 150, cfg.LLMMaxTokens)
	assert.Equal(t, float32(0.3), cfg.LLMTemperature)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 20, cfg.DedupCapacity)
	assert.Equal(t, 0.80, cfg.DedupThreshold)
	assert.Equal(t, "global", cfg.DedupScope)
	assert.False(t, cfg.DiscordEnabled)
}

func TestLoadMissingChannel(t *testing.T) {
	_, err := Load()
	assert.Error(t, err)
}

func TestValidateCrossFields(t *testing.T) {
	t.Setenv("YOUTUBE_CHANNEL_ID", "UCtest123")
	t.Setenv("YOUTUBE_MODE", "api")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YOUTUBE_API_KEY")

	t.Setenv("YOUTUBE_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "api", cfg.YouTubeMode)
}

func TestValidatePlatformCredentials(t *testing.T) {
	t.Setenv("YOUTUBE_CHANNEL_ID", "UCtest123")
	t.Setenv("MASTODON_ENABLED", "true")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MASTODON_SERVER")

	t.Setenv("MASTODON_SERVER", "https://fosstodon.org")
	t.Setenv("MASTODON_ACCESS_TOKEN", "tok")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MastodonEnabled)
}

func TestSecretFileFallback(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/matrix_token"
	require.NoError(t, os.WriteFile(path, []byte("file-token\n"), 0o600))

	t.Setenv("YOUTUBE_CHANNEL_ID", "UCtest123")
	t.Setenv("MATRIX_ENABLED", "true")
	t.Setenv("MATRIX_HOMESERVER", "https://matrix.example.org")
	t.Setenv("MATRIX_ROOM_ID", "!room:example.org")
	t.Setenv("MATRIX_ACCESS_TOKEN_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.MatrixAccessToken)
}
