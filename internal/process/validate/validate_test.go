package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tubecrier/tubecrier/internal/core/domain"
	"github.com/tubecrier/tubecrier/internal/process/dedup"
)

func mastodonProfile(t *testing.T) domain.PlatformProfile {
	t.Helper()

	p, err := domain.GetProfile(domain.PlatformMastodon)
	require.NoError(t, err)

	return p
}

func TestCheckCleanAccept(t *testing.T) {
	video := domain.VideoContext{
		Title:    "How to Build a PC - Complete Beginner's Guide",
		URL:      "https://youtube.com/watch?v=abc123",
		Username: "TechBuilder",
	}

	candidate := "Complete guide to building your first PC! 🖥️ #PC #Hardware #Tutorial"

	violations := Check(candidate, video, mastodonProfile(t), DefaultRules(), dedup.NewCache(20, 0.80))
	assert.Empty(t, violations)
}

func TestCheckForcedRetryViolations(t *testing.T) {
	video := domain.VideoContext{
		Title:    "How to Build a PC - Complete Beginner's Guide",
		Username: "TechBuilder",
	}

	candidate := "Epic PC tutorial! This is INSANE! #PC #Hardware"

	violations := Check(candidate, video, mastodonProfile(t), DefaultRules(), nil)

	require.Equal(t, []string{
		"wrong hashtag count: 2 (expected 3)",
		"forbidden word: insane",
		"forbidden word: epic",
	}, violations)
}

func TestCheckURLContaminationAllPlatforms(t *testing.T) {
	video := domain.VideoContext{Title: "Some Video"}
	candidate := "Watch here https://youtube.com/watch?v=xyz #A #B #C"

	for _, name := range domain.PlatformNames() {
		profile, err := domain.GetProfile(name)
		require.NoError(t, err)

		violations := Check(candidate, video, profile, DefaultRules(), nil)

		found := false

		for _, v := range violations {
			if strings.Contains(v, "URL") {
				found = true
				break
			}
		}

		assert.True(t, found, "platform %s did not flag the URL", name)
	}
}

func TestCheckHashtagExactness(t *testing.T) {
	profile := mastodonProfile(t)

	tests := []struct {
		name      string
		candidate string
		wantFail  bool
	}{
		{"exact count passes", "Setting up a Linux server from scratch #Linux #Server #Guide", false},
		{"one too few", "Setting up a Linux server from scratch #Linux #Server", true},
		{"one too many", "Setting up a Linux server from scratch #Linux #Server #Guide #Extra", true},
		{"zero hashtags", "Setting up a Linux server from scratch", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := checkHashtagCount(tt.candidate, profile)
			if tt.wantFail {
				assert.NotEmpty(t, violations)
			} else {
				assert.Empty(t, violations)
			}
		})
	}
}

func TestCheckHashtagCountSkippedWhenUnused(t *testing.T) {
	profile, err := domain.GetProfile(domain.PlatformDiscord)
	require.NoError(t, err)

	assert.Empty(t, checkHashtagCount("no hashtags here at all", profile))
}

func TestCheckForbiddenWordDefaults(t *testing.T) {
	violations := checkForbiddenWords("That ending was fire, truly legendary stuff", DefaultForbiddenWords)

	assert.Contains(t, violations, "forbidden word: fire")
	assert.Contains(t, violations, "forbidden word: legendary")

	// Whole words only; "fire" inside another word is fine.
	assert.Empty(t, checkForbiddenWords("Restoring a vintage firetruck siren", DefaultForbiddenWords))
}

func TestUsernameHashtagRejection(t *testing.T) {
	tests := []struct {
		tag      string
		rejected bool
	}{
		{"techcreator", true},
		{"creator99", true},
		{"tech", true},
		{"hardware", false},
	}

	for _, tt := range tests {
		t.Run("#"+tt.tag, func(t *testing.T) {
			violations := checkUsernameHashtags("New build video #"+tt.tag, "TechCreator99")
			if tt.rejected {
				assert.NotEmpty(t, violations, "#%s should be flagged", tt.tag)
			} else {
				assert.Empty(t, violations, "#%s should not be flagged", tt.tag)
			}
		})
	}
}

func TestUsernameFragments(t *testing.T) {
	fragments := UsernameFragments("Cool_Creator_99")

	for _, want := range []string{"cool", "creator", "cool_creator_99"} {
		_, ok := fragments[want]
		assert.True(t, ok, "missing fragment %q", want)
	}

	// Two-character fragments are dropped.
	_, ok := fragments["99"]
	assert.False(t, ok)

	assert.Empty(t, UsernameFragments(""))
	assert.Empty(t, UsernameFragments("@#"))
}

func TestCheckHallucinations(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		video     domain.VideoContext
		wantFail  bool
	}{
		{
			name:      "giveaway invented",
			candidate: "New video and a giveaway for subscribers!",
			video:     domain.VideoContext{Title: "PC Build Guide"},
			wantFail:  true,
		},
		{
			name:      "phrase present in title",
			candidate: "The premiere breakdown is here",
			video:     domain.VideoContext{Title: "Movie Premiere Breakdown"},
			wantFail:  false,
		},
		{
			name:      "time of day invented",
			candidate: "Going live tonight at 8!",
			video:     domain.VideoContext{Title: "Workshop Tour"},
			wantFail:  true,
		},
		{
			name:      "clean",
			candidate: "Full workshop tour with all the new tools",
			video:     domain.VideoContext{Title: "Workshop Tour"},
			wantFail:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := checkHallucinations(tt.candidate, tt.video)
			if tt.wantFail {
				assert.NotEmpty(t, violations)
			} else {
				assert.Empty(t, violations)
			}
		})
	}
}

func TestCheckEmojiCount(t *testing.T) {
	assert.Empty(t, checkEmojiCount("one emoji 🎬 is fine", 2))
	assert.NotEmpty(t, checkEmojiCount("way too much 🎬🎮💻🔥", 2))
	assert.Equal(t, 4, CountEmojis("🎬🎮💻🔥"))
	assert.Equal(t, 0, CountEmojis("plain text, no pictographs"))
}

func TestCheckProfanityTiers(t *testing.T) {
	msg := "this build is damn good"

	assert.NotEmpty(t, checkProfanity(msg, SeverityMild))
	assert.NotEmpty(t, checkProfanity(msg, SeveritySevere))

	// Word boundaries: "bass" must not match "ass".
	assert.Empty(t, checkProfanity("slapping bass cover", SeverityModerate))
}

func TestCheckDuplicate(t *testing.T) {
	cache := dedup.NewCache(20, 0.80)
	cache.Record(dedup.Normalize("Complete guide to building your first gaming PC!"))

	video := domain.VideoContext{Title: "How to Build a Gaming PC"}

	violations := Check("Complete guide to building your first gaming PC! #PC #Build #Guide",
		video, mastodonProfile(t), DefaultRules(), cache)

	assert.Contains(t, violations, "too similar to a recent message")
}

func TestPlatformFormattingDiscord(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		wantFail  bool
	}{
		{"balanced markdown", "New **episode** is up!", false},
		{"unmatched bold", "New **episode is up!", true},
		{"unmatched single star", "New *episode is up!", true},
		{"mass ping", "@everyone new video!", true},
		{"well-formed mention", "thanks <@123456789>!", false},
		{"malformed mention", "thanks <@notanumber>!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := checkDiscordFormatting(tt.candidate)
			if tt.wantFail {
				assert.NotEmpty(t, violations)
			} else {
				assert.Empty(t, violations)
			}
		})
	}
}

func TestPlatformFormattingBluesky(t *testing.T) {
	assert.NotEmpty(t, checkBlueskyFormatting("shoutout to @someone with no domain"))
	assert.Empty(t, checkBlueskyFormatting("shoutout to @some.one.bsky.social"))
	assert.NotEmpty(t, checkBlueskyFormatting("see https://example.com"))
}

func TestPlatformFormattingMastodonAndMatrix(t *testing.T) {
	assert.NotEmpty(t, checkMastodonFormatting("tips &amp; tricks"))
	assert.Empty(t, checkMastodonFormatting("tips & tricks"))

	assert.NotEmpty(t, checkMatrixFormatting("<b>unclosed bold"))
	assert.Empty(t, checkMatrixFormatting("<b>closed bold</b>"))
	assert.Empty(t, checkMatrixFormatting("no markup at all"))
}

func TestQualityScoring(t *testing.T) {
	title := "Building a Home Server with Proxmox"

	score, _ := scoreQuality("Full walkthrough of my new home server build with Proxmox!", title)
	assert.GreaterOrEqual(t, score, 8)

	// Short, generic, and unrelated to the title.
	score, issues := scoreQuality("New video, check it out", "Quantum Chemistry Lecture")
	assert.Less(t, score, 6)
	assert.NotEmpty(t, issues)
}

func TestRulesValidate(t *testing.T) {
	assert.NoError(t, DefaultRules().Validate())

	bad := DefaultRules()
	bad.MaxEmojiCount = -1
	assert.Error(t, bad.Validate())

	bad = DefaultRules()
	bad.ProfanityEnabled = true
	bad.ProfanitySeverity = "nuclear"
	assert.Error(t, bad.Validate())

	bad = DefaultRules()
	bad.QualityScoringEnabled = true
	bad.MinQualityScore = 11
	assert.Error(t, bad.Validate())
}
