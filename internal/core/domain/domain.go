// Package domain holds the core types shared across the notification
// pipeline: video metadata and platform posting profiles.
package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/tubecrier/tubecrier/internal/core/errors"
)

// Tone describes the register a platform's notifications should use.
type Tone string

const (
	ToneProfessional   Tone = "professional"
	ToneConversational Tone = "conversational"
	ToneDetailed       Tone = "detailed"
	ToneConcise        Tone = "concise"
)

// VideoContext carries the metadata of a detected upload. It is constructed
// once per video and read-only for the duration of generation.
type VideoContext struct {
	ID          string
	Title       string
	Description string
	URL         string
	Username    string
	Thumbnail   string
	PublishedAt time.Time
}

// PlatformProfile describes the posting constraints of one social platform.
// HashtagCount is an exact requirement when HashtagsUsed is true, never a
// range.
type PlatformProfile struct {
	Name         string
	MaxChars     int
	HashtagsUsed bool
	HashtagCount int
	Tone         Tone
}

// Supported platform names.
const (
	PlatformDiscord  = "discord"
	PlatformMatrix   = "matrix"
	PlatformBluesky  = "bluesky"
	PlatformMastodon = "mastodon"
)

// Character budgets sit below the platforms' hard limits to leave room for
// the URL line appended after generation.
var profiles = map[string]PlatformProfile{
	PlatformDiscord: {
		Name:         PlatformDiscord,
		MaxChars:     300,
		HashtagsUsed: false,
		Tone:         ToneConversational,
	},
	PlatformMatrix: {
		Name:         PlatformMatrix,
		MaxChars:     350,
		HashtagsUsed: false,
		Tone:         ToneProfessional,
	},
	PlatformBluesky: {
		Name:         PlatformBluesky,
		MaxChars:     250,
		HashtagsUsed: true,
		HashtagCount: 3,
		Tone:         ToneConcise,
	},
	PlatformMastodon: {
		Name:         PlatformMastodon,
		MaxChars:     400,
		HashtagsUsed: true,
		HashtagCount: 3,
		Tone:         ToneDetailed,
	},
}

// GetProfile returns the posting profile for the named platform. The lookup
// is case-insensitive. Unknown platforms indicate an integration bug and
// fail with ErrUnknownPlatform.
func GetProfile(name string) (PlatformProfile, error) {
	p, ok := profiles[strings.ToLower(name)]
	if !ok {
		return PlatformProfile{}, fmt.Errorf("%w: %q", apperrors.ErrUnknownPlatform, name)
	}

	return p, nil
}

// PlatformNames returns the supported platform names in a stable order.
func PlatformNames() []string {
	return []string{PlatformDiscord, PlatformMatrix, PlatformBluesky, PlatformMastodon}
}
