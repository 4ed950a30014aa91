package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tubecrier/tubecrier/internal/core/domain"
)

var (
	discordMentionPattern   = regexp.MustCompile(`<@!?&?\d+>`)
	discordMentionOpen      = regexp.MustCompile(`<@[^>\s]*`)
	blueskyHandlePattern    = regexp.MustCompile(`@[a-zA-Z0-9][a-zA-Z0-9.-]*\.[a-zA-Z]{2,}`)
	blueskyAnyMention       = regexp.MustCompile(`(^|\s)@\S+`)
	mastodonEntityPattern   = regexp.MustCompile(`&[a-z]+;`)
	matrixOpenTagPattern    = regexp.MustCompile(`<[a-zA-Z][a-zA-Z0-9]*>`)
	matrixClosingTagPattern = regexp.MustCompile(`</[a-zA-Z][a-zA-Z0-9]*>`)
)

// checkPlatformFormatting applies each platform's syntax quirks. The URL
// finding for Bluesky overlaps the generic URL check on purpose: the
// platform-specific phrasing tells the retry prompt why it matters there.
func checkPlatformFormatting(candidate, platform string) []string {
	switch platform {
	case domain.PlatformDiscord:
		return checkDiscordFormatting(candidate)
	case domain.PlatformBluesky:
		return checkBlueskyFormatting(candidate)
	case domain.PlatformMastodon:
		return checkMastodonFormatting(candidate)
	case domain.PlatformMatrix:
		return checkMatrixFormatting(candidate)
	default:
		return nil
	}
}

func checkDiscordFormatting(candidate string) []string {
	var violations []string

	if strings.Contains(candidate, "@everyone") || strings.Contains(candidate, "@here") {
		violations = append(violations, "contains @everyone or @here mention")
	}

	// Every <@... opener must be a complete, numeric mention.
	opens := discordMentionOpen.FindAllString(candidate, -1)
	wellFormed := discordMentionPattern.FindAllString(candidate, -1)

	if len(opens) != len(wellFormed) {
		violations = append(violations, "malformed Discord mention")
	}

	if strings.Count(candidate, "**")%2 != 0 || strings.Count(candidate, "__")%2 != 0 {
		violations = append(violations, "unmatched markdown emphasis")
	} else if (strings.Count(candidate, "*")-strings.Count(candidate, "**")*2)%2 != 0 {
		violations = append(violations, "unmatched markdown emphasis")
	}

	return violations
}

func checkBlueskyFormatting(candidate string) []string {
	var violations []string

	if urlPattern.MatchString(candidate) {
		violations = append(violations, "URL in content (links are attached as facets separately)")
	}

	mentions := blueskyAnyMention.FindAllString(candidate, -1)
	for _, m := range mentions {
		m = strings.TrimSpace(m)
		if !blueskyHandlePattern.MatchString(m) {
			violations = append(violations, fmt.Sprintf("malformed Bluesky handle %q (needs name.domain)", m))
		}
	}

	return violations
}

func checkMastodonFormatting(candidate string) []string {
	if mastodonEntityPattern.MatchString(candidate) {
		return []string{"raw HTML entities (post must be plain text)"}
	}

	return nil
}

func checkMatrixFormatting(candidate string) []string {
	opens := len(matrixOpenTagPattern.FindAllString(candidate, -1))
	closes := len(matrixClosingTagPattern.FindAllString(candidate, -1))

	if opens != closes {
		return []string{"unmatched HTML tags"}
	}

	return nil
}
