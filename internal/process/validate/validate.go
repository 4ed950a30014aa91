// Package validate implements the post-generation guardrails for
// LLM-written notifications: hashtag rules, content rules, novelty, and
// platform formatting. Violations are data, not errors: a failed check is
// a routine outcome fed back into the next, stricter prompt.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tubecrier/tubecrier/internal/core/domain"
	"github.com/tubecrier/tubecrier/internal/process/dedup"
)

// Recent answers whether a normalized candidate is too close to something
// recently posted. *dedup.Cache satisfies it.
type Recent interface {
	IsDuplicate(normalized string) bool
}

var urlPattern = regexp.MustCompile(`https?://\S+`)

// Speculative or promotional phrasings small models hallucinate into
// announcements. A match only counts when the phrase is absent from the
// video's own title and description.
var hallucinationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)drops?\s+enabled`),
	regexp.MustCompile(`(?i)giveaway`),
	regexp.MustCompile(`(?i)tonight\s+at\s+\d`),
	regexp.MustCompile(`(?i)starting\s+at\s+\d`),
	regexp.MustCompile(`(?i)\d+\s*pm\b`),
	regexp.MustCompile(`(?i)\d+\s*am\b`),
	regexp.MustCompile(`(?i)vod\s+(coming|soon)`),
	regexp.MustCompile(`(?i)next\s+video`),
	regexp.MustCompile(`(?i)new\s+series`),
	regexp.MustCompile(`(?i)\d+\s+views?`),
	regexp.MustCompile(`(?i)sponsored\s`),
	regexp.MustCompile(`(?i)special\s+guest`),
	regexp.MustCompile(`(?i)premiere`),
}

// Check runs the full guardrail battery against a candidate message and
// returns every violation found, in a stable order. All checks run without
// short-circuiting so the retry prompt can cite every problem at once.
// An empty result means the candidate passed.
func Check(candidate string, video domain.VideoContext, profile domain.PlatformProfile, rules Rules, recent Recent) []string {
	var violations []string

	violations = append(violations, checkHashtagCount(candidate, profile)...)
	violations = append(violations, checkUsernameHashtags(candidate, video.Username)...)
	violations = append(violations, checkForbiddenWords(candidate, rules.ForbiddenWords)...)
	violations = append(violations, checkURLContamination(candidate)...)
	violations = append(violations, checkHallucinations(candidate, video)...)
	violations = append(violations, checkEmojiCount(candidate, rules.MaxEmojiCount)...)

	if rules.ProfanityEnabled {
		violations = append(violations, checkProfanity(candidate, rules.ProfanitySeverity)...)
	}

	if recent != nil && recent.IsDuplicate(dedup.Normalize(candidate)) {
		violations = append(violations, "too similar to a recent message")
	}

	violations = append(violations, checkPlatformFormatting(candidate, profile.Name)...)

	if rules.QualityScoringEnabled {
		violations = append(violations, checkQuality(candidate, video.Title, rules.MinQualityScore)...)
	}

	return violations
}

func checkHashtagCount(candidate string, profile domain.PlatformProfile) []string {
	if !profile.HashtagsUsed {
		return nil
	}

	count := len(ExtractHashtags(candidate))
	if count != profile.HashtagCount {
		return []string{fmt.Sprintf("wrong hashtag count: %d (expected %d)", count, profile.HashtagCount)}
	}

	return nil
}

func checkUsernameHashtags(candidate, username string) []string {
	fragments := UsernameFragments(username)
	if len(fragments) == 0 {
		return nil
	}

	var violations []string

	for _, tag := range ExtractHashtags(candidate) {
		for fragment := range fragments {
			if strings.Contains(tag, fragment) {
				violations = append(violations, fmt.Sprintf("username-derived hashtag: #%s", tag))
				break
			}
		}
	}

	return violations
}

func checkForbiddenWords(candidate string, forbidden []string) []string {
	lower := strings.ToLower(candidate)

	var violations []string

	for _, word := range forbidden {
		if containsWord(lower, strings.ToLower(word)) {
			violations = append(violations, fmt.Sprintf("forbidden word: %s", word))
		}
	}

	return violations
}

// containsWord matches on word boundaries so "bass" never trips on "ass".
func containsWord(haystack, word string) bool {
	idx := 0

	for {
		i := strings.Index(haystack[idx:], word)
		if i < 0 {
			return false
		}

		start := idx + i
		end := start + len(word)

		beforeOK := start == 0 || !isWordByte(haystack[start-1])
		afterOK := end == len(haystack) || !isWordByte(haystack[end])

		if beforeOK && afterOK {
			return true
		}

		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func checkURLContamination(candidate string) []string {
	if urlPattern.MatchString(candidate) {
		return []string{"contains URL (the link is appended separately)"}
	}

	return nil
}

func checkHallucinations(candidate string, video domain.VideoContext) []string {
	source := strings.ToLower(video.Title + " " + video.Description)

	for _, pattern := range hallucinationPatterns {
		match := pattern.FindString(candidate)
		if match == "" {
			continue
		}

		// Not a hallucination if the video itself says it.
		if strings.Contains(source, strings.ToLower(match)) {
			continue
		}

		// Report the first finding only; one is enough to force a retry.
		return []string{fmt.Sprintf("possible hallucination: %q", match)}
	}

	return nil
}

func checkEmojiCount(candidate string, maxCount int) []string {
	count := CountEmojis(candidate)
	if count > maxCount {
		return []string{fmt.Sprintf("too many emojis: %d (max %d)", count, maxCount)}
	}

	return nil
}

func checkProfanity(candidate string, severity Severity) []string {
	lower := strings.ToLower(candidate)

	var violations []string

	for _, word := range profanityWords(severity) {
		if containsWord(lower, word) {
			violations = append(violations, fmt.Sprintf("profanity: %s", word))
		}
	}

	return violations
}
