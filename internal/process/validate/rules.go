package validate

import (
	"fmt"

	apperrors "github.com/tubecrier/tubecrier/internal/core/errors"
)

// Severity selects how much of the tiered profanity list applies.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// DefaultForbiddenWords are the clickbait words the prompt explicitly bans.
// Configurable; these are the defaults the prompts are written against.
var DefaultForbiddenWords = []string{
	"insane", "epic", "crazy", "smash", "unmissable",
	"incredible", "amazing", "lit", "fire", "legendary",
	"mind-blowing", "jaw-dropping", "unbelievable", "viral",
}

// Rules is the content-rule configuration, loaded once at startup and
// read-only afterwards.
type Rules struct {
	ForbiddenWords        []string
	MaxEmojiCount         int
	ProfanityEnabled      bool
	ProfanitySeverity     Severity
	QualityScoringEnabled bool
	MinQualityScore       int
}

// DefaultRules returns the rule set the daemon ships with.
func DefaultRules() Rules {
	return Rules{
		ForbiddenWords:        DefaultForbiddenWords,
		MaxEmojiCount:         2,
		ProfanityEnabled:      false,
		ProfanitySeverity:     SeverityModerate,
		QualityScoringEnabled: false,
		MinQualityScore:       6,
	}
}

// Validate fails fast on a malformed rule set. Rule errors indicate a
// configuration bug, not a runtime condition to retry.
func (r Rules) Validate() error {
	if r.MaxEmojiCount < 0 {
		return fmt.Errorf("%w: max emoji count %d", apperrors.ErrInvalidRules, r.MaxEmojiCount)
	}

	if r.ProfanityEnabled {
		switch r.ProfanitySeverity {
		case SeverityMild, SeverityModerate, SeveritySevere:
		default:
			return fmt.Errorf("%w: profanity severity %q", apperrors.ErrInvalidRules, r.ProfanitySeverity)
		}
	}

	if r.QualityScoringEnabled && (r.MinQualityScore < 1 || r.MinQualityScore > 10) {
		return fmt.Errorf("%w: min quality score %d", apperrors.ErrInvalidRules, r.MinQualityScore)
	}

	return nil
}

// Profanity lists by tier. Severe includes moderate and mild; moderate
// includes mild.
var (
	profanityMild     = []string{"damn", "hell", "crap", "suck", "sucks", "piss", "pissed"}
	profanityModerate = []string{"ass", "bastard", "bitch", "dick", "cock", "pussy", "slut", "whore"}
	profanitySevere   = []string{"fuck", "fucking", "shit", "shitty", "motherfucker", "asshole", "cunt"}
)

func profanityWords(severity Severity) []string {
	switch severity {
	case SeveritySevere:
		words := make([]string, 0, len(profanityMild)+len(profanityModerate)+len(profanitySevere))
		words = append(words, profanityMild...)
		words = append(words, profanityModerate...)
		words = append(words, profanitySevere...)

		return words
	case SeverityModerate:
		words := make([]string, 0, len(profanityMild)+len(profanityModerate))
		words = append(words, profanityMild...)
		words = append(words, profanityModerate...)

		return words
	default:
		return profanityMild
	}
}
