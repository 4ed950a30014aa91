// Package prompt assembles the instruction text sent to the language model.
// Small local models need explicit, step-numbered rules with examples; the
// strict variant additionally quotes what the previous attempt got wrong.
package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tubecrier/tubecrier/internal/core/domain"
)

const (
	// Descriptions arrive with timestamps, link dumps and sponsor blocks.
	// Only the opening matters for an announcement.
	maxDescriptionChars = 300

	strictBanner = `CRITICAL: The previous attempt violated these rules:
%s
FOLLOW EVERY INSTRUCTION EXACTLY THIS TIME.

`
)

const headerFormat = `You are a social media assistant that announces new YouTube video uploads.

TASK: Write a SHORT, engaging post announcing this NEW VIDEO.

VIDEO TITLE: %q
VIDEO DESCRIPTION: %s

STEP 1 - CONTENT RULES (FOLLOW EXACTLY):
- Length: MUST be %d characters or less. This is non-negotiable.
- Output: ONLY the post text. No quotes, no labels, no "Here's...".
- Tone: %s
- Content: say what the video covers and what viewers will learn or see.
- Emoji: at most %d, optional, relevant to the content.
- DO NOT include any URL. The link is added automatically.
- DO NOT invent details absent from the title and description: no giveaways, no times, no "limited", no "exclusive".
- DO NOT use hype words: %s.
- DO NOT open with a greeting. Announce the video directly.
`

const hashtagRulesFormat = `
STEP 2 - HASHTAG RULES (CRITICAL):
Include EXACTLY %d hashtags at the end. Count them: not %d, not %d. Exactly %d.
- Build hashtags ONLY from words in the video title: %q.
- NEVER use the creator name %q or any part of it as a hashtag.
- NEVER use generic tags (#Video, #YouTube, #Subscribe) unless they appear in the title.
- Keep hashtags short: #Tech, not #TechnologyReview.
- Put a space before each hashtag.
`

const noHashtagRules = `
STEP 2 - HASHTAG RULES:
Do NOT use any hashtags on this platform.
`

var toneInstructions = map[domain.Tone]string{
	domain.ToneConversational: "casual and friendly, like telling a friend about the video.",
	domain.ToneProfessional:   "professional and informative, no hype.",
	domain.ToneConcise:        "enthusiastic but tight, every word earns its place.",
	domain.ToneDetailed:       "descriptive and complete, room to explain what the video offers.",
}

var platformExamples = map[string]string{
	domain.PlatformDiscord: `
EXAMPLES:

Title: "Minecraft Survival Series - Episode 5"
Good: "Episode 5 of the survival series is up! The mega base build continues"

Title: "Speedrun World Record Attempt"
Good: "Just posted my world record attempt run. It was intense"

AVOID:
- "Hey Discord! New video!" (greeting waste)
- "Watch at youtube.com/..." (never include URLs)
`,
	domain.PlatformMatrix: `
EXAMPLES:

Title: "Software Tutorial - Getting Started with Docker"
Good: "New Docker tutorial for beginners. Covers installation and first containers."

Title: "Game Review - Latest RPG Analysis"
Good: "Posted my analysis of the new RPG. Spoiler-free review with gameplay insights."
`,
	domain.PlatformBluesky: `
EXAMPLES:

Title: "How to Build a Gaming PC"
Good: "New guide on building your first gaming PC! Perfect for beginners #Gaming #PC #Tutorial"

Title: "Cooking Easy Pasta Carbonara"
Good: "Just dropped a super easy carbonara recipe! #Cooking #Pasta #Recipe"

AVOID:
- "INSANE new video!" (hype words)
- "Check out my video #Subscribe #Like" (generic tags not from the title)
- Two hashtags, or four.
`,
	domain.PlatformMastodon: `
EXAMPLES:

Title: "Linux Server Setup for Beginners"
Good: "New video: setting up your first Linux server, step by step #Linux #Server #Tutorial"

Title: "Photography Tips - Golden Hour Shooting"
Good: "Just uploaded my tips for shooting during golden hour #Photography #Tips #GoldenHour"

AVOID:
- "MUST WATCH! Amazing tutorial!" (clickbait, says nothing)
- "#YouTube #NewVideo #Content" (generic tags)
`,
}

var descriptionURLPattern = regexp.MustCompile(`https?://\S+`)

// Input carries everything a single prompt needs.
type Input struct {
	Video   domain.VideoContext
	Profile domain.PlatformProfile
	// Budget is the character allowance for the body once the appended
	// link is reserved. It is what the model is told, not MaxChars.
	Budget         int
	MaxEmojiCount  int
	ForbiddenWords []string
	// Strict is set after a failed attempt; Violations lists what the
	// previous candidate got wrong.
	Strict     bool
	Violations []string
}

// Build renders the full prompt for one generation attempt.
func Build(in Input) string {
	var b strings.Builder

	if in.Strict {
		b.WriteString(fmt.Sprintf(strictBanner, formatViolations(in.Violations)))
	}

	tone, ok := toneInstructions[in.Profile.Tone]
	if !ok {
		tone = toneInstructions[domain.ToneConversational]
	}

	b.WriteString(fmt.Sprintf(headerFormat,
		in.Video.Title,
		CleanDescription(in.Video.Description),
		in.Budget,
		tone,
		in.MaxEmojiCount,
		strings.Join(upperWords(in.ForbiddenWords), ", "),
	))

	if in.Profile.HashtagsUsed {
		n := in.Profile.HashtagCount
		b.WriteString(fmt.Sprintf(hashtagRulesFormat, n, n-1, n+1, n, in.Video.Title, in.Video.Username))
	} else {
		b.WriteString(noHashtagRules)
	}

	b.WriteString(platformExamples[in.Profile.Name])

	b.WriteString(fmt.Sprintf("\nNOW: Write the announcement for %q. Remember: %sunder %d characters, NO URLs.\n\nPost:",
		in.Video.Title, hashtagReminder(in.Profile), in.Budget))

	return b.String()
}

// CleanDescription strips URLs and truncates the description so the prompt
// stays focused on the video's opening pitch.
func CleanDescription(description string) string {
	description = descriptionURLPattern.ReplaceAllString(description, "")
	description = strings.Join(strings.Fields(description), " ")

	runes := []rune(description)
	if len(runes) > maxDescriptionChars {
		description = string(runes[:maxDescriptionChars]) + "..."
	}

	if description == "" {
		return "(no description)"
	}

	return description
}

func formatViolations(violations []string) string {
	if len(violations) == 0 {
		return "- the output did not follow the rules"
	}

	lines := make([]string, 0, len(violations))
	for _, v := range violations {
		lines = append(lines, "- "+v)
	}

	return strings.Join(lines, "\n")
}

func hashtagReminder(profile domain.PlatformProfile) string {
	if !profile.HashtagsUsed {
		return "no hashtags, "
	}

	return fmt.Sprintf("exactly %d hashtags, ", profile.HashtagCount)
}

func upperWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, strings.ToUpper(w))
	}

	return out
}
