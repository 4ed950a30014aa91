package validate

import (
	"fmt"
	"strings"
)

// Generic filler phrases that cost points. Each occurrence deducts, up to
// the cap; these read like every other upload announcement ever posted.
var fillerPhrases = []string{
	"check it out",
	"check this out",
	"watch now",
	"click the link",
	"new video",
	"just uploaded",
	"latest video",
}

const (
	maxQualityScore      = 10
	minQualityScoreFloor = 1
	fillerDeduction      = 2
	fillerDeductionCap   = 4
	minWordCount         = 4
	maxWordCount         = 30
	repeatedWordShare    = 0.30
	significantWordLen   = 4
)

// checkQuality scores the candidate 1-10 and reports a violation when it
// falls below the configured minimum. Deductions follow fixed heuristics
// tuned against small local models.
func checkQuality(candidate, title string, minScore int) []string {
	score, issues := scoreQuality(candidate, title)
	if score >= minScore {
		return nil
	}

	violations := []string{fmt.Sprintf("quality score %d below minimum %d", score, minScore)}

	return append(violations, issues...)
}

func scoreQuality(candidate, title string) (int, []string) {
	score := maxQualityScore

	var issues []string

	lower := strings.ToLower(candidate)

	fillerTotal := 0

	for _, phrase := range fillerPhrases {
		fillerTotal += strings.Count(lower, phrase) * fillerDeduction
	}

	if fillerTotal > 0 {
		if fillerTotal > fillerDeductionCap {
			fillerTotal = fillerDeductionCap
		}

		score -= fillerTotal

		issues = append(issues, "generic filler phrasing")
	}

	body := hashtagTokenPattern.ReplaceAllString(candidate, "")
	words := strings.Fields(strings.ToLower(body))

	switch {
	case len(words) < minWordCount:
		score -= 3

		issues = append(issues, "too short")
	case len(words) > maxWordCount:
		score -= 2

		issues = append(issues, "too long")
	}

	if dominated(words) {
		score -= 2

		issues = append(issues, "repeated words")
	}

	if !overlapsTitle(words, title) {
		score -= 3

		issues = append(issues, "does not reference the video content")
	}

	if !strings.ContainsAny(candidate, "!?") && CountEmojis(candidate) == 0 {
		score--

		issues = append(issues, "flat phrasing")
	}

	if score < minQualityScoreFloor {
		score = minQualityScoreFloor
	}

	return score, issues
}

// dominated reports whether any single word makes up more than 30% of the
// candidate's words.
func dominated(words []string) bool {
	if len(words) == 0 {
		return false
	}

	counts := make(map[string]int)
	for _, w := range words {
		counts[w]++
	}

	for _, n := range counts {
		if float64(n)/float64(len(words)) > repeatedWordShare {
			return true
		}
	}

	return false
}

// overlapsTitle reports whether the candidate shares at least one
// significant word with the video title.
func overlapsTitle(words []string, title string) bool {
	significant := make(map[string]struct{})

	for _, w := range strings.Fields(strings.ToLower(title)) {
		w = strings.Trim(w, ".,:;!?\"'()-")
		if len(w) >= significantWordLen {
			significant[w] = struct{}{}
		}
	}

	if len(significant) == 0 {
		return true
	}

	for _, w := range words {
		w = strings.Trim(w, ".,:;!?\"'()-")
		if _, ok := significant[w]; ok {
			return true
		}
	}

	return false
}
