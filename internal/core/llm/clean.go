package llm

import (
	"regexp"
	"strings"
)

var (
	// Leading meta-commentary small models love to prepend despite the
	// prompt saying not to.
	metaPrefixPattern = regexp.MustCompile(`(?i)^\s*(sure[,!.]?\s*)?(here('s| is)\s+(your|the|a)\s+[^:\n]*:|post:|announcement:|message:)\s*`)

	responseURLPattern = regexp.MustCompile(`https?://\S+`)

	thinkBlockPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)
)

// Clean normalizes raw model output into a postable candidate: reasoning
// blocks, meta prefixes, wrapping quotes and any URLs are stripped, then
// whitespace is collapsed. URLs go because the real link is appended after
// validation; whatever the model emitted is noise at best and wrong at
// worst.
func Clean(raw string) string {
	s := thinkBlockPattern.ReplaceAllString(raw, "")
	s = strings.TrimSpace(s)
	s = metaPrefixPattern.ReplaceAllString(s, "")
	s = responseURLPattern.ReplaceAllString(s, "")

	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = s[1 : len(s)-1]
		}
	}

	return strings.Join(strings.Fields(s), " ")
}
