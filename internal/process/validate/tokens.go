package validate

import (
	"regexp"
	"strings"
	"unicode"
)

var hashtagTokenPattern = regexp.MustCompile(`#([a-zA-Z]\w*)`)

// ExtractHashtags returns the lowercased bodies of every hashtag in the
// message. A hashtag is # followed by a letter then word characters, which
// excludes bare numbers like #50.
func ExtractHashtags(message string) []string {
	matches := hashtagTokenPattern.FindAllStringSubmatch(message, -1)
	tags := make([]string, 0, len(matches))

	for _, m := range matches {
		tags = append(tags, strings.ToLower(m[1]))
	}

	return tags
}

const minUsernameFragmentLen = 3

// UsernameFragments tokenizes a creator username into the lowercase
// fragments that must not appear inside hashtags: the full name, separator
// parts, camel-case and digit-boundary runs, and short joins of consecutive
// runs. Fragments under three characters are dropped to avoid false
// positives.
func UsernameFragments(username string) map[string]struct{} {
	fragments := make(map[string]struct{})

	clean := strings.TrimLeft(strings.TrimSpace(username), "@#")
	if clean == "" {
		return fragments
	}

	addFragment(fragments, clean)

	for _, sep := range []string{"_", "-", "."} {
		if strings.Contains(clean, sep) {
			for _, part := range strings.Split(clean, sep) {
				addFragment(fragments, part)
			}
		}
	}

	runs := splitRuns(clean)
	for _, run := range runs {
		addFragment(fragments, run)
	}

	// Joins of up to three consecutive runs catch partial names like
	// "coolcreator" inside "CoolCreator99".
	for i := range runs {
		for j := i + 2; j <= len(runs) && j <= i+3; j++ {
			addFragment(fragments, strings.Join(runs[i:j], ""))
		}
	}

	return fragments
}

func addFragment(set map[string]struct{}, s string) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) >= minUsernameFragmentLen {
		set[s] = struct{}{}
	}
}

// splitRuns breaks an identifier on camel-case and letter/digit boundaries:
// "CoolCreator99" -> ["Cool", "Creator", "99"].
func splitRuns(s string) []string {
	var runs []string

	var current []rune

	flush := func() {
		if len(current) > 0 {
			runs = append(runs, string(current))
			current = nil
		}
	}

	prev := rune(0)

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			prev = r

			continue
		}

		switch {
		case len(current) == 0:
		case unicode.IsDigit(r) != unicode.IsDigit(prev):
			flush()
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			flush()
		}

		current = append(current, r)
		prev = r
	}

	flush()

	return runs
}
