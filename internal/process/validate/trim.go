package validate

import (
	"strings"
	"unicode"
)

// urlSeparator joins the message body and the appended link.
const urlSeparator = "\n\n"

// FitBody shortens the body so that body + separator + url fits within
// maxChars (counted in runes). Truncation lands on the last whitespace
// boundary before the budget, never mid-word or mid-hashtag. A single
// oversized token is hard-cut rather than dropping the whole message. This
// step cannot fail; it only shortens.
func FitBody(body, url string, maxChars int) string {
	body = strings.TrimSpace(body)

	budget := maxChars
	if url != "" {
		budget -= len([]rune(urlSeparator)) + len([]rune(url))
	}

	if budget <= 0 {
		return ""
	}

	runes := []rune(body)
	if len(runes) <= budget {
		return body
	}

	cut := runes[:budget]

	boundary := -1

	for i := len(cut) - 1; i >= 0; i-- {
		if unicode.IsSpace(cut[i]) {
			boundary = i
			break
		}
	}

	if boundary > 0 {
		cut = cut[:boundary]
	}

	return strings.TrimRightFunc(string(cut), unicode.IsSpace)
}

// AppendURL produces the final text posted to a platform: the fitted body
// with the link on its own line. When the body is empty only the link is
// returned.
func AppendURL(body, url string) string {
	if url == "" {
		return body
	}

	if body == "" {
		return url
	}

	return body + urlSeparator + url
}
