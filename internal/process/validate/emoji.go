package validate

// Emoji code point ranges. Basic coverage matching what the prompts allow,
// not an exhaustive Unicode emoji database.
var emojiRanges = [][2]rune{
	{0x1F300, 0x1F5FF}, // symbols & pictographs
	{0x1F600, 0x1F64F}, // emoticons
	{0x1F680, 0x1F6FF}, // transport & map symbols
	{0x1F900, 0x1F9FF}, // supplemental symbols & pictographs
	{0x1F1E6, 0x1F1FF}, // regional indicators (flags)
	{0x2600, 0x27BF},   // misc symbols & dingbats
}

// CountEmojis counts emoji code points in the message.
func CountEmojis(message string) int {
	count := 0

	for _, r := range message {
		if isEmoji(r) {
			count++
		}
	}

	return count
}

func isEmoji(r rune) bool {
	for _, rng := range emojiRanges {
		if r >= rng[0] && r <= rng[1] {
			return true
		}
	}

	return false
}
