package petmoji

import "unicode/utf8"

// Alternatives is the fixed palette offered when the user disagrees with the model.
var Alternatives = []string{"😀", "😂", "😍", "😴", "🤔", "😠", "😮"}

// Palette returns the choices for the current emoji: the current one first,
// then the alternatives, without duplicates.
func Palette(current string) []string {
	out := make([]string, 0, len(Alternatives)+1)
	seen := make(map[string]bool, len(Alternatives)+1)
	if current != "" {
		out = append(out, current)
		seen[current] = true
	}
	for _, e := range Alternatives {
		if !seen[e] {
			out = append(out, e)
			seen[e] = true
		}
	}
	return out
}

// InPalette reports whether emoji may replace current.
func InPalette(current, emoji string) bool {
	for _, e := range Palette(current) {
		if e == emoji {
			return true
		}
	}
	return false
}

// maxEmojiRunes covers ZWJ sequences such as family or flag emoji.
const maxEmojiRunes = 16

// ValidEmoji is a loose check for values coming from URLs and forms.
func ValidEmoji(s string) bool {
	if s == "" || !utf8.ValidString(s) {
		return false
	}
	n := 0
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return false
		}
		n++
	}
	return n <= maxEmojiRunes
}
