package slug

import (
	"strings"
	"unicode"
)

// Make lowercases input and collapses every run of non-alphanumeric runes
// into a single dash. CamelCase boundaries also become dashes so FIT sport
// names like "CrossCountrySkiing" read naturally in file names.
func Make(input string) string {
	var b strings.Builder
	dash := false
	prevLower := false
	for _, r := range strings.TrimSpace(input) {
		switch {
		case unicode.IsUpper(r):
			if prevLower && !dash {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			dash, prevLower = false, false
		case unicode.IsLetter(r):
			b.WriteRune(r)
			dash, prevLower = false, true
		case unicode.IsDigit(r):
			b.WriteRune(r)
			dash, prevLower = false, false
		default:
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
			prevLower = false
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "activity"
	}
	return out
}
