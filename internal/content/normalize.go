package content

import (
	"strings"
	"unicode"
)

// NormalizeText canonicalizes chunk text for deduplication: lower-cased,
// punctuation stripped, whitespace collapsed. Two generations of "Hello,
// world!" and "hello world" resolve to the same record.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			// Apostrophes are meaningful in many target languages
			// ("j'ai" vs "jai" are different chunks).
			if r == '\'' || r == '’' {
				b.WriteRune('\'')
				lastSpace = false
			}
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}

	return strings.TrimSpace(b.String())
}
