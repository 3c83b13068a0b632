package card

import (
	"regexp"
	"strings"
	"unicode"
)

// ws is the Unicode whitespace set used by every pattern in this package.
// RE2's \s is ASCII-only and misses \v, NBSP and the other separators OCR
// engines emit.
const ws = `\t\n\v\f\r\x{1c}-\x{1f}\x{85}\p{Z}`

var reWhitespace = regexp.MustCompile(`[` + ws + `]+`)

// ocrRepairs are literal substitutions for misreads seen in the scanned card
// corpus. They are applied in order, once, with no word-boundary guard, so
// "be" inside a longer word is rewritten too.
var ocrRepairs = []struct{ from, to string }{
	{"O00)", "Pakistan"},
	{"zl", "21"},
	{"be", "Blue"},
}

// CollapseWhitespace replaces every whitespace run with a single space.
// Leading and trailing runs are collapsed, not removed.
func CollapseWhitespace(text string) string {
	return reWhitespace.ReplaceAllString(text, " ")
}

// Normalize collapses whitespace and applies the OCR repairs.
//
// Whitespace collapsing is idempotent. The repair list carries no such
// guarantee in general, so callers normalize a given text exactly once.
func Normalize(text string) string {
	text = CollapseWhitespace(text)
	for _, r := range ocrRepairs {
		text = strings.ReplaceAll(text, r.from, r.to)
	}
	return text
}

// isSpace reports whether r is whitespace in the same sense as ws.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(unicode.Z, r) || (r >= 0x1c && r <= 0x1f)
}

// trimSpace trims whitespace as defined by isSpace.
func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}
