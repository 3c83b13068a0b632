package card

import (
	"regexp"
	"strings"
)

// titleKeywords is ordered: longer phrases sharing a prefix ("Chief
// Executive") come before their prefix ("Chief") so leftmost-first matching
// prefers them.
var titleKeywords = []string{
	"Chief Executive", "Senior", "Junior", "Lead", "Chief", "Head",
	"Principal", "Assistant", "Associate", "Director", "Manager",
	"Engineer", "Officer", "Analyst", "Scientist", "Specialist",
	"Consultant", "Administrator", "Developer", "Executive", "Coordinator",
}

var reDesignation = func() *regexp.Regexp {
	kw := `(?:` + strings.Join(titleKeywords, "|") + `)`
	return regexp.MustCompile(
		`\b` + kw + `\b(?:[ \t]+` + kw + `\b)*(?:[` + ws + `]?\([^)]*\))?`,
	)
}()

// lineBreaks is the set of separators a line split honours.
var lineBreaks = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\v", "\n",
	"\f", "\n",
	"\x1c", "\n",
	"\x1d", "\n",
	"\x1e", "\n",
	"\u0085", "\n",
	"\u2028", "\n",
	"\u2029", "\n",
)

// ExtractDesignation scans the non-empty, trimmed lines of text in order and
// returns the first job-title match, or Nil.
//
// Within a line the leftmost match wins. Adjacent title words form a single
// title, so "Senior Manager (Operations)" is returned whole and "Manager
// Senior" yields "Manager Senior".
func ExtractDesignation(text string) string {
	for _, line := range splitLines(text) {
		if m := reDesignation.FindString(line); m != "" {
			return trimSpace(m)
		}
	}
	return Nil
}

// splitLines splits text on every line break and drops lines that are empty
// after trimming.
func splitLines(text string) []string {
	raw := strings.Split(lineBreaks.Replace(text), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = trimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
