package card

import (
	"regexp"
	"strings"
)

// addressKeywords must appear somewhere after the leading house number.
var addressKeywords = []string{
	"Road", "Street", "Area", "Mention", "Block",
	"Town", "Phase", "Sector", "Building", "Avenue",
}

var reAddress = regexp.MustCompile(
	`\b\d{1,3}[A-Za-z` + ws + `,#&.\-]*\b` +
		`(?:` + strings.Join(addressKeywords, "|") + `)` +
		`[,.` + ws + `]*[A-Za-z` + ws + `]*(?:Pakistan)?\b`,
)

// ExtractAddress returns the first address-like substring of text, or Nil.
//
// An address starts with a 1-3 digit number, runs through one of the street
// keywords, then takes trailing words up to the next punctuation mark other
// than the separators directly after the keyword. "123 Main Street Lahore
// Pakistan" is matched whole; "123 Main Street, Lahore, Pakistan" stops at
// "Lahore".
func ExtractAddress(text string) string {
	m := reAddress.FindString(CollapseWhitespace(text))
	if m == "" {
		return Nil
	}
	return trimSpace(m)
}
