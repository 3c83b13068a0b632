package card

import "regexp"

var (
	reEmail   = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	reWebsite = regexp.MustCompile(`www\.[^` + ws + `]+\.com`)
)

// ExtractEmails returns every email address in text, in order of appearance.
func ExtractEmails(text string) []string {
	return findAll(reEmail, text)
}

// ExtractWebsites returns every "www.<token>.com" substring in text. The token
// is greedy, so "www.a.com/x.com" is one match.
func ExtractWebsites(text string) []string {
	return findAll(reWebsite, text)
}

func findAll(re *regexp.Regexp, text string) []string {
	matches := re.FindAllString(text, -1)
	if matches == nil {
		return []string{}
	}
	return matches
}
