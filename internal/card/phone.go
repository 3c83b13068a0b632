package card

import "regexp"

// Phone bucket keys.
const (
	PhoneTel  = "Tel"
	PhoneCell = "Cell"
	PhoneFax  = "Fax"
)

// PhoneBucket holds phone matches keyed by the pattern that found them.
// It always has exactly the keys Tel, Cell and Fax.
type PhoneBucket map[string][]string

var phonePatterns = []struct {
	key string
	re  *regexp.Regexp
}{
	{PhoneFax, regexp.MustCompile(`(?:Fax:)?[` + ws + `]?(?:051|(?:\+92-51))-\d{7}`)},
	{PhoneTel, regexp.MustCompile(`(?:Tel:)?[` + ws + `]?(?:\+92|0)?-?\d{2,3}-?\d{7,8}`)},
	{PhoneCell, regexp.MustCompile(`(?:Cell:)?[` + ws + `]?(?:\+92|0)?-?\d{3}-?\d{7}`)},
}

var rePhoneLabel = regexp.MustCompile(`^(?:Tel:|Cell:|Fax:)?[` + ws + `]?`)

// ExtractPhones runs the Fax, Tel and Cell patterns independently over text.
// The same substring may land in more than one bucket.
func ExtractPhones(text string) PhoneBucket {
	bucket := PhoneBucket{
		PhoneTel:  []string{},
		PhoneCell: []string{},
		PhoneFax:  []string{},
	}
	for _, p := range phonePatterns {
		for _, m := range p.re.FindAllString(text, -1) {
			bucket[p.key] = append(bucket[p.key], cleanPhone(m))
		}
	}
	return bucket
}

// cleanPhone drops a leading "Tel:"/"Cell:"/"Fax:" label and surrounding
// whitespace.
func cleanPhone(match string) string {
	return trimSpace(rePhoneLabel.ReplaceAllString(match, ""))
}
