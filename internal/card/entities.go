package card

import "github.com/ironsheep/card-extract/internal/ner"

// Recognizer turns normalized text into an entity map. *ner.Model satisfies it.
type Recognizer interface {
	Recognize(text string) (ner.EntityMap, error)
}

// ExtractName returns the longest PERSON entity, or Nil.
//
// The entity map keeps one value per label, so there is at most one
// candidate; the longest-wins rule only matters if that ever changes.
func ExtractName(entities ner.EntityMap) string {
	name, found := "", false
	for label, text := range entities {
		if label != ner.LabelPerson {
			continue
		}
		if !found || len(text) > len(name) {
			name, found = text, true
		}
	}
	if !found {
		return Nil
	}
	return name
}

// ExtractCompany returns the ORG entity, or Nil.
func ExtractCompany(entities ner.EntityMap) string {
	if org, ok := entities[ner.LabelOrg]; ok {
		return org
	}
	return Nil
}
