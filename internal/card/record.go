package card

import (
	"strings"

	"github.com/ironsheep/card-extract/internal/ner"
)

// Nil is the sentinel for a field with no match. It cannot be told apart from
// a card that literally reads "nil".
const Nil = "nil"

// Record is the structured result for one card. Field names and JSON keys
// are fixed; every field is either a value or Nil.
type Record struct {
	Name        string `json:"Name"`
	Address     string `json:"Address"`
	CompanyName string `json:"company_name"`
	Designation string `json:"Designation"`
	Email       string `json:"Email"`
	Cell        string `json:"Cell"`
	Tel         string `json:"Tel"`
	Fax         string `json:"Fax"`
	Website     string `json:"Website"`
}

// EmptyRecord returns a Record with every field set to Nil.
func EmptyRecord() Record {
	return Record{
		Name:        Nil,
		Address:     Nil,
		CompanyName: Nil,
		Designation: Nil,
		Email:       Nil,
		Cell:        Nil,
		Tel:         Nil,
		Fax:         Nil,
		Website:     Nil,
	}
}

// Assemble runs every extractor and builds the Record.
//
// normalized feeds the pattern extractors; raw keeps its line structure for
// the designation scan.
func Assemble(entities ner.EntityMap, normalized, raw string) Record {
	phones := ExtractPhones(normalized)
	return Record{
		Name:        ExtractName(entities),
		Address:     ExtractAddress(normalized),
		CompanyName: ExtractCompany(entities),
		Designation: ExtractDesignation(raw),
		Email:       join(ExtractEmails(normalized)),
		Cell:        join(phones[PhoneCell]),
		Tel:         join(phones[PhoneTel]),
		Fax:         join(phones[PhoneFax]),
		Website:     join(ExtractWebsites(normalized)),
	}
}

// join renders a multi-valued field.
func join(values []string) string {
	if len(values) == 0 {
		return Nil
	}
	return strings.Join(values, ", ")
}
