// Package card extracts contact fields from business-card text.
//
// The pipeline has four steps:
//
//  1. Normalize: collapse whitespace and repair a few OCR misreads.
//  2. Recognize: run a named-entity recognizer over the normalized text and
//     keep the last entity per label.
//  3. Extract: independent regex extractors (email, phone, website, address,
//     designation) plus entity lookups (name, company).
//  4. Assemble: build a flat Record, using the "nil" sentinel for any field
//     without a match.
//
// # Extractors
//
// Every extractor is a pure function and never fails. Multi-valued fields
// (Email, Tel, Cell, Fax, Website) are returned as ordered slices and joined
// with ", " during assembly; duplicates are kept.
//
// Phone numbers are bucketed by which pattern matched, not by what the number
// is. A single digit run such as "051-1234567" satisfies the Fax, Tel and Cell
// patterns and is reported under all three.
//
// # Regex Semantics
//
// Whitespace classes follow the Unicode whitespace set (including \v, U+0085
// and the \p{Z} separators) so that text copied from PDFs or OCR output with
// non-breaking spaces collapses the same way ordinary spaces do. Word
// boundaries and digit classes are ASCII.
//
// # Usage
//
//	model, err := ner.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p := card.NewPipeline(model)
//	rec, err := p.Extract("Jane Doe\nSenior Manager\njane@example.com")
package card
