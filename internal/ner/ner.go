// Package ner wraps the prose named-entity recognizer.
//
// The model is loaded once with Load and shared read-only by every request.
// Recognize reduces the entity spans to an EntityMap in which the last span
// for a label replaces any earlier one.
package ner

import (
	"errors"
	"fmt"

	"github.com/jdkato/prose/v2"
)

// Entity labels the card extractors look up.
const (
	LabelPerson = "PERSON"
	LabelOrg    = "ORG"
)

// proseLabels renames labels of the model bundled with prose to the ones the
// extractors use. Labels not listed pass through unchanged, so custom models
// that already emit ORG keep working.
var proseLabels = map[string]string{
	"ORGANIZATION": LabelOrg,
}

// ErrRecognize wraps every failure raised while running the model.
var ErrRecognize = errors.New("entity recognition failed")

// Span is one entity reported by the model.
type Span struct {
	Text  string
	Label string
}

// EntityMap maps an entity label to the text of the last span with that label.
type EntityMap map[string]string

// NewEntityMap folds spans into an EntityMap in order. A later span with the
// same label overwrites an earlier one regardless of position or length.
func NewEntityMap(spans []Span) EntityMap {
	m := make(EntityMap, len(spans))
	for _, s := range spans {
		m[s.Label] = s.Text
	}
	return m
}

// Model is a loaded recognizer. The zero value is not usable; call Load.
//
// The prose model is only read while tagging and classifying, so one Model
// is safe for concurrent Recognize calls.
type Model struct {
	model *prose.Model
	name  string
}

// warmupText exercises tokenizing, tagging and extraction at load time so a
// broken model fails at startup instead of on the first request.
const warmupText = "Jane Doe works at Acme Corporation in Karachi."

// Load initializes the recognizer. An empty path selects the model bundled
// with prose; otherwise path is a model directory written by prose's
// Model.Write.
func Load(path string) (*Model, error) {
	m := &Model{name: "prose/default"}
	if path != "" {
		custom, err := loadFromDisk(path)
		if err != nil {
			return nil, err
		}
		m.model = custom
		m.name = custom.Name
	}
	// With no model set, prose decodes its bundled one; the warm-up document
	// keeps it so later calls reuse it instead of decoding again.
	doc, err := m.document(warmupText)
	if err != nil {
		return nil, fmt.Errorf("warm up model %s: %w", m.name, err)
	}
	m.model = doc.Model
	return m, nil
}

// Name identifies the loaded model for logs.
func (m *Model) Name() string {
	return m.name
}

// Recognize runs the model over text and returns its EntityMap.
func (m *Model) Recognize(text string) (EntityMap, error) {
	spans, err := m.spans(text)
	if err != nil {
		return nil, err
	}
	return NewEntityMap(spans), nil
}

// Loaded reports whether the handle holds a decoded model.
func (m *Model) Loaded() bool {
	return m.model != nil
}

func (m *Model) spans(text string) ([]Span, error) {
	if m.model == nil {
		return nil, fmt.Errorf("%w: model %s not loaded", ErrRecognize, m.name)
	}
	doc, err := m.document(text)
	if err != nil {
		return nil, err
	}

	ents := doc.Entities()
	spans := make([]Span, 0, len(ents))
	for _, e := range ents {
		spans = append(spans, Span{Text: e.Text, Label: Label(e.Label)})
	}
	return spans, nil
}

// Label maps a raw model label to the label the extractors look up.
func Label(raw string) string {
	if l, ok := proseLabels[raw]; ok {
		return l
	}
	return raw
}

func (m *Model) document(text string) (doc *prose.Document, err error) {
	// prose panics on malformed model data rather than returning an error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRecognize, r)
		}
	}()

	var opts []prose.DocOpt
	if m.model != nil {
		opts = append(opts, prose.UsingModel(m.model))
	}
	doc, err = prose.NewDocument(text, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecognize, err)
	}
	return doc, nil
}

func loadFromDisk(path string) (model *prose.Model, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("load model from %s: %v", path, r)
		}
	}()
	return prose.ModelFromDisk(path), nil
}
