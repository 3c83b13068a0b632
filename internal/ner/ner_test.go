package ner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jdkato/prose/v2"
)

func TestNewEntityMap_LastOneWins(t *testing.T) {
	spans := []Span{
		{Text: "Muhammad Ali Khan", Label: LabelPerson},
		{Text: "Acme", Label: LabelOrg},
		{Text: "Jo", Label: LabelPerson},
	}

	m := NewEntityMap(spans)

	if len(m) != 2 {
		t.Fatalf("len: got %d, want 2", len(m))
	}
	if m[LabelPerson] != "Jo" {
		t.Errorf("PERSON: got %q, want %q (later span must win even when shorter)", m[LabelPerson], "Jo")
	}
	if m[LabelOrg] != "Acme" {
		t.Errorf("ORG: got %q, want %q", m[LabelOrg], "Acme")
	}
}

func TestNewEntityMap_Empty(t *testing.T) {
	m := NewEntityMap(nil)
	if m == nil {
		t.Fatal("NewEntityMap(nil) returned nil map")
	}
	if len(m) != 0 {
		t.Errorf("len: got %d, want 0", len(m))
	}
}

func TestLoad_Default(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping model load in short mode")
	}

	m, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Name() != "prose/default" {
		t.Errorf("Name: got %q, want prose/default", m.Name())
	}
	if !m.Loaded() {
		t.Fatal("Load did not keep the decoded model on the handle")
	}

	got, err := m.Recognize("")
	if err != nil {
		t.Fatalf("Recognize empty: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Recognize empty: got %v, want no entities", got)
	}
}

func TestLoad_MissingModelDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "does-not-exist")
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be absent", dir)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("Load with missing model dir: expected error")
	}
}

func TestErrRecognize_Wrapping(t *testing.T) {
	// A zero-value prose model has no tagger or extracter, so prose panics;
	// the panic must surface as ErrRecognize.
	m := &Model{name: "broken", model: new(prose.Model)}

	_, err := m.Recognize("Jane Doe")
	if err == nil {
		t.Fatal("Recognize with empty model: expected error")
	}
	if !errors.Is(err, ErrRecognize) {
		t.Errorf("error %v does not wrap ErrRecognize", err)
	}
}

func TestRecognize_DefaultModelLabels(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping model load in short mode")
	}

	m, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	got, err := m.Recognize("John Smith is the CEO of International Business Machines and Apple Inc.")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if got[LabelPerson] == "" {
		t.Errorf("PERSON missing from %v", got)
	}
	if got[LabelOrg] == "" {
		t.Errorf("ORG missing from %v", got)
	}
	if _, ok := got["ORGANIZATION"]; ok {
		t.Errorf("raw ORGANIZATION label leaked into %v", got)
	}
}

func TestRecognize_Unloaded(t *testing.T) {
	_, err := (&Model{name: "empty"}).Recognize("Jane Doe")
	if !errors.Is(err, ErrRecognize) {
		t.Errorf("error: got %v, want ErrRecognize", err)
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"ORGANIZATION", LabelOrg},
		{"ORG", LabelOrg},
		{"PERSON", LabelPerson},
		{"GPE", "GPE"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Label(tt.raw); got != tt.want {
			t.Errorf("Label(%q): got %q, want %q", tt.raw, got, tt.want)
		}
	}
}
