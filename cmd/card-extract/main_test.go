package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	root := newRootCmd(&app{})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(out.String(), "card-extract "+Version) {
		t.Errorf("output: got %q", out.String())
	}
}

func TestExtractCmd_FlagConflict(t *testing.T) {
	t.Chdir(t.TempDir())

	root := newRootCmd(&app{})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"extract", "--file", "a.txt", "--image", "a.png"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("Execute: got %v, want mutually exclusive error", err)
	}
}

func TestExecute_ClosesLogOnFailure(t *testing.T) {
	t.Chdir(t.TempDir())
	logFile := filepath.Join(t.TempDir(), "card-extract.log")
	t.Setenv("CARD_EXTRACT_LOG_FILE", logFile)

	a := &app{}
	root := newRootCmd(a)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"extract", "--file", "a.txt", "--image", "a.png"})

	if err := execute(root, a); err == nil {
		t.Fatal("execute: expected error")
	}
	if a.logger == nil {
		t.Fatal("logger was never opened")
	}
	if a.closeLog != nil {
		t.Error("log was not closed after the command failed")
	}
	if err := a.close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}

func TestReadText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.txt")
	if err := os.WriteFile(path, []byte("Jane Doe\nManager"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		stdin   string
		want    string
		wantErr bool
	}{
		{"file", path, "ignored", "Jane Doe\nManager", false},
		{"stdin", "", "jane@acme.com\n", "jane@acme.com\n", false},
		{"missing file", "/nonexistent/card.txt", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readText(tt.path, strings.NewReader(tt.stdin))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error: got %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("text: got %q, want %q", got, tt.want)
			}
		})
	}
}
