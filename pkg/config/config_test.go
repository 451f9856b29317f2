package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func (s *sample) Validate() error {
	if s.Count < 0 {
		return errors.New("count must not be negative")
	}
	return nil
}

func write(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadExpandsEnvAndKeepsDefaults(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "notes")
	s := sample{Count: 7}
	if err := Load(write(t, "name: ${SAMPLE_NAME}\n"), &s); err != nil {
		t.Fatal(err)
	}
	if s.Name != "notes" || s.Count != 7 {
		t.Errorf("got %+v", s)
	}
}

func TestLoadValidates(t *testing.T) {
	var s sample
	err := Load(write(t, "count: -1\n"), &s)
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &s); err == nil {
		t.Fatal("missing file should fail Load")
	}
	s.Count = 3
	if err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &s); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if s.Count != 3 {
		t.Errorf("defaults lost: %+v", s)
	}
	s.Count = -2
	if err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &s); err == nil {
		t.Fatal("LoadOptional should still validate")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	var s sample
	err := Load(write(t, "name: x\ncuont: 3\n"), &s)
	if err == nil || !strings.Contains(err.Error(), "cuont") {
		t.Fatalf("err = %v, want unknown field error", err)
	}
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	s := sample{Name: "kept"}
	if err := Load(write(t, "# nothing here\n"), &s); err != nil {
		t.Fatal(err)
	}
	if s.Name != "kept" {
		t.Errorf("got %+v", s)
	}
}

func TestExpandFallback(t *testing.T) {
	t.Setenv("SAMPLE_SET", "value")
	t.Setenv("SAMPLE_EMPTY", "")

	cases := map[string]string{
		"${SAMPLE_SET:-other}":   "value",
		"${SAMPLE_EMPTY:-other}": "other",
		"${SAMPLE_UNSET_X:-a:b}": "a:b",
		"${SAMPLE_UNSET_X}":      "",
		"$SAMPLE_SET/dir":        "value/dir",
	}
	for in, want := range cases {
		if got := Expand(in); got != want {
			t.Errorf("Expand(%q) = %q, want %q", in, got, want)
		}
	}
}
