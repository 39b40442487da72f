package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeProjectFile(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaultsAndInheritance(t *testing.T) {
	dir := t.TempDir()
	writeProjectFile(t, dir, `
languages: [de, fr]
source_lang: en
provider:
  name: deepl
targets:
  - name: strings
    type: json
    source: locales/en.json
    output: locales/{lang}.json
  - name: readme
    type: document
    source: README.md
    output: README.{lang}.md
    languages: [ja]
`)

	f, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if f == nil {
		t.Fatal("Load returned nil for existing file")
	}

	if !reflect.DeepEqual(f.Targets[0].Languages, []string{"de", "fr"}) {
		t.Errorf("target 0 languages = %v, want inherited [de fr]", f.Targets[0].Languages)
	}
	if !reflect.DeepEqual(f.Targets[1].Languages, []string{"ja"}) {
		t.Errorf("target 1 languages = %v, want override [ja]", f.Targets[1].Languages)
	}

	if got := f.Provider.Timeout(); got != 60*time.Second {
		t.Errorf("default timeout = %v, want 60s", got)
	}
	if got := f.Request.BaseDelay(); got != time.Second {
		t.Errorf("default base delay = %v, want 1s", got)
	}
}

func TestLoadMissingFileReturnsNil(t *testing.T) {
	f, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if f != nil {
		t.Fatal("expected nil for missing project file")
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"no provider", "targets:\n  - {name: a, type: json, source: s, output: 'o-{lang}'}\n"},
		{"no targets", "provider: {name: deepl}\n"},
		{"unknown type", "provider: {name: deepl}\ntargets:\n  - {name: a, type: xml, source: s, output: 'o-{lang}'}\n"},
		{"no placeholder", "provider: {name: deepl}\ntargets:\n  - {name: a, type: json, source: s, output: out.json}\n"},
		{"no source", "provider: {name: deepl}\ntargets:\n  - {name: a, type: json, output: 'o-{lang}'}\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			dir := t.TempDir()
			writeProjectFile(t, dir, c.content)
			if _, err := Load(dir); err == nil {
				t.Fatalf("expected validation error for %s", c.name)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tgt := Target{Output: "locales/{lang}.json"}
	if got := tgt.OutputPath("pt-BR"); got != "locales/pt-BR.json" {
		t.Errorf("OutputPath = %q", got)
	}
}

func TestDetectLanguages(t *testing.T) {
	dir := t.TempDir()
	locales := filepath.Join(dir, "locales")
	if err := os.MkdirAll(locales, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"en.json", "de.json", "fr.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(locales, name), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	tgt := Target{
		Source: "locales/en.json",
		Output: "locales/{lang}.json",
	}

	got := DetectLanguages(dir, tgt)
	// en.json is the source file and must not count as a target language.
	if !reflect.DeepEqual(got, []string{"de", "fr"}) {
		t.Errorf("DetectLanguages = %v, want [de fr]", got)
	}
}

func TestWriteStarter(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteStarter(dir)
	if err != nil {
		t.Fatalf("WriteStarter error: %v", err)
	}

	f, err := Load(dir)
	if err != nil {
		t.Fatalf("starter file does not load: %v", err)
	}
	if f.Provider.Name != "deepl" {
		t.Errorf("starter provider = %q", f.Provider.Name)
	}

	if _, err := WriteStarter(dir); err == nil {
		t.Fatalf("expected refusal to overwrite %s", path)
	}
}
