// Package config — .polyloc.yaml project file support.
//
// The project file is the sole source of truth for what gets translated:
// every target (a JSON locale file or a flat text document) is declared
// explicitly, with an output pattern containing a {lang} placeholder.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the default project file name.
const FileName = ".polyloc.yaml"

// LangPlaceholder is substituted with the target language code in
// output patterns.
const LangPlaceholder = "{lang}"

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .polyloc.yaml structure.
type File struct {
	// Languages is the default target language list (overridable per target).
	Languages []string `yaml:"languages,omitempty"`
	// SourceLang is the source language code ("" = provider auto-detect).
	SourceLang string `yaml:"source_lang,omitempty"`
	// Provider configures the MT provider connection.
	Provider Provider `yaml:"provider"`
	// Request tunes batching and retry behavior.
	Request Request `yaml:"request,omitempty"`
	// Targets is the list of translation targets.
	Targets []Target `yaml:"targets"`
}

// Provider holds MT provider connection settings.
type Provider struct {
	// Name: "deepl" or "libretranslate".
	Name string `yaml:"name"`
	// BaseURL overrides the provider's default endpoint.
	BaseURL string `yaml:"base_url,omitempty"`
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string `yaml:"proxy,omitempty"`
	// TimeoutSeconds is the per-request timeout (default 60).
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
}

// Timeout returns the configured request timeout.
func (p Provider) Timeout() time.Duration {
	if p.TimeoutSeconds > 0 {
		return time.Duration(p.TimeoutSeconds) * time.Second
	}
	return 60 * time.Second
}

// Request tunes the batching budget and the rate-limit retry policy.
type Request struct {
	// MaxSizeBytes is the provider request ceiling (default 131072).
	MaxSizeBytes int `yaml:"max_size_bytes,omitempty"`
	// OverheadBytes is reserved for request framing (default 2048).
	OverheadBytes int `yaml:"overhead_bytes,omitempty"`
	// MaxRetries is the rate-limit retry count per batch (default 5).
	MaxRetries int `yaml:"max_retries,omitempty"`
	// BaseDelayMs is the first retry delay in milliseconds (default 1000).
	BaseDelayMs int `yaml:"base_delay_ms,omitempty"`
}

// BaseDelay returns the configured first retry delay.
func (r Request) BaseDelay() time.Duration {
	if r.BaseDelayMs > 0 {
		return time.Duration(r.BaseDelayMs) * time.Millisecond
	}
	return time.Second
}

// TargetTypeJSON is a nested JSON locale file.
const TargetTypeJSON = "json"

// TargetTypeDocument is a flat text document (Markdown, HTML, plain text).
const TargetTypeDocument = "document"

// Target describes a single translation unit.
type Target struct {
	// Name is a human-readable label shown in status/logs.
	Name string `yaml:"name"`
	// Type: "json" or "document".
	Type string `yaml:"type"`
	// Source is the source file path relative to the project root.
	Source string `yaml:"source"`
	// Output is the per-language output pattern, containing {lang}.
	Output string `yaml:"output"`

	// --- document options ---

	// KeepStart/KeepEnd delimit do-not-translate spans in documents.
	KeepStart string `yaml:"keep_start,omitempty"`
	KeepEnd   string `yaml:"keep_end,omitempty"`

	// --- overrides ---

	// Languages overrides the global language list for this target.
	Languages []string `yaml:"languages,omitempty"`
}

// OutputPath returns the output file path for a language.
func (t Target) OutputPath(lang string) string {
	return strings.ReplaceAll(t.Output, LangPlaceholder, lang)
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads and validates .polyloc.yaml from the given directory.
// Returns nil if no project file exists.
func Load(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if f.Provider.Name == "" {
		return nil, fmt.Errorf("%s: provider.name is required", path)
	}
	if len(f.Targets) == 0 {
		return nil, fmt.Errorf("%s: no targets declared", path)
	}

	for i := range f.Targets {
		t := &f.Targets[i]

		if t.Name == "" {
			return nil, fmt.Errorf("%s: target #%d has no name", path, i+1)
		}
		switch t.Type {
		case TargetTypeJSON, TargetTypeDocument:
		case "":
			return nil, fmt.Errorf("%s: target %q has no type", path, t.Name)
		default:
			return nil, fmt.Errorf("%s: target %q has unknown type %q (valid: json, document)", path, t.Name, t.Type)
		}
		if t.Source == "" {
			return nil, fmt.Errorf("%s: target %q has no source", path, t.Name)
		}
		if t.Output == "" {
			return nil, fmt.Errorf("%s: target %q has no output pattern", path, t.Name)
		}
		if !strings.Contains(t.Output, LangPlaceholder) {
			return nil, fmt.Errorf("%s: target %q output %q lacks the %s placeholder", path, t.Name, t.Output, LangPlaceholder)
		}

		// Inherit global languages if not overridden.
		if len(t.Languages) == 0 {
			t.Languages = f.Languages
		}
	}

	return &f, nil
}

// ---------------------------------------------------------------------------
// Language auto-detection
// ---------------------------------------------------------------------------

// DetectLanguages infers target languages from existing output files
// matching the target's output pattern. Used when a target declares no
// languages of its own and the project declares none globally.
func DetectLanguages(rootDir string, t Target) []string {
	pattern := filepath.Join(rootDir, t.Output)
	prefix, suffix, ok := strings.Cut(pattern, LangPlaceholder)
	if !ok {
		return nil
	}

	dir := filepath.Dir(prefix)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	namePrefix := strings.TrimPrefix(prefix, dir+string(filepath.Separator))
	source := filepath.Join(rootDir, t.Source)

	var found []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, namePrefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		lang := strings.TrimSuffix(strings.TrimPrefix(name, namePrefix), suffix)
		if lang == "" || strings.ContainsAny(lang, "/\\") {
			continue
		}
		// The source file often matches its own output pattern.
		if filepath.Join(dir, name) == source {
			continue
		}
		found = append(found, lang)
	}

	sort.Strings(found)
	return found
}

// WriteStarter writes a commented starter .polyloc.yaml. It refuses to
// overwrite an existing file.
func WriteStarter(rootDir string) (string, error) {
	path := filepath.Join(rootDir, FileName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	}

	starter := `# polyloc project configuration
languages: [de, fr]
source_lang: en

provider:
  name: deepl
  # base_url: https://api-free.deepl.com
  # timeout_seconds: 60

# request:
#   max_size_bytes: 131072
#   overhead_bytes: 2048
#   max_retries: 5
#   base_delay_ms: 1000

targets:
  - name: app strings
    type: json
    source: locales/en.json
    output: locales/{lang}.json

  # - name: readme
  #   type: document
  #   source: README.md
  #   output: README.{lang}.md
  #   keep_start: "<!-- keep -->"
  #   keep_end: "<!-- /keep -->"
`

	if err := os.WriteFile(path, []byte(starter), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
