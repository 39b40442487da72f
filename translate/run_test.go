package translate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/openlocalize/polyloc/jsonfile"
	"github.com/openlocalize/polyloc/keep"
)

func testJob(prov Provider, opts Options) *Job {
	return &Job{
		Client:  &Client{Provider: prov, BaseDelay: time.Millisecond},
		Options: opts,
	}
}

func TestTranslateDocumentMultiLanguage(t *testing.T) {
	doc, err := jsonfile.Parse([]byte(`{
  "greeting": "Hi {name}",
  "menu": { "save": "Save", "count": "{{n}} items" },
  "answer": 42
}`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	prov := &fakeProvider{}
	j := testJob(prov, Options{})

	results := j.TranslateDocument(context.Background(), doc, []string{"de", "fr"})

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, res := range results {
		if res.Err != nil {
			t.Fatalf("%s: unexpected error: %v", res.Lang, res.Err)
		}
		if res.Document == nil {
			t.Fatalf("%s: nil document", res.Lang)
		}

		v, ok := res.Document.Get("greeting")
		if !ok {
			t.Fatalf("%s: greeting missing", res.Lang)
		}
		// The placeholder is masked before translation and the markers
		// stripped afterwards, so the output contains the bare {name}.
		want := "[" + res.Lang + "] Hi {name}"
		if v != want {
			t.Errorf("%s: greeting = %q, want %q", res.Lang, v, want)
		}

		menu, _ := res.Document.Get("menu")
		inner, ok := menu.(*jsonfile.Object)
		if !ok {
			t.Fatalf("%s: menu is %T", res.Lang, menu)
		}
		if c, _ := inner.Get("count"); c != "["+res.Lang+"] {{n}} items" {
			t.Errorf("%s: count = %q", res.Lang, c)
		}

		// Non-string leaves never appear in the output.
		if _, ok := res.Document.Get("answer"); ok {
			t.Errorf("%s: numeric leaf leaked into output", res.Lang)
		}
	}
}

func TestTranslateDocumentMasksPlaceholdersOnTheWire(t *testing.T) {
	doc := jsonfile.NewObject()
	doc.Set("greeting", "Hi {name}")

	var seen string
	prov := &fakeProvider{render: func(text, lang string) string {
		seen = text
		return text
	}}
	j := testJob(prov, Options{})

	j.TranslateDocument(context.Background(), doc, []string{"de"})

	if !strings.Contains(seen, keep.Open+"{name}"+keep.Close) {
		t.Errorf("provider saw %q, want masked placeholder", seen)
	}
}

func TestTranslateDocumentMultipleBatchesKeepOrder(t *testing.T) {
	doc := jsonfile.NewObject()
	want := make([]string, 0, 20)
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		doc.Set(k, "value of "+k)
		want = append(want, "[de] value of "+k)
	}

	prov := &fakeProvider{}
	// Tiny budget forces several batches per language.
	j := testJob(prov, Options{MaxRequestBytes: 30, OverheadBytes: 1})

	results := j.TranslateDocument(context.Background(), doc, []string{"de"})
	if results[0].Err != nil {
		t.Fatalf("error: %v", results[0].Err)
	}

	keys := results[0].Document.Keys()
	for i, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		if keys[i] != k {
			t.Fatalf("key order changed: %v", keys)
		}
		v, _ := results[0].Document.Get(k)
		if v != want[i] {
			t.Errorf("%s = %q, want %q", k, v, want[i])
		}
	}
}

func TestTranslateDocumentIsolatesLanguageFailures(t *testing.T) {
	doc := jsonfile.NewObject()
	doc.Set("k", "v")

	prov := &fakeProvider{fatalLangs: map[string]bool{"de": true}}
	j := testJob(prov, Options{})

	results := j.TranslateDocument(context.Background(), doc, []string{"de", "fr"})

	if results[0].Lang != "de" || results[0].Err == nil {
		t.Errorf("de should have failed: %+v", results[0])
	}
	if results[1].Lang != "fr" || results[1].Err != nil {
		t.Errorf("fr should have succeeded: %+v", results[1])
	}
	if results[1].Document == nil {
		t.Error("fr result lost its document")
	}
}

func TestTranslateTextMasksAndStripsTags(t *testing.T) {
	prov := &fakeProvider{render: func(text, lang string) string { return text }}
	j := testJob(prov, Options{KeepStart: "<!-- keep -->", KeepEnd: "<!-- /keep -->"})

	in := "Hello <!-- keep -->brand name<!-- /keep --> world"
	results := j.TranslateText(context.Background(), in, []string{"de"})

	if results[0].Err != nil {
		t.Fatalf("error: %v", results[0].Err)
	}
	if results[0].Text != "Hello brand name world" {
		t.Errorf("Text = %q", results[0].Text)
	}
}

func TestTranslateTextEmptyResultSkipsLanguage(t *testing.T) {
	prov := &fakeProvider{render: func(text, lang string) string {
		if lang == "fr" {
			return ""
		}
		return "[" + lang + "] " + text
	}}

	var logged []string
	j := testJob(prov, Options{OnLog: func(format string, args ...any) {
		logged = append(logged, format)
	}})

	results := j.TranslateText(context.Background(), "doc body", []string{"fr", "de"})

	if !errors.Is(results[0].Err, ErrEmptyTranslation) {
		t.Errorf("fr err = %v, want ErrEmptyTranslation", results[0].Err)
	}
	if results[1].Err != nil || results[1].Text == "" {
		t.Errorf("de should have succeeded: %+v", results[1])
	}
	if len(logged) == 0 {
		t.Error("expected a warning log for the skipped language")
	}
}
