// Package keep marks spans of text that the translation provider must
// leave unmodified.
//
// Spans are wrapped in a neutral <keep>…</keep> marker pair. Providers are
// configured to ignore the marker tag (DeepL ignore_tags, LibreTranslate
// HTML mode), so the wrapped text survives translation verbatim. After
// translation the markers are stripped, leaving the interior content intact.
//
// Two masking modes exist:
//
//   - Placeholders: every {name} or {{name}} parameter placeholder in a
//     JSON locale string is wrapped.
//   - Tag pairs: in flat-document mode, configured literal start/end tags
//     are each replaced wholesale by the corresponding marker token.
package keep

import (
	"regexp"
	"strings"
)

// TagName is the neutral marker element name, for providers that take an
// ignore-tag list.
const TagName = "keep"

// Open and Close are the marker tokens. They are assumed never to occur
// in legitimate input.
const (
	Open  = "<" + TagName + ">"
	Close = "</" + TagName + ">"
)

// placeholder matches a {{name}} or {name} span with no braces inside.
// The double-brace alternative comes first so {{x}} is one span, not {x}
// with stray braces.
var placeholder = regexp.MustCompile(`\{\{[^{}]*\}\}|\{[^{}]*\}`)

// MaskPlaceholders wraps every parameter placeholder in the marker pair.
func MaskPlaceholders(text string) string {
	if !strings.ContainsRune(text, '{') {
		return text
	}
	return placeholder.ReplaceAllString(text, Open+"$0"+Close)
}

// MaskTags replaces every literal occurrence of the configured start tag
// with the opening marker and of the end tag with the closing marker.
// The configured tags themselves do not survive; Unmask later removes the
// markers, so the guarded content ends up unwrapped in the output.
func MaskTags(text, start, end string) string {
	if start == "" || end == "" {
		return text
	}
	text = strings.ReplaceAll(text, start, Open)
	return strings.ReplaceAll(text, end, Close)
}

// Unmask removes all marker tokens, leaving interior content intact.
// Text without markers is returned unchanged.
func Unmask(text string) string {
	if !strings.Contains(text, "<"+TagName) {
		return text
	}
	text = strings.ReplaceAll(text, Open, "")
	return strings.ReplaceAll(text, Close, "")
}
