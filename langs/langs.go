// Package langs validates target-language codes and provides English
// display names for CLI output.
package langs

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Normalize parses a language code (de, pt-BR, pt_BR, zh-Hans, …) and
// returns its canonical BCP 47 form. Underscore separators are accepted.
func Normalize(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("invalid language code %q: %w", code, err)
	}
	return tag.String(), nil
}

// NormalizeAll normalizes every code, failing on the first invalid one.
func NormalizeAll(codes []string) ([]string, error) {
	out := make([]string, len(codes))
	for i, c := range codes {
		n, err := Normalize(c)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// DisplayName returns the English name of a language code, falling back
// to the code itself when it cannot be parsed or has no known name.
func DisplayName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return code
	}
	return name
}
