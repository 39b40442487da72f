// Package i18n provides internationalization for polyloc's own
// user-facing CLI strings.
//
// It wraps the gotext library behind T() and N() helpers. Translations
// are embedded in the binary via //go:embed and loaded at startup:
//
//	i18n.Init("") // auto-detect from LANGUAGE/LC_ALL/LC_MESSAGES/LANG
//	fmt.Println(i18n.T("Translating"))
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

// locales embeds the compiled translation catalogs.
// Directory structure: locales/{lang}/LC_MESSAGES/polyloc.po
//
//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name for polyloc.
const domain = "polyloc"

var catalog *gotext.Locale

// Init initializes the i18n system. An empty lang auto-detects from the
// environment variables LANGUAGE, LC_ALL, LC_MESSAGES, LANG (in that
// order, matching GNU gettext behavior). Call once at program startup.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}

	catalog = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	catalog.AddDomain(domain)
	catalog.SetDomain(domain)
}

// T translates a string, returning the original when no translation
// exists (gettext passthrough behavior).
func T(msgid string) string {
	if catalog == nil {
		return msgid
	}
	return catalog.Get(msgid)
}

// N translates a string with plural forms.
func N(singular, plural string, n int) string {
	if catalog == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return catalog.GetN(singular, plural, n)
}

// detectLanguage reads environment variables following GNU gettext
// conventions: LANGUAGE > LC_ALL > LC_MESSAGES > LANG.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		// LANGUAGE can be a colon-separated list; take the first.
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		// Strip encoding suffix ("de_DE.UTF-8" -> "de_DE").
		val, _, _ = strings.Cut(val, ".")
		// "C" and "POSIX" mean no translation.
		if val == "C" || val == "POSIX" || val == "" {
			continue
		}
		return val
	}
	return "en"
}
