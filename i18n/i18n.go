// Package i18n translates the command-line messages of llmtranslator.
//
// Catalogs are embedded from locales/{lang}/LC_MESSAGES/llmtranslator.po
// and loaded by Init. Before Init, and for languages without a catalog,
// messages pass through untranslated.
package i18n

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

//go:embed all:locales
var locales embed.FS

const domain = "llmtranslator"

// EnvLang overrides the locale environment for llmtranslator only.
const EnvLang = "LLM_TRANSLATOR_LANG"

var (
	po   *gotext.Locale
	lang = "en"
)

// Init loads the catalog for code. An empty code is detected from
// EnvLang, then LANGUAGE, LC_ALL, LC_MESSAGES and LANG.
func Init(code string) {
	if code == "" {
		code = detectLanguage()
	}
	lang = code

	po = gotext.NewLocaleFSWithPath(code, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// Language returns the language selected by Init.
func Language() string { return lang }

// T translates msgid.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// Tf translates format and applies args to it.
func Tf(format string, args ...any) string {
	return fmt.Sprintf(T(format), args...)
}

// N translates a message with plural forms.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

func detectLanguage() string {
	if v := strings.TrimSpace(os.Getenv(EnvLang)); v != "" {
		return v
	}
	// gettext order
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		// ru_RU.UTF-8 -> ru_RU
		if idx := strings.IndexByte(val, '.'); idx >= 0 {
			val = val[:idx]
		}
		if val == "C" || val == "POSIX" || val == "" {
			continue
		}
		return val
	}
	return "en"
}
